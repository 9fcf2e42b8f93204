// Package bot orchestrates the event-scheduling workflow: parsing new-event
// commands into drafts, confirming or cancelling them, joining and leaving
// events, and paging through the directory.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"eventbot/internal/directory"
	"eventbot/internal/draft"
	"eventbot/internal/models"
	"eventbot/internal/parse"
	"eventbot/internal/reminder"
)

// ErrUnroutable means the command or callback matched no handler. The HTTP
// layer answers these with a response Slack will not retry.
var ErrUnroutable = errors.New("no handler for request")

// Directory is the persisted event registry the controller reads and
// mutates. *directory.Directory satisfies it.
type Directory interface {
	CreateUser(ctx context.Context, userID, name string) error
	CreateEvent(ctx context.Context, creatorID, description string, date time.Time, clock string) (int64, error)
	Event(ctx context.Context, eventID int64) (models.Event, error)
	NextEvent(ctx context.Context, afterID int64) (models.Event, error)
	NextEventForUser(ctx context.Context, userID string, afterID int64) (models.Event, error)
	Participants(ctx context.Context, eventID int64) ([]models.Participant, error)
	AddParticipant(ctx context.Context, userID string, eventID int64) (bool, error)
	RemoveParticipant(ctx context.Context, userID string, eventID int64) (bool, error)
}

// Reminders mirrors roster membership into the platform's reminders.
type Reminders interface {
	Schedule(userID, text string, at time.Time) error
	Cancel(userID, text string, at time.Time) (reminder.CancelResult, error)
}

// Messenger is the slice of the Slack client used for onboarding.
type Messenger interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
	GetUsers(options ...slack.GetUsersOption) ([]slack.User, error)
}

// Bot holds the workflow's collaborators. Every handler converts component
// errors into an ephemeral message; nothing escapes as a fault.
type Bot struct {
	drafts    *draft.Store
	dir       Directory
	reminders Reminders
	slack     Messenger
	log       *slog.Logger
	now       func() time.Time
}

func New(dir Directory, reminders Reminders, messenger Messenger, log *slog.Logger) *Bot {
	return &Bot{
		drafts:    draft.NewStore(),
		dir:       dir,
		reminders: reminders,
		slack:     messenger,
		log:       log,
		now:       time.Now,
	}
}

// HandleCommand dispatches /event slash-command text. Unknown subcommands
// return ErrUnroutable.
func (b *Bot) HandleCommand(ctx context.Context, userID, text string) (slack.Msg, error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "" || strings.HasPrefix(trimmed, "help"):
		return helpMessage(), nil
	case strings.HasPrefix(trimmed, "all"):
		return b.showEvent(ctx, userID, 0), nil
	case strings.HasPrefix(trimmed, "me"):
		return b.showMyEvent(ctx, userID, 0), nil
	case strings.HasPrefix(trimmed, "new"):
		return b.startDraft(userID, text), nil
	default:
		return slack.Msg{}, ErrUnroutable
	}
}

// HandleInteraction dispatches a button click from one of the bot's
// messages. The callback ID identifies the view and the action carries the
// event cursor or draft decision.
func (b *Bot) HandleInteraction(ctx context.Context, cb slack.InteractionCallback) (slack.Msg, error) {
	if len(cb.ActionCallback.AttachmentActions) == 0 {
		return slack.Msg{}, ErrUnroutable
	}
	action := cb.ActionCallback.AttachmentActions[0]
	userID := cb.User.ID

	switch {
	case cb.CallbackID == callbackNewEvent && action.Value == "submit":
		return b.confirmDraft(ctx, userID), nil
	case cb.CallbackID == callbackNewEvent && action.Value == "cancel":
		return b.cancelDraft(userID), nil
	}

	eventID, err := strconv.ParseInt(action.Value, 10, 64)
	if err != nil {
		return slack.Msg{}, ErrUnroutable
	}

	switch {
	case cb.CallbackID == callbackMyEvents && action.Name == actionNext:
		return b.showMyEvent(ctx, userID, eventID), nil
	case cb.CallbackID == callbackAllEvents && action.Name == actionNext:
		return b.showEvent(ctx, userID, eventID), nil
	// Join only appears in the global feed; Leave appears in both feeds.
	case cb.CallbackID == callbackAllEvents && action.Name == actionJoin:
		return b.joinEvent(ctx, userID, eventID), nil
	case (cb.CallbackID == callbackAllEvents || cb.CallbackID == callbackMyEvents) && action.Name == actionLeave:
		return b.leaveEvent(ctx, userID, eventID), nil
	default:
		return slack.Msg{}, ErrUnroutable
	}
}

// startDraft parses the command text into a draft and renders the
// confirmation prompt. A draft the user already had is overwritten.
func (b *Bot) startDraft(userID, text string) slack.Msg {
	res, err := parse.Parse(text, b.now())
	if err != nil {
		return ephemeral("Your formatting was incorrect. Type `/event help` to see how to use `/event`.")
	}

	d := models.Draft{
		OwnerID:     userID,
		Description: res.Description,
		Date:        res.Date,
		Time:        res.Time,
	}
	b.drafts.Put(d)
	return confirmPrompt(d)
}

// confirmDraft commits the user's pending draft: the event and its creator
// roster entry are persisted first, then the creator's reminder. A reminder
// failure after the event was persisted is a degraded success; the event is
// not rolled back.
func (b *Bot) confirmDraft(ctx context.Context, userID string) slack.Msg {
	d, err := b.drafts.Take(userID)
	if err != nil {
		return ephemeral("There is no event waiting for confirmation. Use `/event new` to schedule one.")
	}

	eventID, err := b.dir.CreateEvent(ctx, userID, d.Description, d.Date, d.Time)
	if err != nil {
		b.log.Error("create event failed", "user", userID, "error", err)
		return ephemeral("An error occurred trying to create the event.")
	}

	if err := b.reminders.Schedule(userID, d.Description, d.StartsAt()); err != nil {
		b.log.Warn("reminder not scheduled", "user", userID, "event", eventID, "error", err)
		return ephemeral("Event created, but the reminder could not be set.")
	}
	return ephemeral("Event created and reminder set.")
}

// cancelDraft discards the user's pending draft and re-renders the help
// message so they can start over.
func (b *Bot) cancelDraft(userID string) slack.Msg {
	if _, err := b.drafts.Take(userID); err != nil {
		return ephemeral("There is no event waiting for confirmation. Use `/event new` to schedule one.")
	}
	return helpMessage()
}

// joinEvent adds the user to the roster and schedules their reminder, then
// pages on to the next event. A duplicate join changes nothing and issues no
// second reminder.
func (b *Bot) joinEvent(ctx context.Context, userID string, eventID int64) slack.Msg {
	added, err := b.dir.AddParticipant(ctx, userID, eventID)
	if err != nil {
		b.log.Error("join failed", "user", userID, "event", eventID, "error", err)
		return ephemeral("You could not be added to the event.")
	}

	if added {
		ev, err := b.dir.Event(ctx, eventID)
		if err != nil {
			b.log.Error("joined event not readable", "event", eventID, "error", err)
		} else if err := b.reminders.Schedule(userID, ev.Description, ev.StartsAt()); err != nil {
			b.log.Warn("reminder not scheduled", "user", userID, "event", eventID, "error", err)
		}
	}

	return b.showEvent(ctx, userID, eventID)
}

// leaveEvent removes the user from the roster and deletes their reminder,
// then pages on to the next event. Leaving an event the user is not on
// changes nothing.
func (b *Bot) leaveEvent(ctx context.Context, userID string, eventID int64) slack.Msg {
	ev, evErr := b.dir.Event(ctx, eventID)

	removed, err := b.dir.RemoveParticipant(ctx, userID, eventID)
	if err != nil {
		b.log.Error("leave failed", "user", userID, "event", eventID, "error", err)
		return ephemeral("You could not be removed from the event.")
	}

	if removed && evErr == nil {
		res, err := b.reminders.Cancel(userID, ev.Description, ev.StartsAt())
		if err != nil {
			b.log.Warn("reminder not deleted", "user", userID, "event", eventID, "error", err)
		} else if res == reminder.NotFound {
			b.log.Info("no reminder to delete", "user", userID, "event", eventID)
		}
	}

	return b.showEvent(ctx, userID, eventID)
}

// showEvent renders the event after afterID in the global feed.
func (b *Bot) showEvent(ctx context.Context, userID string, afterID int64) slack.Msg {
	ev, err := b.dir.NextEvent(ctx, afterID)
	return b.renderEvent(ctx, callbackAllEvents, userID, ev, err)
}

// showMyEvent renders the event after afterID among the user's own events.
func (b *Bot) showMyEvent(ctx context.Context, userID string, afterID int64) slack.Msg {
	ev, err := b.dir.NextEventForUser(ctx, userID, afterID)
	return b.renderEvent(ctx, callbackMyEvents, userID, ev, err)
}

func (b *Bot) renderEvent(ctx context.Context, callbackID, userID string, ev models.Event, err error) slack.Msg {
	if errors.Is(err, directory.ErrNotFound) {
		return ephemeral("You have no more scheduled events.")
	}
	if err != nil {
		b.log.Error("event lookup failed", "error", err)
		return ephemeral("An error occurred looking up events.")
	}

	people, err := b.dir.Participants(ctx, ev.ID)
	if err != nil {
		b.log.Error("participant lookup failed", "event", ev.ID, "error", err)
		return ephemeral("An error occurred looking up events.")
	}
	return eventView(callbackID, ev, people, userID)
}

// Welcome records a newly joined workspace member and greets them in the
// general channel.
func (b *Bot) Welcome(ctx context.Context, userID, name string) error {
	if err := b.dir.CreateUser(ctx, userID, name); err != nil {
		return err
	}
	_, _, err := b.slack.PostMessage("general", slack.MsgOptionText(fmt.Sprintf("Welcome @%s!", name), false))
	if err != nil {
		return fmt.Errorf("chat.postMessage: %w", err)
	}
	return nil
}

// ImportWorkspace upserts every active workspace member into the directory.
// Called after the OAuth handshake so rosters can render names immediately.
func (b *Bot) ImportWorkspace(ctx context.Context) error {
	users, err := b.slack.GetUsers()
	if err != nil {
		return fmt.Errorf("users.list: %w", err)
	}
	for _, u := range users {
		if u.Deleted {
			continue
		}
		if err := b.dir.CreateUser(ctx, u.ID, u.Name); err != nil {
			return err
		}
	}
	return nil
}
