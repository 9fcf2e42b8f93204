package bot

import (
	"strconv"
	"strings"

	"github.com/slack-go/slack"

	"eventbot/internal/models"
)

// Callback IDs mark which view a button click originated from.
const (
	callbackNewEvent  = "submit_new_event"
	callbackAllEvents = "get_event"
	callbackMyEvents  = "get_my_event"
)

// Action names on the attachment buttons.
const (
	actionYes   = "YesButton"
	actionNo    = "NoButton"
	actionJoin  = "JoinEventButton"
	actionLeave = "LeaveEventButton"
	actionNext  = "NextEventButton"
)

// ephemeral wraps text in a reply only the invoking user sees, replacing
// the message whose button was clicked.
func ephemeral(text string) slack.Msg {
	return slack.Msg{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: true,
		Text:            text,
	}
}

func helpMessage() slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text: "Need some help with `/event`?\n" +
			"Use `/event help` to see this message again, or use it to view, join, or leave existing scheduled " +
			"events or schedule new ones! Here are some examples:\n" +
			"Just typing `/event` is the same as typing `/event help`\n" +
			"`/event all` will display all of the scheduled events one at a time\n" +
			"`/event me` will display the events you are in one at a time\n" +
			"`/event new : Go to Lisa's wedding : 3:00 pm : 06/19/17` will create a new event and set a Slack " +
			"reminder for you",
	}
}

// confirmPrompt summarizes a draft and asks the user to confirm or cancel
// it before anything is persisted.
func confirmPrompt(d models.Draft) slack.Msg {
	return slack.Msg{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: true,
		Text:            "Is this correct?",
		Attachments: []slack.Attachment{{
			Fallback:   "Your formatting was incorrect. Type `/event help` to see how to use `/event`.",
			CallbackID: callbackNewEvent,
			Color:      "good",
			Title:      "Description",
			Text:       d.Description,
			Fields: []slack.AttachmentField{
				{Title: "Time", Value: d.Time, Short: true},
				{Title: "Date", Value: models.FormatDate(d.Date), Short: true},
			},
			Actions: []slack.AttachmentAction{
				{Name: actionYes, Text: "Yes", Type: "button", Value: "submit", Style: "primary"},
				{Name: actionNo, Text: "No", Type: "button", Value: "cancel", Style: "danger"},
			},
		}},
	}
}

// eventView renders one event with its attendees. The buttons carry the
// event's ID as the cursor for the next interaction; the first button is
// Leave when the viewer is on the roster and Join when not, except in the
// personal feed where every event is already joined.
func eventView(callbackID string, ev models.Event, people []models.Participant, viewerID string) slack.Msg {
	names := make([]string, 0, len(people))
	member := false
	for _, p := range people {
		names = append(names, p.Name)
		if p.UserID == viewerID {
			member = true
		}
	}

	cursor := strconv.FormatInt(ev.ID, 10)
	first := slack.AttachmentAction{Name: actionJoin, Text: "Join", Type: "button", Value: cursor}
	if member {
		first = slack.AttachmentAction{Name: actionLeave, Text: "Leave", Type: "button", Value: cursor}
	}

	return slack.Msg{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: true,
		Attachments: []slack.Attachment{{
			Fallback:   "You have no events scheduled",
			CallbackID: callbackID,
			Title:      "Event",
			Text:       ev.Description,
			Fields: []slack.AttachmentField{
				{Title: "Time", Value: ev.Time, Short: true},
				{Title: "Date", Value: models.FormatDate(ev.Date), Short: true},
				{Title: "Attendees", Value: strings.Join(names, "\n"), Short: true},
			},
			Actions: []slack.AttachmentAction{
				first,
				{Name: actionNext, Text: "Next", Type: "button", Value: cursor, Style: "primary"},
			},
		}},
	}
}
