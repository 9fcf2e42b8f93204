// Package reminder keeps each participant's Slack reminder in step with
// their roster membership: created on join or event creation, deleted on
// leave. Slack keeps the reminder IDs, so deletion works by matching the
// user, text and trigger time against reminders.list.
package reminder

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

// SlackAPI is the subset of the Slack Web API the synchronizer needs.
// *slack.Client satisfies it.
type SlackAPI interface {
	AddUserReminder(userID, text, time string) (*slack.Reminder, error)
	ListReminders() ([]*slack.Reminder, error)
	DeleteReminder(id string) error
}

// CancelResult reports what Cancel did.
type CancelResult int

const (
	// Deleted means a matching reminder was found and removed.
	Deleted CancelResult = iota
	// NotFound means no matching reminder exists. The reminder was already
	// gone or never created; this is informational, not a failure.
	NotFound
)

// Synchronizer mirrors roster membership into Slack reminders. Failures are
// reported to the caller and never retried; the persisted roster is the
// source of truth and is not rolled back when a reminder call fails.
type Synchronizer struct {
	api SlackAPI
	log *slog.Logger
}

func NewSynchronizer(api SlackAPI, log *slog.Logger) *Synchronizer {
	return &Synchronizer{api: api, log: log}
}

// Schedule asks Slack to create a reminder for the user at the given instant.
func (s *Synchronizer) Schedule(userID, text string, at time.Time) error {
	_, err := s.api.AddUserReminder(userID, text, strconv.FormatInt(at.Unix(), 10))
	if err != nil {
		return fmt.Errorf("reminders.add: %w", err)
	}
	s.log.Info("reminder scheduled", "user", userID, "at", at)
	return nil
}

// Cancel deletes the user's reminder whose text and trigger time match.
func (s *Synchronizer) Cancel(userID, text string, at time.Time) (CancelResult, error) {
	reminders, err := s.api.ListReminders()
	if err != nil {
		return NotFound, fmt.Errorf("reminders.list: %w", err)
	}

	want := int(at.Unix())
	for _, r := range reminders {
		if r.User != userID || r.Text != text || r.Time != want {
			continue
		}
		if err := s.api.DeleteReminder(r.ID); err != nil {
			return NotFound, fmt.Errorf("reminders.delete: %w", err)
		}
		s.log.Info("reminder deleted", "user", userID, "at", at)
		return Deleted, nil
	}

	s.log.Info("no reminder to delete", "user", userID, "at", at)
	return NotFound, nil
}
