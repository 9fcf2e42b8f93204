package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event is a single-occurrence scheduled item. The roster is kept as a
// separate relation; everything here is immutable after creation.
type Event struct {
	ID          int64
	Description string
	// Date is the calendar day the event occurs on, at midnight in the
	// server's local zone.
	Date time.Time
	// Time is the 12-hour clock string as entered, e.g. "3:00 pm".
	Time      string
	CreatorID string
}

// Draft is an unconfirmed event held per user until it is confirmed,
// cancelled, or overwritten by a newer draft.
type Draft struct {
	OwnerID     string
	Description string
	Date        time.Time
	Time        string
}

// Participant is a roster member with a display name.
type Participant struct {
	UserID string
	Name   string
}

// Clock converts a 12-hour time such as "3:00 pm" into an hour and minute
// on the 24-hour clock.
func Clock(s string) (hour, minute int, err error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	hm := strings.SplitN(fields[0], ":", 2)
	if len(hm) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	hour, err = strconv.Atoi(hm[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	minute, err = strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	switch fields[1] {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("invalid clock %q", s)
	}
	return hour, minute, nil
}

// StartsAt combines the event's date and clock time into an instant in the
// server's local time zone. Slack reminders are created for this instant.
func (e Event) StartsAt() time.Time {
	return startsAt(e.Date, e.Time)
}

// StartsAt is the instant the drafted event would occur at.
func (d Draft) StartsAt() time.Time {
	return startsAt(d.Date, d.Time)
}

func startsAt(date time.Time, clock string) time.Time {
	h, m, err := Clock(clock)
	if err != nil {
		h, m = 0, 0
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, time.Local)
}

// FormatDate renders a date the way the confirmation prompt and event views
// display it, e.g. "6/19/2017".
func FormatDate(d time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(d.Month()), d.Day(), d.Year())
}
