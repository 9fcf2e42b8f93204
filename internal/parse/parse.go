// Package parse extracts a description, time and date from the free text of
// an /event command.
package parse

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrMalformedInput means the text did not contain enough colon-delimited
// segments to yield a description. Callers prompt the user to retry.
var ErrMalformedInput = errors.New("malformed event command")

var (
	datePattern = regexp.MustCompile(`\d+/\d+/\d+`)
	// Only valid 12-hour clocks extract; an out-of-range hour like "13:00 pm"
	// is no match at all, so the default applies and the confirmation prompt
	// shows the same time the reminder will fire at.
	timePattern = regexp.MustCompile(`\b(1[0-2]|0?[1-9]):[0-5][0-9] [ap]m`)
)

// Result holds the fields extracted from an event command.
type Result struct {
	Description string
	Date        time.Time
	Time        string
}

// Parse extracts an event draft from command text of the form
//
//	<command> : <description> : <time> : <date>
//
// The command word is ignored, the description is the raw segment between
// the first two colons, and the time and date may appear in either order or
// be omitted. A missing time defaults to "12:00 am" and a missing date to
// the current day. Dates are M/D/YY with two-digit years read in the
// current century.
func Parse(text string, now time.Time) (Result, error) {
	segments := strings.Split(text, ":")
	if len(segments) < 2 {
		return Result{}, ErrMalformedInput
	}

	res := Result{
		Description: segments[1],
		Time:        "12:00 am",
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}

	if m := datePattern.FindString(text); m != "" {
		d, err := time.ParseInLocation("1/2/06", m, now.Location())
		if err != nil {
			return Result{}, ErrMalformedInput
		}
		if d.Year() < 2000 {
			d = d.AddDate(100, 0, 0)
		}
		res.Date = d
	}

	if m := timePattern.FindString(text); m != "" {
		res.Time = m
	}

	return res, nil
}
