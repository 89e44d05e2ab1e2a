// Package timefmt handles the compact "HH:mm DD/MM" timestamps used for task
// start/end times and change logs. The year is never written and is always
// taken to be the current one.
package timefmt

import (
	"fmt"
	"strings"
	"time"
)

const (
	compactLayout = "15:04 02/01"
	isoLayout     = "2006-01-02T15:04:05.000Z"
)

// Format renders t as "HH:mm DD/MM" in t's location.
func Format(t time.Time) string {
	return t.Format(compactLayout)
}

// Parse reads "HH:mm DD/MM" in now's location, using now's year.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty compact timestamp")
	}
	t, err := time.ParseInLocation(compactLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse compact timestamp %q: %w", s, err)
	}
	return time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

// IsToday reports whether the compact timestamp s falls on now's calendar day.
func IsToday(s string, now time.Time) bool {
	t, err := Parse(s, now)
	if err != nil {
		return false
	}
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsOverdue reports whether endTime has passed for a task that is still open.
func IsOverdue(endTime string, closed bool, now time.Time) bool {
	if closed {
		return false
	}
	t, err := Parse(endTime, now)
	if err != nil {
		return false
	}
	return t.Before(now)
}

// ISO renders t as a UTC ISO-8601 instant with millisecond precision.
func ISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// DisplayFromISO converts a canonical ISO instant into the compact display form
// in loc. Unparseable input yields "".
func DisplayFromISO(iso string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return ""
	}
	return Format(t.In(loc))
}
