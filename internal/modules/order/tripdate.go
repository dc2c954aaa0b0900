// README: Trip date normalization into a zone-less wall-clock timestamp.
package order

import (
	"strings"
	"time"
)

const (
	// CanonicalLayout is the storage form: a naive local timestamp.
	CanonicalLayout = "2006-01-02 15:04:05"
	// DisplayLayout is the day-first form shown to travelers.
	DisplayLayout = "2.1.2006, 15:04:05"

	dateOnlyLayout   = "2006-01-02"
	defaultStartTime = "08:00:00"
)

// Local date-time shapes, tried in order. Seconds are optional.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Timestamps that carry a zone or offset.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

// NormalizeTripDate converts a submitted date or date-time into CanonicalLayout.
//
// A bare date gets the 08:00:00 default start. Local date-times are kept as typed, with
// ":00" seconds when missing, and rejected when loc skips that wall clock. Offset-bearing timestamps are converted to loc and the zone
// is dropped, keeping the wall clock the server's zone shows for that instant.
// It returns ("", false) when raw matches none of these shapes.
func NormalizeTripDate(raw string, loc *time.Location) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, s, loc); err == nil {
		return t.Format(dateOnlyLayout) + " " + defaultStartTime, true
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			// a time skipped by a DST jump in loc comes back shifted; it never existed
			if t.Format(layout) != s {
				return "", false
			}
			return t.Format(CanonicalLayout), true
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc).Format(CanonicalLayout), true
		}
	}
	return "", false
}

// ParseTripDate reads a canonical timestamp as a wall clock in loc.
func ParseTripDate(canonical string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(CanonicalLayout, canonical, loc)
}

func FormatTripDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// wallClock re-anchors a zone-less value read from a TIMESTAMP column into loc.
func wallClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
