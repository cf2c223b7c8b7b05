// Package stats filters a library by date and aggregates play counts.
//
// Every function takes the library explicitly and returns a new value; the
// input is never modified.
package stats

import (
	"errors"
	"fmt"
	"time"

	"musicstats/internal/library"
)

const (
	// DateLayout is the calendar-date form of range bounds.
	DateLayout = "2006-01-02"
	// TimestampLayout is the form of a track's "Date Added" value.
	TimestampLayout = "2006-01-02T15:04:05Z"
)

// ErrInvalidDate is wrapped by every date parsing failure.
var ErrInvalidDate = errors.New("invalid date")

// Range is an inclusive time window.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ParseRange builds a Range from calendar dates. start is midnight UTC of the
// start date. A non-empty end covers that whole day; an empty end means now.
func ParseRange(start, end string, now time.Time) (Range, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Range{}, fmt.Errorf("%w: start date %q: expected YYYY-MM-DD", ErrInvalidDate, start)
	}

	if end == "" {
		return Range{Start: s, End: now.UTC()}, nil
	}

	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Range{}, fmt.Errorf("%w: end date %q: expected YYYY-MM-DD", ErrInvalidDate, end)
	}
	return Range{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
}

// FilterByDate keeps the tracks whose "Date Added" falls within
// [start, end]. An empty end means the current moment.
func FilterByDate(lib *library.Library, start, end string) (*library.Library, error) {
	r, err := ParseRange(start, end, time.Now())
	if err != nil {
		return nil, err
	}
	return Filter(lib, r)
}

// Filter keeps the tracks whose "Date Added" falls within r. Tracks without
// the property are dropped. A malformed timestamp aborts the whole call, as
// does a value that is neither a date nor a string.
func Filter(lib *library.Library, r Range) (*library.Library, error) {
	out := library.New()

	for id, track := range lib.All() {
		value, present := track[library.KeyDateAdded]
		if !present {
			continue
		}

		added, err := parseTimestamp(value)
		if err != nil {
			return nil, fmt.Errorf("%w: track %d %s: %v", ErrInvalidDate, id, library.KeyDateAdded, err)
		}

		if r.Contains(added) {
			out.Add(id, track)
		}
	}

	return out, nil
}

// parseTimestamp accepts a <date> or <string> value holding a UTC timestamp.
func parseTimestamp(value any) (time.Time, error) {
	var raw string
	switch v := value.(type) {
	case library.Date:
		raw = string(v)
	case string:
		raw = v
	default:
		return time.Time{}, fmt.Errorf("unexpected %T value %v", value, value)
	}

	t, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", raw)
	}
	return t, nil
}
