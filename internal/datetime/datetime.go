// Package datetime provides the conversion primitives used to move datetime strings between a
// wall-clock location and UTC.
//
// Every conversion is fail-soft: input that cannot be parsed is returned unchanged, and Split never panics.
package datetime

import (
	"errors"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of the date fragment produced by Split.
	DateLayout = "2006-01-02"

	// TimeLayout is the layout of the time fragment produced by Split (before the 'Z' suffix is added).
	TimeLayout = "15:04:05.000"

	// LocalLayout is the layout produced by ToLocal, local time is implied so no zone marker is written.
	LocalLayout = DateLayout + "T" + TimeLayout

	// utcSuffix marks a value as UTC.
	utcSuffix = "Z"
)

// ErrUnparseable is returned by Parse when no supported layout matches the input.
var ErrUnparseable = errors.New("unparseable datetime")

// layouts are tried in order by Parse, the first match wins.
// Layouts with a fractional second field accept input without one.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	DateLayout,
}

// Converter rewrites a single datetime string.
type Converter func(instant string) string

// Splitter breaks a combined instant back into its date and time fragments.
type Splitter func(instant string) Parts

// Parts holds the date and time fragments of an instant.
type Parts struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Parse parses s using the supported layouts.
// Values that carry an explicit offset keep it, all other values are read as wall-clock time in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseable
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnparseable
}

// Combine joins a date and a time fragment into one instant string.
// No validation is performed.
func Combine(date string, t string) string {
	return date + "T" + t
}

// Split parses instant as UTC and returns its date and time fragments.
// The time fragment carries a trailing 'Z' so it still reads as UTC when written back on its own.
//
// When instant cannot be parsed the raw value is split on 'T' instead: the date is the text before the
// first 'T', the time is the text between the first and second 'T' (empty when there is no 'T').
func Split(instant string) Parts {
	t, err := Parse(instant, time.UTC)
	if err != nil {
		return naiveSplit(instant)
	}

	t = t.UTC()
	return Parts{
		Date: t.Format(DateLayout),
		Time: t.Format(TimeLayout) + utcSuffix,
	}
}

// ToLocal returns a Converter that reads UTC instants and writes them as wall-clock time in loc.
// A nil loc uses time.Local.
func ToLocal(loc *time.Location) Converter {
	loc = orLocal(loc)
	return func(instant string) string {
		t, err := Parse(instant, time.UTC)
		if err != nil {
			return instant
		}
		return t.In(loc).Format(LocalLayout)
	}
}

// ToUTC returns a Converter that reads wall-clock instants in loc and writes them as UTC.
// A nil loc uses time.Local.
func ToUTC(loc *time.Location) Converter {
	loc = orLocal(loc)
	return func(instant string) string {
		t, err := Parse(instant, loc)
		if err != nil {
			return instant
		}
		return t.UTC().Format(LocalLayout) + utcSuffix
	}
}

func naiveSplit(s string) Parts {
	parts := strings.SplitN(s, "T", 3)

	var p Parts
	p.Date = parts[0]
	if len(parts) > 1 {
		p.Time = parts[1]
	}

	return p
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
