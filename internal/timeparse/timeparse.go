// Package timeparse turns the words of a spoken timestamp into a structured
// date and time.
//
// The phrase is expected in the order the TalkyTime announcer speaks it:
// time of day, day of week, month, day, year, optionally followed by free-form
// notes:
//
//	twenty twenty monday march eighteenth two thousand twenty one
//	thirteen hundred hours sunday march twenty first twenty twenty one kitchen demo
//
// The grammar is greedy and never backtracks. Filler words ("oh", "hundred",
// "hours", "o'clock", "and") are skipped where the announcer or the speaker may
// insert them, unknown words end a numeric field, and out-of-range values pass
// through unchanged so callers can judge plausibility themselves.
//
// All lookup tables are read-only after package initialisation; every
// function in this package is safe for concurrent use.
package timeparse

import (
	"fmt"
	"strings"
	"time"
)

// Clock is a parsed time of day. Values are not range-checked.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// Date is a parsed calendar date. Weekday is the day-of-week word as spoken;
// it is not reconciled with the calendar.
type Date struct {
	Year    int
	Month   int
	Day     int
	Weekday string
}

// Stamp is the result of parsing a full spoken timestamp.
type Stamp struct {
	Clock
	Date

	// Notes holds the words spoken after the year, space-joined.
	Notes string

	// Skipped holds words between the time of day and the day of week that
	// the time grammar did not consume.
	Skipped []string
}

// Time returns the stamp as a [time.Time] in loc. Out-of-range fields are
// normalised the way [time.Date] does.
func (s Stamp) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(s.Year, time.Month(s.Month), s.Day, s.Hour, s.Minute, s.Second, 0, loc)
}

// WeekdayMatches reports whether the spoken day of week agrees with the
// calendar day of week of the parsed date.
func (s Stamp) WeekdayMatches() bool {
	want, ok := weekdays[s.Weekday]
	if !ok {
		return false
	}
	return int(s.Time(time.UTC).Weekday()) == want
}

func (s Stamp) String() string {
	out := fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d (%s)",
		s.Year, s.Month, s.Day, s.Hour, s.Minute, s.Second, s.Weekday)
	if s.Notes != "" {
		out += " " + s.Notes
	}
	return out
}

// Tokenize lowercases text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Parse tokenises text and parses it with [ParseWords].
func Parse(text string) (Stamp, error) {
	return ParseWords(Tokenize(text))
}

// ParseWords parses a tokenised spoken timestamp. words is not modified.
func ParseWords(words []string) (Stamp, error) {
	date, timePhrase, rest, err := DateWords(words)
	if err != nil {
		return Stamp{}, err
	}
	clock, skipped := TimeWords(timePhrase)
	return Stamp{
		Clock:   clock,
		Date:    date,
		Notes:   strings.Join(rest, " "),
		Skipped: skipped,
	}, nil
}
