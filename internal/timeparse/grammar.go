package timeparse

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrNoWeekday is returned when the token stream holds no day-of-week
	// name, so the date phrase cannot be located.
	ErrNoWeekday = errors.New("timeparse: no day of week")

	// ErrNoMonth is returned when no month name follows the day of week.
	ErrNoMonth = errors.New("timeparse: no month after day of week")

	// ErrNoDay is returned when the month is not followed by an ordinal day.
	ErrNoDay = errors.New("timeparse: no day ordinal after month")

	// ErrUnparseableYear is returned when the year phrase matches none of the
	// supported spoken patterns.
	ErrUnparseableYear = errors.New("timeparse: unparseable year")
)

// Plausible centuries for a year spoken without "hundred" or "thousand".
// Recordings are expected to date from 1900 to 2199.
const (
	minCentury = 19
	maxCentury = 21
)

var (
	hourFillers   = set("hundred", "hours", "hour", "oh", "clock", "oclock", "o'clock")
	minuteFillers = set("oh", "clock", "oclock", "o'clock", "minutes", "minute", "and")
	secondUnits   = set("seconds", "second")
	minuteUnits   = set("minutes", "minute")
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// skip drops every leading word that is in fillers.
func skip(words []string, fillers map[string]bool) []string {
	for len(words) > 0 && fillers[words[0]] {
		words = words[1:]
	}
	return words
}

func skipOne(words []string, word string) []string {
	if len(words) > 0 && words[0] == word {
		return words[1:]
	}
	return words
}

// DigitPair consumes one spoken clock pair (a value 0–99 such as "twenty
// three", "oh five" or "nineteen") from the front of words and returns its
// value along with the unconsumed words. When words does not start with a
// number word the value is 0 and only a leading "oh" is consumed.
func DigitPair(words []string) (int, []string) {
	v, rest, _ := digitPair(words)
	return v, rest
}

// digitPair is DigitPair that also reports whether a number word was found.
func digitPair(words []string) (int, []string, bool) {
	words = skipOne(words, "oh")
	if len(words) == 0 {
		return 0, words, false
	}
	v, ok := Number(words[0])
	if !ok {
		return 0, words, false
	}
	words = words[1:]
	if (v == 0 || v >= 20) && len(words) > 0 {
		if ones, ok := Number(words[0]); ok && ones < 10 {
			v += ones
			words = words[1:]
		}
	}
	return v, words, true
}

// TimeWords consumes a time-of-day phrase such as "nineteen hundred hours",
// "one oh one" or "twenty three nineteen and five seconds". Every component
// is optional; a missing one is 0. The words after the phrase are returned
// untouched.
func TimeWords(words []string) (Clock, []string) {
	var c Clock

	c.Hour, words = DigitPair(words)
	words = skip(words, hourFillers)

	var sawMinute bool
	c.Minute, words, sawMinute = digitPair(words)
	words = skip(words, minuteFillers)

	c.Second, words = DigitPair(words)

	// "one hour and one minute": the value read as seconds was labelled as
	// minutes, so move it and read the seconds again.
	if !sawMinute && len(words) > 0 && minuteUnits[words[0]] {
		c.Minute, c.Second = c.Second, 0
		words = skip(words[1:], minuteFillers)
		c.Second, words = DigitPair(words)
	}

	if len(words) > 0 && secondUnits[words[0]] {
		words = words[1:]
	}
	return c, words
}

// Year consumes a spoken year. Supported forms:
//
//	two thousand [and] nine          2009
//	two thousand one hundred and one 2101
//	nineteen hundred                 1900
//	twenty one hundred and twenty    2120
//	twenty twenty one                2021
//	2021                             2021
//
// Without a "hundred" or "thousand" marker the century is forced into
// 19..21: "twenty nine" is 2009, not 2900.
func Year(words []string) (int, []string, error) {
	if len(words) == 0 {
		return 0, words, fmt.Errorf("%w: nothing after the day", ErrUnparseableYear)
	}
	if y, ok := numeralYear(words[0]); ok {
		return y, words[1:], nil
	}

	if len(words) > 1 && words[1] == "thousand" {
		n, ok := Number(words[0])
		if !ok {
			return 0, words, fmt.Errorf("%w: %q", ErrUnparseableYear, strings.Join(words, " "))
		}
		year := n * 1000
		rest := skipOne(words[2:], "and")
		if p, after, ok := digitPair(rest); ok && len(after) > 0 && after[0] == "hundred" {
			year += p * 100
			rest = skipOne(after[1:], "and")
		}
		m, rest := DigitPair(rest)
		return year + m, rest, nil
	}

	century, rest, ok := digitPair(words)
	if !ok {
		return 0, words, fmt.Errorf("%w: %q", ErrUnparseableYear, strings.Join(words, " "))
	}
	if len(rest) > 0 && rest[0] == "hundred" {
		r, rest := DigitPair(skipOne(rest[1:], "and"))
		return century*100 + r, rest, nil
	}

	if century < minCentury || century > maxCentury {
		// Only the tens word belongs to the century; give the ones word back.
		lead := words
		if lead[0] == "oh" {
			lead = lead[1:]
		}
		tens, _ := Number(lead[0])
		if tens < minCentury || tens > maxCentury {
			return 0, words, fmt.Errorf("%w: century %d out of range in %q",
				ErrUnparseableYear, century, strings.Join(words, " "))
		}
		century, rest = tens, lead[1:]
	}
	r, rest := DigitPair(rest)
	return century*100 + r, rest, nil
}

func numeralYear(word string) (int, bool) {
	if len(word) != 4 {
		return 0, false
	}
	n, ok := Number(word)
	if !ok || n < 1000 {
		return 0, false
	}
	return n, true
}

// day consumes a day-of-month: an ordinal ("eighteenth", "21st") or a tens
// word followed by an ordinal under ten ("twenty first").
func day(words []string) (int, []string, bool) {
	words = skipOne(words, "the")
	if len(words) == 0 {
		return 0, words, false
	}
	if d, ok := Ordinal(words[0]); ok {
		return d, words[1:], true
	}
	tens, ok := Number(words[0])
	if !ok || (tens != 20 && tens != 30) || len(words) < 2 {
		return 0, words, false
	}
	ones, ok := Ordinal(words[1])
	if !ok || ones >= 10 {
		return 0, words, false
	}
	return tens + ones, words[2:], true
}

// DateWords locates the date phrase in words by its day-of-week and month
// keywords. It returns the parsed date, the words spoken before the day of
// week (the time-of-day phrase) and the words left after the year.
func DateWords(words []string) (Date, []string, []string, error) {
	var d Date

	wd := slices.IndexFunc(words, IsWeekday)
	if wd < 0 {
		return d, nil, nil, fmt.Errorf("%w in %q", ErrNoWeekday, strings.Join(words, " "))
	}
	d.Weekday = words[wd]
	timePhrase := words[:wd]

	after := words[wd+1:]
	mi := slices.IndexFunc(after, func(w string) bool {
		_, ok := Month(w)
		return ok
	})
	if mi < 0 {
		return d, timePhrase, nil, fmt.Errorf("%w in %q", ErrNoMonth, strings.Join(after, " "))
	}
	d.Month, _ = Month(after[mi])

	rest := after[mi+1:]
	var ok bool
	d.Day, rest, ok = day(rest)
	if !ok {
		return d, timePhrase, rest, fmt.Errorf("%w in %q", ErrNoDay, strings.Join(rest, " "))
	}

	var err error
	d.Year, rest, err = Year(rest)
	if err != nil {
		return d, timePhrase, rest, err
	}
	return d, timePhrase, rest, nil
}
