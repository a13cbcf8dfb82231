package timeparse

import (
	"strconv"
	"strings"
)

// corrections maps words the recognizer is known to emit in place of a
// number word. Applied before any numeric lookup.
var corrections = map[string]string{
	"why": "one",
}

var cardinals = map[string]int{
	"zero":      0,
	"one":       1,
	"two":       2,
	"three":     3,
	"four":      4,
	"five":      5,
	"six":       6,
	"seven":     7,
	"eight":     8,
	"nine":      9,
	"ten":       10,
	"eleven":    11,
	"twelve":    12,
	"thirteen":  13,
	"fourteen":  14,
	"fifteen":   15,
	"sixteen":   16,
	"seventeen": 17,
	"eighteen":  18,
	"nineteen":  19,
	"twenty":    20,
	"thirty":    30,
	"forty":     40,
	"fifty":     50,
	"sixty":     60,
	"seventy":   70,
	"eighty":    80,
	"ninety":    90,
	"hundred":   100,
	"thousand":  1000,
}

// ordinals maps day-of-month ordinals to their value. Word ordinals cover
// "first" through "thirtieth"; compound days ("twenty first") are assembled
// by the date grammar. Numeral ordinals ("18th", "21st") are added in init.
var ordinals = map[string]int{
	"first":       1,
	"second":      2,
	"third":       3,
	"fourth":      4,
	"fifth":       5,
	"sixth":       6,
	"seventh":     7,
	"eighth":      8,
	"ninth":       9,
	"tenth":       10,
	"eleventh":    11,
	"twelfth":     12,
	"thirteenth":  13,
	"fourteenth":  14,
	"fifteenth":   15,
	"sixteenth":   16,
	"seventeenth": 17,
	"eighteenth":  18,
	"nineteenth":  19,
	"twentieth":   20,
	"thirtieth":   30,
}

var weekdays = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

var months = map[string]int{
	"january":   0,
	"february":  1,
	"march":     2,
	"april":     3,
	"may":       4,
	"june":      5,
	"july":      6,
	"august":    7,
	"september": 8,
	"october":   9,
	"november":  10,
	"december":  11,
}

func init() {
	for n := 1; n <= 31; n++ {
		ordinals[strconv.Itoa(n)+ordinalSuffix(n)] = n
	}
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

// Correct returns the word the recognizer most likely meant. Words without a
// known substitution are returned unchanged.
func Correct(word string) string {
	if c, ok := corrections[word]; ok {
		return c
	}
	return word
}

// Number returns the integer denoted by a single English number word or
// decimal numeral. ok is false when word carries no numeric value, which the
// grammar treats as the end of a numeric run rather than an error.
func Number(word string) (n int, ok bool) {
	word = Correct(word)
	if n, ok := cardinals[word]; ok {
		return n, true
	}
	if word == "" || strings.TrimLeft(word, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Ordinal returns the day-of-month value of an ordinal word or numeral
// ordinal.
func Ordinal(word string) (int, bool) {
	n, ok := ordinals[Correct(word)]
	return n, ok
}

// IsWeekday reports whether word names a day of the week.
func IsWeekday(word string) bool {
	_, ok := weekdays[word]
	return ok
}

// Month returns the 1-based month for a month name.
func Month(word string) (int, bool) {
	i, ok := months[word]
	if !ok {
		return 0, false
	}
	return i + 1, true
}
