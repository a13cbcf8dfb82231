package timeparse_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/talkytime/internal/timeparse"
)

func TestParse_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantClock timeparse.Clock
		wantDate  timeparse.Date
		wantNotes string
	}{
		{
			name:      "thousand year",
			input:     "twenty twenty monday march eighteenth two thousand twenty one",
			wantClock: clock(20, 20, 0),
			wantDate:  timeparse.Date{Year: 2021, Month: 3, Day: 18, Weekday: "monday"},
		},
		{
			name:      "compound ordinal",
			input:     "eleven fifteen sunday march twenty first two thousand twenty one",
			wantClock: clock(11, 15, 0),
			wantDate:  timeparse.Date{Year: 2021, Month: 3, Day: 21, Weekday: "sunday"},
		},
		{
			name:      "hundred hours",
			input:     "thirteen hundred hours sunday march twenty first two thousand twenty one",
			wantClock: clock(13, 0, 0),
			wantDate:  timeparse.Date{Year: 2021, Month: 3, Day: 21, Weekday: "sunday"},
		},
		{
			name:      "notes after year",
			input:     "Nine Oh Five Tuesday December 7th twenty twenty why Band Practice",
			wantClock: clock(9, 5, 0),
			wantDate:  timeparse.Date{Year: 2021, Month: 12, Day: 7, Weekday: "tuesday"},
			wantNotes: "band practice",
		},
		{
			name:      "seconds",
			input:     "twenty three nineteen and twenty three seconds friday january first two thousand",
			wantClock: clock(23, 19, 23),
			wantDate:  timeparse.Date{Year: 2000, Month: 1, Day: 1, Weekday: "friday"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := timeparse.Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			if got.Clock != tc.wantClock {
				t.Errorf("clock = %+v, want %+v", got.Clock, tc.wantClock)
			}
			if got.Date != tc.wantDate {
				t.Errorf("date = %+v, want %+v", got.Date, tc.wantDate)
			}
			if got.Notes != tc.wantNotes {
				t.Errorf("notes = %q, want %q", got.Notes, tc.wantNotes)
			}
			if len(got.Skipped) != 0 {
				t.Errorf("skipped = %q, want none", got.Skipped)
			}
		})
	}
}

func TestParse_SkippedTimeWords(t *testing.T) {
	t.Parallel()
	got, err := timeparse.Parse("ten thirty um monday may third twenty twenty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Clock != clock(10, 30, 0) {
		t.Errorf("clock = %+v", got.Clock)
	}
	if !reflect.DeepEqual(got.Skipped, []string{"um"}) {
		t.Errorf("skipped = %q, want [um]", got.Skipped)
	}
}

func TestParse_NoWeekdayIsDistinctFailure(t *testing.T) {
	t.Parallel()
	_, err := timeparse.Parse("hello world this is a recording")
	if !errors.Is(err, timeparse.ErrNoWeekday) {
		t.Fatalf("err = %v, want ErrNoWeekday", err)
	}
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()
	const input = "twenty twenty monday march eighteenth two thousand twenty one with stuff"
	first, err := timeparse.Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 5 {
		again, err := timeparse.Parse(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("re-parse differs: %+v vs %+v", first, again)
		}
	}
}

func TestParseWords_DoesNotModifyInput(t *testing.T) {
	t.Parallel()
	words := timeparse.Tokenize("eleven fifteen sunday march twenty first two thousand twenty one")
	orig := append([]string(nil), words...)
	if _, err := timeparse.ParseWords(words); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(words, orig) {
		t.Errorf("input modified: %q", words)
	}
}

func TestParse_ConcurrentUse(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := timeparse.Parse("eleven fifteen sunday march twenty first two thousand twenty one")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if got.Day != 21 {
				t.Errorf("day = %d, want 21", got.Day)
			}
		}()
	}
	wg.Wait()
}

func TestStamp_WeekdayMatches(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  bool
	}{
		// 2021-03-21 was a Sunday, 2021-03-18 a Thursday.
		{"eleven fifteen sunday march twenty first two thousand twenty one", true},
		{"twenty twenty monday march eighteenth two thousand twenty one", false},
	}
	for _, tc := range tests {
		s, err := timeparse.Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.input, err)
		}
		if got := s.WeekdayMatches(); got != tc.want {
			t.Errorf("WeekdayMatches(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestStamp_TimeAndString(t *testing.T) {
	t.Parallel()
	s, err := timeparse.Parse("eleven fifteen sunday march twenty first two thousand twenty one porch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2021, time.March, 21, 11, 15, 0, 0, time.UTC)
	if got := s.Time(time.UTC); !got.Equal(want) {
		t.Errorf("Time = %v, want %v", got, want)
	}
	if got, want := s.String(), "2021-03-21 11:15:00 (sunday) porch"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		word   string
		want   int
		wantOK bool
	}{
		{"zero", 0, true},
		{"nineteen", 19, true},
		{"thirty", 30, true},
		{"hundred", 100, true},
		{"thousand", 1000, true},
		{"why", 1, true},
		{"42", 42, true},
		{"oh", 0, false},
		{"hours", 0, false},
		{"", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range tests {
		got, ok := timeparse.Number(tc.word)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Number(%q) = %d, %v; want %d, %v", tc.word, got, ok, tc.want, tc.wantOK)
		}
	}
}
