package stt

import (
	"strings"
	"time"
)

// Transcript represents a speech-to-text result from an STT provider.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// Language is the language the engine recognised, when reported.
	Language string

	// Segments contains per-segment detail when available. May be nil for
	// providers that only return the full text.
	Segments []Segment
}

// Segment is a contiguous piece of a transcript with timing relative to the
// start of the submitted audio.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// JoinSegments concatenates the trimmed text of segs with single spaces.
func JoinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
