// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a batch transcription engine (a whisper.cpp server, the
// whisper.cpp library itself, or a test double) behind a single call: hand it
// a mono PCM clip, get back the recognised text.
//
// Implementations must be safe for concurrent use. The batch renamer calls
// Transcribe from several worker goroutines at once.
package stt

import (
	"context"
	"errors"
)

// ErrEmptyAudio is returned by Transcribe when the request carries no samples.
var ErrEmptyAudio = errors.New("stt: empty audio")

// Request describes one clip to transcribe.
type Request struct {
	// PCM is 16-bit signed little-endian mono audio.
	PCM []byte

	// SampleRate is the rate of PCM in Hz. Providers resample as needed.
	SampleRate int

	// Language is the BCP-47 language tag for recognition (e.g., "en").
	// An empty string selects the provider's configured default.
	Language string
}

// Validate reports whether r can be submitted to a provider.
func (r Request) Validate() error {
	if len(r.PCM) < 2 {
		return ErrEmptyAudio
	}
	if r.SampleRate <= 0 {
		return errors.New("stt: sample rate must be positive")
	}
	return nil
}

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe recognises the speech in req. It blocks until the engine
	// returns or ctx is cancelled.
	Transcribe(ctx context.Context, req Request) (Transcript, error)
}
