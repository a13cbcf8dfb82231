// Package energy provides a [vad.Engine] that classifies frames by their
// root-mean-square energy.
//
// The score of a frame is its RMS normalised to [0, 1] (full-scale 16-bit
// signal = 1). A segment starts once ConfirmFrames consecutive frames score at
// or above SpeechThreshold, and ends after more than HangoverFrames
// consecutive frames score below SilenceThreshold. Reasonable thresholds for
// close-miked speech are 0.02 and 0.01.
package energy

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/MrWong99/talkytime/pkg/provider/vad"
)

const (
	defaultConfirmFrames  = 2
	defaultHangoverFrames = 3
)

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithConfirmFrames sets how many consecutive loud frames are needed before a
// SpeechStart is reported. Values below 1 are treated as 1.
func WithConfirmFrames(n int) Option {
	return func(e *Engine) {
		e.confirm = max(n, 1)
	}
}

// WithHangoverFrames sets how many quiet frames are tolerated inside a speech
// segment before SpeechEnd is reported.
func WithHangoverFrames(n int) Option {
	return func(e *Engine) {
		e.hangover = max(n, 0)
	}
}

// Engine is an RMS energy VAD. It holds no per-stream state and is safe for
// concurrent use.
type Engine struct {
	confirm  int
	hangover int
}

// Ensure Engine implements vad.Engine at compile time.
var _ vad.Engine = (*Engine)(nil)

// New returns an Engine configured by opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		confirm:  defaultConfirmFrames,
		hangover: defaultHangoverFrames,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewSession implements [vad.Engine].
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("energy: %w", err)
	}
	return &session{
		cfg:        cfg,
		frameBytes: cfg.FrameBytes(),
		confirm:    e.confirm,
		hangover:   e.hangover,
	}, nil
}

type session struct {
	cfg        vad.Config
	frameBytes int
	confirm    int
	hangover   int

	mu       sync.Mutex
	speaking bool
	loud     int
	quiet    int
	closed   bool
}

// ProcessFrame implements [vad.SessionHandle].
func (s *session) ProcessFrame(frame []byte) (vad.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return vad.Event{}, vad.ErrClosed
	}
	if len(frame) != s.frameBytes {
		return vad.Event{}, fmt.Errorf("energy: frame is %d bytes, want %d", len(frame), s.frameBytes)
	}

	p := min(RMS(frame)/32768, 1)
	ev := vad.Event{Probability: p}

	if !s.speaking {
		if p < s.cfg.SpeechThreshold {
			s.loud = 0
			ev.Type = vad.Silence
			return ev, nil
		}
		s.loud++
		if s.loud < s.confirm {
			ev.Type = vad.Silence
			return ev, nil
		}
		s.speaking = true
		s.quiet = 0
		ev.Type = vad.SpeechStart
		return ev, nil
	}

	if p >= s.cfg.SilenceThreshold {
		s.quiet = 0
		ev.Type = vad.SpeechContinue
		return ev, nil
	}
	s.quiet++
	if s.quiet <= s.hangover {
		ev.Type = vad.SpeechContinue
		return ev, nil
	}
	s.speaking = false
	s.loud = 0
	ev.Type = vad.SpeechEnd
	return ev, nil
}

// Reset implements [vad.SessionHandle].
func (s *session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = false
	s.loud = 0
	s.quiet = 0
}

// Close implements [vad.SessionHandle].
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// RMS returns the root-mean-square energy of a 16-bit signed little-endian
// PCM buffer, in sample units (0–32 767). Returns 0 for buffers shorter than
// one sample.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}
