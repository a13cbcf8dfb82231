// Package span locates the spoken timestamp at the start of a recording.
//
// The stamp is the first stretch of speech after any leading silence. It ends
// at the first pause of at least MinSilence, so the short gaps between the
// words of "eleven fifteen sunday march twenty first" stay inside one span.
package span

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrWong99/talkytime/pkg/audio"
	"github.com/MrWong99/talkytime/pkg/provider/vad"
)

// ErrNoSpeech is returned by [Detect] when the clip contains no speech.
var ErrNoSpeech = errors.New("span: no speech detected")

// Span is a time range within a recording.
type Span struct {
	Start    time.Duration
	Duration time.Duration
}

// End returns the end offset of s.
func (s Span) End() time.Duration { return s.Start + s.Duration }

// StartSeconds returns the start offset in seconds.
func (s Span) StartSeconds() float64 { return s.Start.Seconds() }

// DurationSeconds returns the length in seconds.
func (s Span) DurationSeconds() float64 { return s.Duration.Seconds() }

// String formats s as "start+duration".
func (s Span) String() string {
	return fmt.Sprintf("%s+%s", s.Start, s.Duration)
}

// Config controls span detection.
type Config struct {
	// FrameSize is the analysis window. Default 30ms.
	FrameSize time.Duration

	// SpeechThreshold and SilenceThreshold are passed to the VAD session.
	SpeechThreshold  float64
	SilenceThreshold float64

	// MinSilence is the pause length that ends the span. Default 1.5s.
	MinSilence time.Duration

	// MaxDuration caps the span length. Zero means no cap.
	MaxDuration time.Duration

	// Padding is added on both sides of the detected speech, clamped to the
	// clip. Default 250ms.
	Padding time.Duration
}

// DefaultConfig returns the settings used when no configuration is given.
func DefaultConfig() Config {
	return Config{
		FrameSize:        30 * time.Millisecond,
		SpeechThreshold:  0.02,
		SilenceThreshold: 0.01,
		MinSilence:       1500 * time.Millisecond,
		MaxDuration:      15 * time.Second,
		Padding:          250 * time.Millisecond,
	}
}

// Detect scans clip with a session from engine and returns the span of the
// first spoken phrase.
func Detect(clip audio.Clip, engine vad.Engine, cfg Config) (Span, error) {
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = DefaultConfig().FrameSize
	}
	vcfg := vad.Config{
		SampleRate:       clip.SampleRate,
		FrameSizeMs:      int(cfg.FrameSize / time.Millisecond),
		SpeechThreshold:  cfg.SpeechThreshold,
		SilenceThreshold: cfg.SilenceThreshold,
	}
	sess, err := engine.NewSession(vcfg)
	if err != nil {
		return Span{}, fmt.Errorf("span: open vad session: %w", err)
	}
	defer sess.Close()

	frameBytes := vcfg.FrameBytes()
	if frameBytes <= 0 {
		return Span{}, fmt.Errorf("span: frame size %s holds no samples at %d Hz", cfg.FrameSize, clip.SampleRate)
	}
	frameDur := time.Duration(vcfg.FrameSizeMs) * time.Millisecond
	total := len(clip.PCM) / frameBytes

	var (
		start    = -1 // first frame of the span
		end      = -1 // last frame above the silence threshold
		runStart = -1 // first frame of the current loud run
		speaking bool
	)

	for i := range total {
		ev, err := sess.ProcessFrame(clip.PCM[i*frameBytes : (i+1)*frameBytes])
		if err != nil {
			return Span{}, fmt.Errorf("span: frame %d: %w", i, err)
		}
		if ev.Probability >= cfg.SpeechThreshold {
			if runStart < 0 {
				runStart = i
			}
		} else {
			runStart = -1
		}

		switch {
		case ev.Type == vad.SpeechStart:
			if start < 0 {
				start = i
				if runStart >= 0 {
					start = runStart
				}
			}
			speaking = true
			end = i
		case ev.Type.Speaking():
			speaking = start >= 0
			if speaking && ev.Probability >= cfg.SilenceThreshold {
				end = i
			}
		default:
			speaking = false
		}

		if start < 0 {
			continue
		}
		if cfg.MaxDuration > 0 && time.Duration(i-start+1)*frameDur >= cfg.MaxDuration {
			end = i
			break
		}
		if !speaking && time.Duration(i-end)*frameDur >= cfg.MinSilence {
			break
		}
	}

	if start < 0 {
		return Span{}, ErrNoSpeech
	}

	from := max(time.Duration(start)*frameDur-cfg.Padding, 0)
	to := min(time.Duration(end+1)*frameDur+cfg.Padding, clip.Duration())
	return Span{Start: from, Duration: to - from}, nil
}
