// Package config provides the configuration schema, loader, and provider
// registry for talkytime.
package config

import (
	"fmt"
	"time"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// DefaultLayout is the Go time layout used for renamed files.
const DefaultLayout = "2006-01-02_15-04-05"

// Config is the root configuration structure for talkytime.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
// Fields missing from the file keep the values from [Default].
type Config struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// Workers is the number of recordings processed concurrently. Zero
	// selects one worker per CPU.
	Workers int `yaml:"workers"`

	// Language is the language hint passed to the recogniser (e.g., "en").
	Language string `yaml:"language"`

	// STT is the primary speech-to-text provider.
	STT ProviderEntry `yaml:"stt"`

	// STTFallbacks are tried in order when the primary fails.
	STTFallbacks []ProviderEntry `yaml:"stt_fallbacks"`

	// Breaker tunes the circuit breaker placed in front of every STT provider.
	Breaker BreakerConfig `yaml:"breaker"`

	// VAD selects the voice activity detector used to find the spoken stamp.
	VAD ProviderEntry `yaml:"vad"`

	Span    SpanConfig    `yaml:"span"`
	Rename  RenameConfig  `yaml:"rename"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ProviderEntry is the common configuration block shared by all provider types.
// The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "whisper").
	Name string `yaml:"name"`

	// BaseURL is the server address for network providers
	// (e.g., "http://localhost:8080").
	BaseURL string `yaml:"base_url"`

	// Model selects a model. For "whisper-native" this is the path to a ggml
	// model file; for "whisper" it is forwarded to the server.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above.
	Options map[string]any `yaml:"options"`
}

// Option returns the option key as a string, or "" if absent.
func (e ProviderEntry) Option(key string) string {
	v, ok := e.Options[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// IntOption returns the option key as an int, or def if absent or not a
// number.
func (e ProviderEntry) IntOption(key string, def int) int {
	switch v := e.Options[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// DurationOption returns the option key parsed as a duration ("30s", "1m"),
// or def if absent or malformed.
func (e ProviderEntry) DurationOption(key string, def time.Duration) time.Duration {
	s := e.Option(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// BreakerConfig tunes per-provider circuit breakers.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens a breaker.
	MaxFailures int `yaml:"max_failures"`

	// ResetTimeout is how long an open breaker rejects calls before probing.
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// SpanConfig controls how the spoken stamp is located in a recording.
type SpanConfig struct {
	FrameSize        time.Duration `yaml:"frame_size"`
	SpeechThreshold  float64       `yaml:"speech_threshold"`
	SilenceThreshold float64       `yaml:"silence_threshold"`
	MinSilence       time.Duration `yaml:"min_silence"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	Padding          time.Duration `yaml:"padding"`
}

// RenameConfig controls the generated file names.
type RenameConfig struct {
	// Layout is a Go time layout for the stamp part of the name.
	Layout string `yaml:"layout"`

	// Separator joins the stamp and the notes slug.
	Separator string `yaml:"separator"`

	// Notes appends the words spoken after the date to the file name.
	Notes bool `yaml:"notes"`

	// SetModTime sets the file's modification time to the spoken stamp.
	SetModTime bool `yaml:"set_mod_time"`
}

// MetricsConfig controls the Prometheus and status endpoints.
type MetricsConfig struct {
	// ListenAddr, when set, serves /metrics, /healthz, /readyz and /progress
	// on this address while a batch runs (e.g., ":9464").
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Language: "en",
		STT: ProviderEntry{
			Name:    "whisper",
			BaseURL: "http://127.0.0.1:8080",
		},
		Breaker: BreakerConfig{
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
		},
		VAD: ProviderEntry{Name: "energy"},
		Span: SpanConfig{
			FrameSize:        30 * time.Millisecond,
			SpeechThreshold:  0.02,
			SilenceThreshold: 0.01,
			MinSilence:       1500 * time.Millisecond,
			MaxDuration:      15 * time.Second,
			Padding:          250 * time.Millisecond,
		},
		Rename: RenameConfig{
			Layout:    DefaultLayout,
			Separator: "_",
			Notes:     true,
		},
	}
}
