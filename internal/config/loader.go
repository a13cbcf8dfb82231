package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"whisper", "whisper-native"},
	"vad": {"energy"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over [Default] and validates
// the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", cfg.Workers))
	}

	// Providers
	if cfg.STT.Name == "" {
		errs = append(errs, errors.New("stt.name is required"))
	}
	validateProviderName("stt", cfg.STT.Name)
	providerKey := func(e ProviderEntry) string { return e.Name + "|" + e.BaseURL + "|" + e.Model }
	seen := map[string]string{providerKey(cfg.STT): "stt"}
	for i, fb := range cfg.STTFallbacks {
		prefix := fmt.Sprintf("stt_fallbacks[%d]", i)
		if fb.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		validateProviderName("stt", fb.Name)
		key := providerKey(fb)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("%s duplicates %s", prefix, prev))
		}
		seen[key] = prefix
	}
	if cfg.VAD.Name == "" {
		errs = append(errs, errors.New("vad.name is required"))
	}
	validateProviderName("vad", cfg.VAD.Name)
	if cfg.Breaker.MaxFailures < 0 || cfg.Breaker.ResetTimeout < 0 {
		errs = append(errs, errors.New("breaker values must not be negative"))
	}

	// Span
	s := cfg.Span
	if s.FrameSize < 0 || s.MinSilence < 0 || s.MaxDuration < 0 || s.Padding < 0 {
		errs = append(errs, errors.New("span durations must not be negative"))
	}
	if s.SpeechThreshold < 0 || s.SpeechThreshold > 1 {
		errs = append(errs, fmt.Errorf("span.speech_threshold %.3f is out of range [0, 1]", s.SpeechThreshold))
	}
	if s.SilenceThreshold < 0 || s.SilenceThreshold > s.SpeechThreshold {
		errs = append(errs, fmt.Errorf("span.silence_threshold %.3f must be in [0, span.speech_threshold]", s.SilenceThreshold))
	}

	// Rename
	if cfg.Rename.Layout == "" {
		errs = append(errs, errors.New("rename.layout must not be empty"))
	}
	if strings.ContainsAny(cfg.Rename.Layout, `/\`) {
		errs = append(errs, fmt.Errorf("rename.layout %q must not contain path separators", cfg.Rename.Layout))
	}
	if strings.ContainsAny(cfg.Rename.Separator, `/\`) {
		errs = append(errs, fmt.Errorf("rename.separator %q must not contain path separators", cfg.Rename.Separator))
	}
	if cfg.Rename.Layout != "" && !strings.Contains(cfg.Rename.Layout, "2006") && !strings.Contains(cfg.Rename.Layout, "06") {
		slog.Warn("rename.layout has no year; renamed files from different years may collide", "layout", cfg.Rename.Layout)
	}

	// Metrics
	if addr := cfg.Metrics.ListenAddr; addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Errorf("metrics.listen_addr %q is invalid: %w", addr, err))
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
