package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrWong99/talkytime/internal/app"
	"github.com/MrWong99/talkytime/internal/config"
	"github.com/MrWong99/talkytime/internal/resilience"
	"github.com/MrWong99/talkytime/pkg/provider/stt"
	"github.com/MrWong99/talkytime/pkg/provider/stt/whisper"
	"github.com/MrWong99/talkytime/pkg/provider/stt/whisper/native"
	"github.com/MrWong99/talkytime/pkg/provider/vad"
	"github.com/MrWong99/talkytime/pkg/provider/vad/energy"
)

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := entry.Option("language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		if prompt := entry.Option("prompt"); prompt != "" {
			opts = append(opts, whisper.WithPrompt(prompt))
		}
		if d := entry.DurationOption("timeout", 0); d > 0 {
			opts = append(opts, whisper.WithTimeout(d))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		modelPath := entry.Model
		if modelPath == "" {
			modelPath = entry.Option("model_path")
		}
		var opts []native.Option
		if lang := entry.Option("language"); lang != "" {
			opts = append(opts, native.WithLanguage(lang))
		}
		if n := entry.IntOption("threads", 0); n > 0 {
			opts = append(opts, native.WithThreads(uint(n)))
		}
		return native.New(modelPath, opts...)
	})

	reg.RegisterVAD("energy", func(entry config.ProviderEntry) (vad.Engine, error) {
		var opts []energy.Option
		if n := entry.IntOption("confirm_frames", 0); n > 0 {
			opts = append(opts, energy.WithConfirmFrames(n))
		}
		if n := entry.IntOption("hangover_frames", -1); n >= 0 {
			opts = append(opts, energy.WithHangoverFrames(n))
		}
		return energy.New(opts...), nil
	})

	for kind, names := range config.ValidProviderNames {
		for _, name := range names {
			slog.Debug("registered provider", "kind", kind, "name", name)
		}
	}
}

// providerLabel names entry in logs and breaker state.
func providerLabel(entry config.ProviderEntry) string {
	if entry.BaseURL != "" {
		return entry.Name + "@" + entry.BaseURL
	}
	return entry.Name
}

// buildProviders instantiates the providers named in cfg using the registry.
// The returned closer releases providers holding native resources.
func buildProviders(cfg *config.Config, reg *config.Registry) (*app.Providers, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Warn("close provider", "err", err)
			}
		}
	}

	create := func(entry config.ProviderEntry) (stt.Provider, error) {
		p, err := reg.CreateSTT(entry)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", entry.Name, err)
		}
		if c, ok := p.(io.Closer); ok {
			closers = append(closers, c)
		}
		slog.Info("provider created", "kind", "stt", "name", providerLabel(entry))
		return p, nil
	}

	primary, err := create(cfg.STT)
	if err != nil {
		return nil, nil, err
	}
	chain := resilience.NewSTTFallback(primary, providerLabel(cfg.STT), resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  cfg.Breaker.MaxFailures,
			ResetTimeout: cfg.Breaker.ResetTimeout,
		},
	})
	for _, entry := range cfg.STTFallbacks {
		p, err := create(entry)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		chain.AddFallback(providerLabel(entry), p)
	}

	engine, err := reg.CreateVAD(cfg.VAD)
	if errors.Is(err, config.ErrProviderNotRegistered) {
		closeAll()
		return nil, nil, fmt.Errorf("vad provider %q is not built in: %w", cfg.VAD.Name, err)
	} else if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("create vad provider %q: %w", cfg.VAD.Name, err)
	}
	slog.Info("provider created", "kind", "vad", "name", cfg.VAD.Name)

	return &app.Providers{STT: chain, VAD: engine}, closeAll, nil
}
