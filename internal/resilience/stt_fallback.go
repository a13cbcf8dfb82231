package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrWong99/talkytime/pkg/provider/stt"
)

// STTFallback implements [stt.Provider] with automatic failover across multiple
// STT backends. Each backend has its own circuit breaker.
type STTFallback struct {
	group *FallbackGroup[stt.Provider]
}

// Compile-time interface assertion.
var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates an [STTFallback] with primary as the preferred backend.
func NewSTTFallback(primary stt.Provider, primaryName string, cfg FallbackConfig) *STTFallback {
	return &STTFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional STT provider as a fallback.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.group.AddFallback(name, provider)
}

// Names returns the provider names in the order they are tried.
func (f *STTFallback) Names() []string {
	return f.group.Names()
}

// Ready returns nil when at least one provider in the chain accepts calls.
func (f *STTFallback) Ready() error {
	for _, name := range f.group.Names() {
		if s, _ := f.group.State(name); s != StateOpen {
			return nil
		}
	}
	return fmt.Errorf("resilience: circuit open for every provider (%s)", strings.Join(f.group.Names(), ", "))
}

// Transcribe sends req to the first healthy provider, moving down the chain on
// failure.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	tr, name, err := ExecuteWithResult(ctx, f.group, func(p stt.Provider) (stt.Transcript, error) {
		return p.Transcribe(ctx, req)
	})
	if err != nil {
		return stt.Transcript{}, err
	}
	if names := f.group.Names(); len(names) > 1 && name != names[0] {
		slog.Debug("transcribed by fallback provider", "provider", name)
	}
	return tr, nil
}
