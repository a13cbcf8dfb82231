package app_test

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/talkytime/internal/app"
	"github.com/MrWong99/talkytime/internal/config"
	"github.com/MrWong99/talkytime/internal/observe"
	"github.com/MrWong99/talkytime/internal/rename"
	"github.com/MrWong99/talkytime/internal/span"
	"github.com/MrWong99/talkytime/internal/timeparse"
	"github.com/MrWong99/talkytime/pkg/audio"
	"github.com/MrWong99/talkytime/pkg/provider/stt"
	sttmock "github.com/MrWong99/talkytime/pkg/provider/stt/mock"
	"github.com/MrWong99/talkytime/pkg/provider/vad/energy"
)

const (
	rate     = 16000
	spoken   = "Thirteen hundred hours, Sunday March twenty-first twenty twenty one. Kitchen demo."
	wantStem = "2021-03-21_13-00-00_kitchen-demo"
)

// recording builds a clip of 300ms silence, 1.2s of loud tone (the stamp),
// 2s of silence and another second of tone.
func recording() audio.Clip {
	var samples []int16
	add := func(d time.Duration, amp int16) {
		n := int(d.Seconds() * rate)
		for i := range n {
			v := amp
			if i%2 == 1 {
				v = -amp
			}
			samples = append(samples, v)
		}
	}
	add(300*time.Millisecond, 0)
	add(1200*time.Millisecond, 8000)
	add(2*time.Second, 0)
	add(time.Second, 8000)

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return audio.Clip{PCM: pcm, SampleRate: rate}
}

func writeRecording(t *testing.T, dir, name string, clip audio.Clip) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, clip.WAV(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// counter returns the value of the named counter's data point whose key
// attribute equals value, or 0.
func counter(t *testing.T, reader *sdkmetric.ManualReader, name, key, value string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %q is not a sum", name)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func newProcessor(t *testing.T, sttp stt.Provider, opts ...app.Option) (*app.Processor, *sdkmetric.ManualReader) {
	t.Helper()
	m, reader := newMetrics(t)
	cfg := config.Default()
	cfg.Workers = 2
	opts = append([]app.Option{app.WithMetrics(m), app.WithLocation(time.UTC)}, opts...)
	p, err := app.New(cfg, &app.Providers{STT: sttp, VAD: energy.New()}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, reader
}

func TestNew_RequiresProviders(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	tests := []struct {
		name      string
		cfg       *config.Config
		providers *app.Providers
	}{
		{name: "nil config", providers: &app.Providers{STT: &sttmock.Provider{}, VAD: energy.New()}},
		{name: "nil providers", cfg: cfg},
		{name: "no stt", cfg: cfg, providers: &app.Providers{VAD: energy.New()}},
		{name: "no vad", cfg: cfg, providers: &app.Providers{STT: &sttmock.Provider{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := app.New(tc.cfg, tc.providers); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProcess_RenamesRecording(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeRecording(t, dir, "REC0001.wav", recording())
	sttp := &sttmock.Provider{Result: stt.Transcript{Text: spoken}}
	p, reader := newProcessor(t, sttp)

	res := p.Process(context.Background(), path)
	if res.Err != nil {
		t.Fatalf("Process: %v", res.Err)
	}

	want := filepath.Join(dir, wantStem+".wav")
	if res.Outcome.To != want {
		t.Errorf("renamed to %q, want %q", res.Outcome.To, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if res.Stamp.Hour != 13 || res.Stamp.Year != 2021 || res.Stamp.Day != 21 {
		t.Errorf("Stamp = %v", res.Stamp)
	}
	if res.Text != spoken {
		t.Errorf("Text = %q", res.Text)
	}

	if res.Span.Start > 300*time.Millisecond {
		t.Errorf("span starts at %v, want before the tone at 300ms", res.Span.Start)
	}
	if res.Span.End() > 2500*time.Millisecond {
		t.Errorf("span ends at %v, want before the second tone", res.Span.End())
	}

	if sttp.Calls() != 1 {
		t.Fatalf("Transcribe calls = %d, want 1", sttp.Calls())
	}
	req := sttp.TranscribeCalls[0].Req
	if req.SampleRate != rate || req.Language != "en" {
		t.Errorf("request rate=%d language=%q", req.SampleRate, req.Language)
	}
	sent := audio.Clip{PCM: req.PCM, SampleRate: req.SampleRate}
	if sent.Duration() != res.Span.Duration {
		t.Errorf("sent %v of audio, want the span's %v", sent.Duration(), res.Span.Duration)
	}

	if got := counter(t, reader, "talkytime.files", "status", observe.StatusRenamed); got != 1 {
		t.Errorf("renamed counter = %d, want 1", got)
	}
}

func TestProcess_Failures(t *testing.T) {
	t.Parallel()
	errBackend := errors.New("backend down")

	tests := []struct {
		name      string
		clip      audio.Clip
		transcr   *sttmock.Provider
		wantErr   error
		wantCalls int
		kind      string
	}{
		{
			name:    "no speech",
			clip:    audio.Clip{PCM: make([]byte, rate*2), SampleRate: rate},
			transcr: &sttmock.Provider{Result: stt.Transcript{Text: spoken}},
			wantErr: span.ErrNoSpeech,
		},
		{
			name:      "transcription fails",
			clip:      recording(),
			transcr:   &sttmock.Provider{TranscribeErr: errBackend},
			wantErr:   errBackend,
			wantCalls: 1,
		},
		{
			name:      "unparseable words",
			clip:      recording(),
			transcr:   &sttmock.Provider{Result: stt.Transcript{Text: "testing one two three"}},
			wantErr:   timeparse.ErrNoWeekday,
			wantCalls: 1,
			kind:      "no_weekday",
		},
		{
			name:      "missing month",
			clip:      recording(),
			transcr:   &sttmock.Provider{Result: stt.Transcript{Text: "eleven fifteen sunday"}},
			wantErr:   timeparse.ErrNoMonth,
			wantCalls: 1,
			kind:      "no_month",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := writeRecording(t, dir, "take.wav", tc.clip)
			p, reader := newProcessor(t, tc.transcr)

			res := p.Process(context.Background(), path)
			if !errors.Is(res.Err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", res.Err, tc.wantErr)
			}
			if got := tc.transcr.Calls(); got != tc.wantCalls {
				t.Errorf("Transcribe calls = %d, want %d", got, tc.wantCalls)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("recording moved on failure: %v", err)
			}
			if got := counter(t, reader, "talkytime.files", "status", observe.StatusFailed); got != 1 {
				t.Errorf("failed counter = %d, want 1", got)
			}
			if tc.kind != "" {
				if got := counter(t, reader, "talkytime.parse.failures", "kind", tc.kind); got != 1 {
					t.Errorf("parse failure %s = %d, want 1", tc.kind, got)
				}
			}
		})
	}
}

func TestProcess_DecodeError(t *testing.T) {
	t.Parallel()
	sttp := &sttmock.Provider{Result: stt.Transcript{Text: spoken}}
	p, _ := newProcessor(t, sttp)

	res := p.Process(context.Background(), filepath.Join(t.TempDir(), "notes.txt"))
	if !errors.Is(res.Err, audio.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", res.Err)
	}
	if sttp.Calls() != 0 {
		t.Error("Transcribe called for an undecodable file")
	}
}

func TestProcessAll_DryRunCollisions(t *testing.T) {
	t.Parallel()
	clip := recording()
	decode := func(path string) (audio.Clip, error) {
		if filepath.Ext(path) != ".wav" {
			return audio.Clip{}, audio.ErrUnsupportedFormat
		}
		return clip, nil
	}
	sttp := &sttmock.Provider{Result: stt.Transcript{Text: spoken}}
	p, reader := newProcessor(t, sttp, app.WithDecoder(decode), app.WithDryRun(true))

	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.wav"),
		filepath.Join(dir, "b.wav"),
		filepath.Join(dir, "c.flac"),
		filepath.Join(dir, "d.wav"),
	}
	results := p.ProcessAll(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}

	var ok, exists int
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d is for %q, want %q", i, res.Path, paths[i])
		}
		switch {
		case res.Err == nil:
			ok++
			if !res.Outcome.DryRun || filepath.Base(res.Outcome.To) != wantStem+".wav" {
				t.Errorf("Outcome = %+v", res.Outcome)
			}
		case errors.Is(res.Err, rename.ErrExists):
			exists++
		case errors.Is(res.Err, audio.ErrUnsupportedFormat):
			if i != 2 {
				t.Errorf("unexpected decode error for %q", res.Path)
			}
		default:
			t.Errorf("%s: %v", res.Path, res.Err)
		}
	}
	if ok != 1 || exists != 2 {
		t.Errorf("ok=%d exists=%d, want 1 and 2", ok, exists)
	}
	if got := counter(t, reader, "talkytime.files", "status", observe.StatusDryRun); got != 1 {
		t.Errorf("dry_run counter = %d, want 1", got)
	}
	if got := counter(t, reader, "talkytime.files", "status", observe.StatusFailed); got != 3 {
		t.Errorf("failed counter = %d, want 3", got)
	}
}

func TestProcessAll_Cancelled(t *testing.T) {
	t.Parallel()
	sttp := &sttmock.Provider{Result: stt.Transcript{Text: spoken}}
	p, _ := newProcessor(t, sttp, app.WithDecoder(func(string) (audio.Clip, error) {
		return recording(), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, res := range p.ProcessAll(ctx, []string{"a.wav", "b.wav", "c.wav"}) {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", res.Path, res.Err)
		}
	}
	if sttp.Calls() != 0 {
		t.Errorf("Transcribe calls = %d, want 0", sttp.Calls())
	}
}
