// Package app wires the talkytime pipeline for one recording: decode the
// file, locate the spoken stamp, transcribe it, parse the words and rename
// the file after the stamp.
//
// For testing, inject test doubles via functional options (WithDecoder,
// WithMetrics, etc.). When an option is not provided, New uses the real
// implementation.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/talkytime/internal/config"
	"github.com/MrWong99/talkytime/internal/observe"
	"github.com/MrWong99/talkytime/internal/rename"
	"github.com/MrWong99/talkytime/internal/span"
	"github.com/MrWong99/talkytime/internal/timeparse"
	"github.com/MrWong99/talkytime/internal/transcript"
	"github.com/MrWong99/talkytime/pkg/audio"
	"github.com/MrWong99/talkytime/pkg/provider/stt"
	"github.com/MrWong99/talkytime/pkg/provider/vad"
)

// Providers holds the engines the pipeline depends on. Populated by main.go
// via the config registry.
type Providers struct {
	STT stt.Provider
	VAD vad.Engine
}

// Result is the outcome of processing one recording.
type Result struct {
	Path string

	// Span is where the stamp was heard in the recording.
	Span span.Span

	// Text is the raw transcription of Span.
	Text string

	Stamp   timeparse.Stamp
	Outcome rename.Outcome

	// Err is the first failure for this recording, or nil.
	Err error
}

// Processor runs the pipeline. It is safe for concurrent use.
type Processor struct {
	cfg       *config.Config
	providers *Providers

	decode   func(path string) (audio.Clip, error)
	metrics  *observe.Metrics
	location *time.Location
	dryRun   bool
	onResult func(Result)

	renamer *rename.Renamer
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*Processor)

// WithDecoder replaces [audio.DecodeFile].
func WithDecoder(fn func(path string) (audio.Clip, error)) Option {
	return func(p *Processor) { p.decode = fn }
}

// WithMetrics records into m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithLocation interprets spoken stamps in loc instead of local time.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) { p.location = loc }
}

// WithDryRun reports the target names without renaming anything.
func WithDryRun(dryRun bool) Option {
	return func(p *Processor) { p.dryRun = dryRun }
}

// WithOnResult calls fn after each recording of [Processor.ProcessAll]
// finishes. fn may be called from several goroutines at once.
func WithOnResult(fn func(Result)) Option {
	return func(p *Processor) { p.onResult = fn }
}

// New creates a Processor from cfg and providers.
func New(cfg *config.Config, providers *Providers, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if providers == nil || providers.STT == nil {
		return nil, errors.New("app: an STT provider is required")
	}
	if providers.VAD == nil {
		return nil, errors.New("app: a VAD engine is required")
	}

	p := &Processor{
		cfg:       cfg,
		providers: providers,
		decode:    audio.DecodeFile,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}

	p.renamer = rename.New(rename.Options{
		Layout:     cfg.Rename.Layout,
		Separator:  cfg.Rename.Separator,
		Notes:      cfg.Rename.Notes,
		SetModTime: cfg.Rename.SetModTime,
		DryRun:     p.dryRun,
		Location:   p.location,
	})
	return p, nil
}

// ─── Batch ───────────────────────────────────────────────────────────────────

// ProcessAll processes paths with up to cfg.Workers recordings in flight.
// Results are returned in the order of paths. A failing recording does not
// stop the others; its error is reported in [Result.Err]. Recordings not yet
// started when ctx is cancelled carry ctx's error.
func (p *Processor) ProcessAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return nil
			}
			results[i] = p.Process(ctx, path)
			if p.onResult != nil {
				p.onResult(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Processor) workers() int {
	if p.cfg.Workers > 0 {
		return p.cfg.Workers
	}
	return runtime.NumCPU()
}

// ─── Single file ─────────────────────────────────────────────────────────────

// Process runs the full pipeline for the recording at path.
func (p *Processor) Process(ctx context.Context, path string) Result {
	res := Result{Path: path}
	res.Err = p.process(ctx, &res)

	status := observe.StatusRenamed
	switch {
	case res.Err != nil:
		status = observe.StatusFailed
	case res.Outcome.Unchanged:
		status = observe.StatusUnchanged
	case res.Outcome.DryRun:
		status = observe.StatusDryRun
	}
	p.metrics.RecordFile(ctx, status)
	return res
}

func (p *Processor) process(ctx context.Context, res *Result) error {
	clip, err := p.decode(res.Path)
	if err != nil {
		return err
	}

	sp, err := span.Detect(clip, p.providers.VAD, p.spanConfig())
	if err != nil {
		return fmt.Errorf("app: locate stamp in %q: %w", res.Path, err)
	}
	res.Span = sp
	p.metrics.RecordSpan(ctx, sp.Duration)

	speech := clip.Slice(sp.Start, sp.Duration)
	start := time.Now()
	tr, err := p.providers.STT.Transcribe(ctx, stt.Request{
		PCM:        speech.PCM,
		SampleRate: speech.SampleRate,
		Language:   p.cfg.Language,
	})
	p.metrics.RecordSTT(ctx, p.cfg.STT.Name, time.Since(start))
	if err != nil {
		return fmt.Errorf("app: transcribe %q: %w", res.Path, err)
	}
	res.Text = tr.Text

	stamp, err := timeparse.ParseWords(transcript.Normalize(tr.Text))
	if err != nil {
		p.metrics.RecordParseFailure(ctx, failureKind(err))
		return fmt.Errorf("app: parse %q: %w", tr.Text, err)
	}
	res.Stamp = stamp
	if !stamp.WeekdayMatches() {
		slog.Warn("spoken weekday does not match the date",
			"file", res.Path,
			"weekday", stamp.Weekday,
			"date", stamp.Time(p.location).Format(time.DateOnly),
		)
	}
	if len(stamp.Skipped) > 0 {
		slog.Debug("ignored words after the time of day", "file", res.Path, "words", stamp.Skipped)
	}

	out, err := p.renamer.Apply(res.Path, stamp)
	res.Outcome = out
	return err
}

func (p *Processor) spanConfig() span.Config {
	c := p.cfg.Span
	return span.Config{
		FrameSize:        c.FrameSize,
		SpeechThreshold:  c.SpeechThreshold,
		SilenceThreshold: c.SilenceThreshold,
		MinSilence:       c.MinSilence,
		MaxDuration:      c.MaxDuration,
		Padding:          c.Padding,
	}
}

// failureKind names a parse error for the parse failure counter.
func failureKind(err error) string {
	switch {
	case errors.Is(err, timeparse.ErrNoWeekday):
		return "no_weekday"
	case errors.Is(err, timeparse.ErrNoMonth):
		return "no_month"
	case errors.Is(err, timeparse.ErrNoDay):
		return "no_day"
	case errors.Is(err, timeparse.ErrUnparseableYear):
		return "year"
	}
	return "other"
}
