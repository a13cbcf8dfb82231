package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/MrWong99/talkytime/internal/app"
	"github.com/MrWong99/talkytime/internal/config"
	"github.com/MrWong99/talkytime/internal/health"
	"github.com/MrWong99/talkytime/internal/observe"
	"github.com/MrWong99/talkytime/pkg/audio"
)

var (
	dryRun  bool
	workers int
)

var renameCmd = &cobra.Command{
	Use:   "rename FILE|DIR...",
	Short: "Transcribe recordings and rename them after their spoken timestamp",
	Long: `Rename every recording given on the command line. Directories are
searched recursively for .wav and .mp3 files. A file is never overwritten;
recordings whose stamp cannot be read keep their name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the new names without renaming")
	renameCmd.Flags().IntVarP(&workers, "workers", "w", 0, "recordings processed in parallel (default: config, then one per CPU)")
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	ctx := cmd.Context()

	paths, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no .wav or .mp3 recordings found")
	}

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)
	providers, closeProviders, err := buildProviders(cfg, reg)
	if err != nil {
		return err
	}
	defer closeProviders()

	var progress health.Progress
	progress.Start(len(paths))
	if cfg.Metrics.ListenAddr != "" {
		status := health.New(&progress, health.Checker{Name: "stt", Check: func(context.Context) error {
			if r, ok := providers.STT.(interface{ Ready() error }); ok {
				return r.Ready()
			}
			return nil
		}})
		stop, err := serveStatus(ctx, cfg.Metrics, status)
		if err != nil {
			return err
		}
		defer stop()
	}

	proc, err := app.New(cfg, providers,
		app.WithDryRun(dryRun),
		app.WithOnResult(func(res app.Result) { progress.Finish(res.Err) }),
	)
	if err != nil {
		return err
	}

	slog.Info("renaming recordings", "files", len(paths), "workers", cfg.Workers, "dry_run", dryRun)
	out := cmd.OutOrStdout()
	var failed int
	for _, res := range proc.ProcessAll(ctx, paths) {
		switch {
		case res.Err != nil:
			failed++
			slog.Error("recording not renamed", "file", res.Path, "text", res.Text, "err", res.Err)
		case res.Outcome.Unchanged:
			slog.Info("already named", "file", res.Path)
		default:
			fmt.Fprintf(out, "%s -> %s\n", res.Outcome.From, res.Outcome.To)
		}
	}
	if failed > 0 {
		err := fmt.Errorf("%d of %d recordings failed", failed, len(paths))
		printError("rename", err)
		return err
	}
	return nil
}

// collectPaths expands directories in args to the supported recordings they
// contain. Files named explicitly are passed through unchanged.
func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && audio.Supported(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// serveStatus installs the Prometheus exporter and serves /metrics and the
// status endpoints on cfg.ListenAddr until the returned stop function is
// called.
func serveStatus(ctx context.Context, cfg config.MetricsConfig, status *health.Handler) (func(), error) {
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	status.Register(mux)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(stopCtx); err != nil {
			slog.Warn("metrics server shutdown", "err", err)
		}
		if err := shutdown(stopCtx); err != nil {
			slog.Warn("metrics provider shutdown", "err", err)
		}
	}, nil
}
