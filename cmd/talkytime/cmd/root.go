// Package cmd implements the talkytime command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrWong99/talkytime/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "talkytime",
	Short: "Rename recordings after their spoken timestamp",
	Long: `talkytime listens to the start of each recording, transcribes the
timestamp a TalkyTime announcer spoke there and renames the file after it:

  "thirteen hundred hours sunday march twenty first twenty twenty one kitchen demo"
  REC0042.wav -> 2021-03-21_13-00-00_kitchen-demo.wav

Commands:
  rename   - transcribe recordings and rename them
  parse    - parse a spoken timestamp given as text
  version  - print version information`,
	SilenceUsage: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadConfig reads --config, or returns the defaults when it is unset, and
// installs the logger it describes.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	}
	level := cfg.LogLevel
	if verbose {
		level = config.LogDebug
	}
	slog.SetDefault(newLogger(level))
	return cfg, nil
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "talkytime: %s: %v\n", msg, err)
}
