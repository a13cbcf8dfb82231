package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrWong99/talkytime/internal/rename"
	"github.com/MrWong99/talkytime/internal/timeparse"
	"github.com/MrWong99/talkytime/internal/transcript"
)

var parseCmd = &cobra.Command{
	Use:   "parse TEXT...",
	Short: "Parse a spoken timestamp given as text",
	Long: `Parse the words of a spoken timestamp exactly as a recogniser would
return them and print the stamp together with the file name it produces.

  talkytime parse "twenty twenty monday march eighteenth two thousand twenty one"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		stamp, err := timeparse.ParseWords(transcript.Normalize(strings.Join(args, " ")))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "stamp:   %s\n", stamp)
		if !stamp.WeekdayMatches() {
			fmt.Fprintf(out, "warning: %s is a %s, not a %s\n",
				stamp.Time(time.UTC).Format(time.DateOnly),
				strings.ToLower(stamp.Time(time.UTC).Weekday().String()),
				stamp.Weekday)
		}
		if len(stamp.Skipped) > 0 {
			fmt.Fprintf(out, "skipped: %s\n", strings.Join(stamp.Skipped, " "))
		}
		if stamp.Notes != "" {
			fmt.Fprintf(out, "notes:   %s\n", stamp.Notes)
		}
		fmt.Fprintf(out, "name:    %s\n", rename.Format(stamp, rename.Options{
			Layout:    cfg.Rename.Layout,
			Separator: cfg.Rename.Separator,
			Notes:     cfg.Rename.Notes,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
