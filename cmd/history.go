package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-bridge/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed commands",
	Long: `Show commands recently executed with "run", newest last.

History is recorded only when history_file is set in the config (or via
TMUX_BRIDGE_HISTORY_FILE).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		if cfg.HistoryFile == "" {
			return fmt.Errorf("history is disabled: set history_file in the config or TMUX_BRIDGE_HISTORY_FILE")
		}

		entries, err := history.New(cfg.HistoryFile).Tail(flagHistoryLimit)
		if err != nil {
			return err
		}

		for _, e := range entries {
			c := ok
			switch e.Outcome {
			case "timeout":
				c = warn
			case "error":
				c = fail
			}
			fmt.Fprintf(os.Stdout, "%s  %-7s  %-20s  %s (%s)\n",
				e.ExecutedAt.Local().Format(time.DateTime),
				c.Sprint(e.Outcome),
				e.Target,
				e.Command,
				time.Duration(e.DurationMs)*time.Millisecond)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "number of entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
