package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-bridge/internal/watch"
)

var flagWatchRefresh time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <target>",
	Short: "Live view of the target pane",
	Long: `Open a live view of the target pane that refreshes periodically.

A text input at the bottom sends a typed line to the pane (raw keystrokes,
no completion detection). Press esc or ctrl+c to quit, ctrl+l to refresh
immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		ctx := cmd.Context()

		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		ctrl, err := newController(ctx, cfg, target)
		if err != nil {
			return err
		}

		refresh := cfg.WatchRefreshDur
		if flagWatchRefresh > 0 {
			refresh = flagWatchRefresh
		}

		w := &watch.Watcher{
			Controller: ctrl,
			Refresh:    refresh,
		}
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchRefresh, "refresh", 0, "refresh interval (default: from config, 1s)")
	rootCmd.AddCommand(watchCmd)
}
