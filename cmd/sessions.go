package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-bridge/internal/bridge"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List live tmux session names",
	Long: `List the names of all live tmux sessions, one per line.

Prints nothing (and exits 0) when no tmux server is running.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		names, err := bridge.ListSessions(cmd.Context(), newTransport(cfg))
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
