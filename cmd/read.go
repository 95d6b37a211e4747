package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagReadLines int

var readCmd = &cobra.Command{
	Use:   "read <target>",
	Short: "Print the visible buffer of the target pane",
	Long: `Capture the visible region of the target pane, strip escape sequences,
and print the result to stdout.

With --lines N, only the last N lines are printed (the whole buffer if it
has fewer).`,
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

		content, err := ctrl.ReadBuffer(ctx, flagReadLines)
		if err != nil {
			return fmt.Errorf("failed to read buffer of %q: %w", target, err)
		}

		fmt.Fprintln(os.Stdout, content)
		return nil
	},
}

func init() {
	readCmd.Flags().IntVar(&flagReadLines, "lines", 0, "print only the last N lines (0 = whole visible buffer)")
	rootCmd.AddCommand(readCmd)
}
