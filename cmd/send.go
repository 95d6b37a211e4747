package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var flagNoEnter bool

var sendCmd = &cobra.Command{
	Use:   "send <target> <text...>",
	Short: "Send raw keystrokes to the target pane",
	Long: `Send literal keystrokes to the target pane without waiting for anything.

By default the text is submitted with Enter. Use --no-enter to type the text
without submitting it, e.g. to prefill a prompt or feed an interactive
program. There is no completion detection here; use "run" for that.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		text := strings.Join(args[1:], " ")
		ctx := cmd.Context()

		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		ctrl, err := newController(ctx, cfg, target)
		if err != nil {
			return err
		}

		return ctrl.SendKeys(ctx, text, !flagNoEnter)
	},
}

func init() {
	sendCmd.Flags().BoolVar(&flagNoEnter, "no-enter", false, "do not submit the text with Enter")
	rootCmd.AddCommand(sendCmd)
}
