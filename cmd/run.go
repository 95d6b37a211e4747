package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/timvw/tmux-bridge/internal/bridge"
	"github.com/timvw/tmux-bridge/internal/history"
)

// Exit codes for callers that branch on failure kind.
const (
	exitSessionNotFound = 2
	exitCommandTimeout  = 3
)

var (
	info = color.New(color.FgCyan)
	ok   = color.New(color.FgGreen)
	warn = color.New(color.FgYellow)
	fail = color.New(color.FgRed)
)

var flagRunQuiet bool

var runCmd = &cobra.Command{
	Use:   "run <target> <command...>",
	Short: "Execute a command in the target pane and wait for it to finish",
	Long: `Execute a shell command in the target tmux pane and block until it
completes, then print its output to stdout.

The target is "session", "session:window" or "session:window.pane". The
session must already exist; create it externally with "tmux new -s <name>".

Completion is detected by wrapping the command with unique sentinel echoes
and polling the pane's scrollback. On timeout the command is left running
in the pane untouched.

Exit codes: 0 success, 2 session not found, 3 command timeout, 1 other error.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		command := strings.Join(args[1:], " ")
		ctx := cmd.Context()

		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		tel, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer tel.Shutdown(ctx)

		status := func(c *color.Color, format string, a ...any) {
			if !flagRunQuiet {
				c.Fprintf(os.Stderr, format+"\n", a...)
			}
		}

		status(info, "[*] Connecting to tmux target %q ...", target)
		ctrl, err := newController(ctx, cfg, target, bridge.WithMetrics(tel.Metrics))
		if err != nil {
			var notFound *bridge.SessionNotFoundError
			if errors.As(err, &notFound) {
				status(fail, "[!] %v", err)
				tel.Shutdown(ctx)
				os.Exit(exitSessionNotFound)
			}
			return err
		}
		status(ok, "[+] Connected.")

		status(info, "[*] Executing: %s", command)
		start := time.Now()
		output, err := ctrl.Execute(ctx, command)
		elapsed := time.Since(start)

		log := history.New(cfg.HistoryFile)
		entry := history.Entry{
			Target:     target,
			Command:    command,
			DurationMs: elapsed.Milliseconds(),
			ExecutedAt: start.UTC(),
		}

		if err != nil {
			var timeout *bridge.CommandTimeoutError
			if errors.As(err, &timeout) {
				entry.Outcome = "timeout"
				if herr := log.Append(entry); herr != nil {
					status(warn, "[!] history: %v", herr)
				}
				status(fail, "[!] %v", err)
				tel.Shutdown(ctx)
				os.Exit(exitCommandTimeout)
			}
			entry.Outcome = "error"
			if herr := log.Append(entry); herr != nil {
				status(warn, "[!] history: %v", herr)
			}
			return err
		}

		entry.Outcome = "ok"
		if herr := log.Append(entry); herr != nil {
			status(warn, "[!] history: %v", herr)
		}

		status(ok, "[+] Done in %s.", elapsed.Round(time.Millisecond))
		fmt.Fprintln(os.Stdout, output)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVarP(&flagRunQuiet, "quiet", "q", false, "suppress status lines, print only command output")
	rootCmd.AddCommand(runCmd)
}
