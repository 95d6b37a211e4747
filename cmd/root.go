package cmd

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timvw/tmux-bridge/internal/bridge"
	"github.com/timvw/tmux-bridge/internal/config"
	"github.com/timvw/tmux-bridge/internal/mux"
	tbotel "github.com/timvw/tmux-bridge/internal/otel"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags. Zero values mean "use config/defaults".
	flagTmuxBin string
	flagTimeout time.Duration
	flagPoll    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "tmux-bridge",
	Short: "Run commands in a human-owned tmux session and wait for them to finish",
	Long: `tmux-bridge lets an automated caller drive an interactive tmux session
and reliably detect when a submitted shell command has finished.

tmux offers no completion signal, only snapshot reads of the rendered pane,
so tmux-bridge wraps each command with unique start/end sentinel echoes,
submits the wrapped line, polls the pane's scrollback until both sentinels
appear, and prints exactly the output between them.

The target session is created and owned externally (e.g. "tmux new -s myserver",
possibly with an SSH session inside); tmux-bridge only types into it and reads
it back. A human typing into the same pane concurrently can corrupt a run —
serialize access per target.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagTmuxBin, "tmux-bin", "", "tmux binary path (default: from config, then PATH)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "execution timeout (default: from config, 30s)")
	rootCmd.PersistentFlags().DurationVar(&flagPoll, "poll-interval", 0, "sleep between pane polls (default: from config, 500ms)")
}

// loadSettings loads the config file and environment, then applies flag
// overrides. Flags win over env, env over file.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagTmuxBin != "" {
		cfg.TmuxBin = flagTmuxBin
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if flagPoll > 0 {
		cfg.Poll = flagPoll
	}
	return cfg, nil
}

// newTransport builds the tmux transport from the resolved settings.
func newTransport(cfg *config.Config) mux.Transport {
	return mux.NewTmux(mux.WithTmuxPath(cfg.TmuxBin))
}

// newController builds a controller for target, validating the session.
func newController(ctx context.Context, cfg *config.Config, target string, extra ...bridge.Option) (*bridge.Controller, error) {
	opts := []bridge.Option{
		bridge.WithTransport(newTransport(cfg)),
		bridge.WithTimeout(cfg.Timeout),
		bridge.WithPollInterval(cfg.Poll),
	}
	opts = append(opts, extra...)
	return bridge.New(ctx, target, opts...)
}

// initTelemetry wires OTEL from the resolved settings. The returned shutdown
// must be called before exit to flush exporters; it is safe to call when no
// endpoint is configured.
func initTelemetry(ctx context.Context, cfg *config.Config) (*tbotel.Telemetry, error) {
	tbotel.Version = Version
	return tbotel.Init(ctx, tbotel.Config{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
}
