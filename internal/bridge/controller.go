// Package bridge implements marker-based command synchronization against a
// live tmux session.
//
// The hard part is not sending a command (one send-keys invocation) but
// knowing when it finished: tmux offers no completion signal, only snapshot
// reads of the rendered pane. Execute wraps the caller's command with unique
// start/end sentinel echoes, submits the wrapped line, then polls the pane's
// full scrollback until both sentinels appear on their own lines, and returns
// exactly the text between them.
//
// The target pane is an externally shared resource: a human (or another
// controller) may type into it concurrently, and the transport offers no
// locking primitive. Callers must serialize Execute calls per target; the
// controller serializes its own calls but cannot prevent foreign keystrokes
// from landing inside the marker-delimited region.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/timvw/tmux-bridge/internal/ansi"
	"github.com/timvw/tmux-bridge/internal/mux"
	tbotel "github.com/timvw/tmux-bridge/internal/otel"
)

var tracer = otel.Tracer("tmux-bridge")

// Default poll configuration, overridable per controller and per call.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// Controller drives one tmux target. It owns a validated target identifier
// and default timeout/poll-interval configuration; it holds no other state
// between calls.
type Controller struct {
	target       string
	transport    mux.Transport
	timeout      time.Duration
	pollInterval time.Duration
	metrics      *tbotel.Metrics

	// execMu keeps at most one marker pair in flight per controller.
	execMu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithTransport substitutes the pane transport (used by tests and by callers
// with a non-default tmux binary path).
func WithTransport(t mux.Transport) Option {
	return func(c *Controller) { c.transport = t }
}

// WithTimeout sets the default execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithPollInterval sets the sleep between pane captures while waiting.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMetrics attaches OTEL instruments. Nil is fine; recording is a no-op.
func WithMetrics(m *tbotel.Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a controller for the given target ("session",
// "session:window" or "session:window.pane") and verifies the session is
// live. A missing session is a *SessionNotFoundError; a transport failure
// (tmux binary not runnable) propagates as a distinct wrapped error.
func New(ctx context.Context, target string, opts ...Option) (*Controller, error) {
	c := &Controller{
		target:       target,
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = mux.NewTmux()
	}

	ok, err := c.transport.HasSession(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("checking session %q: %w", target, err)
	}
	if !ok {
		return nil, &SessionNotFoundError{Target: target}
	}
	return c, nil
}

// Target returns the validated target identifier, verbatim as constructed.
func (c *Controller) Target() string {
	return c.target
}

// Execute runs command in the target pane and blocks until its output is
// bounded by both markers, returning the extracted text. Uses the
// controller's default timeout.
func (c *Controller) Execute(ctx context.Context, command string) (string, error) {
	return c.ExecuteWithTimeout(ctx, command, c.timeout)
}

// ExecuteWithTimeout is Execute with a per-call deadline. The deadline is
// measured from command submission, and the marker scan runs before the
// first sleep, so fast commands are detected without waiting a full poll
// interval. On timeout the remote command is left running untouched and the
// controller remains usable.
func (c *Controller) ExecuteWithTimeout(ctx context.Context, command string, timeout time.Duration) (string, error) {
	c.execMu.Lock()
	defer c.execMu.Unlock()

	ctx, span := tracer.Start(ctx, "execute",
		trace.WithAttributes(
			attribute.String("target", c.target),
			attribute.Int64("timeout_ms", timeout.Milliseconds()),
		))
	defer span.End()

	m := newMarker()
	wrapped := m.wrap(command)

	start := time.Now()
	if err := c.transport.SendKeys(ctx, c.target, wrapped, true); err != nil {
		c.metrics.RecordCommand(ctx, "error", time.Since(start))
		return "", fmt.Errorf("submitting command to %s: %w", c.target, err)
	}
	c.metrics.RecordSend(ctx)

	for {
		// Full history, not the visible region: long output scrolls the
		// start marker past the screen before the end marker renders.
		raw, err := c.transport.Capture(ctx, c.target, mux.ScopeHistory)
		if err != nil {
			c.metrics.RecordCommand(ctx, "error", time.Since(start))
			return "", fmt.Errorf("capturing pane %s: %w", c.target, err)
		}
		c.metrics.RecordPoll(ctx)

		if out, ok := m.extract(ansi.Strip(raw), command); ok {
			span.SetAttributes(attribute.String("outcome", "ok"))
			c.metrics.RecordCommand(ctx, "ok", time.Since(start))
			return out, nil
		}

		if time.Since(start) >= timeout {
			span.SetAttributes(attribute.String("outcome", "timeout"))
			c.metrics.RecordCommand(ctx, "timeout", time.Since(start))
			return "", &CommandTimeoutError{Target: c.target, Command: command, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// SendKeys is a direct passthrough to the transport, for interactive input
// with no completion marker (control characters, partial text). enter
// appends the line-submit key.
func (c *Controller) SendKeys(ctx context.Context, text string, enter bool) error {
	if err := c.transport.SendKeys(ctx, c.target, text, enter); err != nil {
		return err
	}
	c.metrics.RecordSend(ctx)
	return nil
}

// ReadBuffer captures the visible region of the pane, strips escape
// sequences, and returns the result. When lines > 0 only the last lines
// lines are returned (the whole buffer if it has fewer), in original order.
func (c *Controller) ReadBuffer(ctx context.Context, lines int) (string, error) {
	raw, err := c.transport.Capture(ctx, c.target, mux.ScopeVisible)
	if err != nil {
		return "", err
	}
	c.metrics.RecordCapture(ctx)

	text := ansi.Strip(raw)
	if lines <= 0 {
		return text, nil
	}

	all := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if lines >= len(all) {
		return strings.Join(all, "\n"), nil
	}
	return strings.Join(all[len(all)-lines:], "\n"), nil
}

// ListSessions enumerates live session names through the given transport.
// It needs no controller: sessions can be listed before any target exists.
func ListSessions(ctx context.Context, t mux.Transport) ([]string, error) {
	return t.ListSessions(ctx)
}
