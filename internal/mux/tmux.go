package mux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// result holds the outcome of one tmux invocation that ran to completion.
type result struct {
	stdout   string
	stderr   string
	exitCode int
}

// runFunc invokes the tmux binary once and waits for it to exit. A non-nil
// error means the process could not be run at all (binary missing, killed by
// signal, context deadline); a non-zero exit status is reported through
// result, not the error.
type runFunc func(ctx context.Context, bin string, args []string) (result, error)

func execRun(ctx context.Context, bin string, args []string) (result, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() >= 0 {
			return result{
				stdout:   string(out),
				stderr:   string(exitErr.Stderr),
				exitCode: exitErr.ExitCode(),
			}, nil
		}
		return result{}, err
	}
	return result{stdout: string(out)}, nil
}

// Tmux implements Transport by invoking the tmux control binary, one
// synchronous process per operation.
type Tmux struct {
	bin string
	run runFunc
}

// Option configures a Tmux transport.
type Option func(*Tmux)

// WithTmuxPath overrides the tmux binary path (default "tmux", via PATH).
func WithTmuxPath(path string) Option {
	return func(t *Tmux) {
		if path != "" {
			t.bin = path
		}
	}
}

// NewTmux creates a tmux transport.
func NewTmux(opts ...Option) *Tmux {
	t := &Tmux{bin: "tmux", run: execRun}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HasSession checks whether the target refers to a live session.
// tmux exits 1 when the session does not exist; any other failure to run
// the binary is a transport error.
func (t *Tmux) HasSession(ctx context.Context, target string) (bool, error) {
	res, err := t.run(ctx, t.bin, []string{"has-session", "-t", target})
	if err != nil {
		return false, fmt.Errorf("tmux has-session: %w", err)
	}
	return res.exitCode == 0, nil
}

// SendKeys sends text to the target in literal mode (-l), so the text is
// typed verbatim rather than interpreted as key names. When enter is true a
// second send-keys delivers the Enter key, matching how tmux expects named
// keys and literal text to be sent separately.
func (t *Tmux) SendKeys(ctx context.Context, target, text string, enter bool) error {
	if text != "" {
		res, err := t.run(ctx, t.bin, []string{"send-keys", "-t", target, "-l", "--", text})
		if err != nil {
			return fmt.Errorf("tmux send-keys: %w", err)
		}
		if res.exitCode != 0 {
			return fmt.Errorf("tmux send-keys -t %s: exit %d: %s", target, res.exitCode, strings.TrimSpace(res.stderr))
		}
	}
	if enter {
		res, err := t.run(ctx, t.bin, []string{"send-keys", "-t", target, "Enter"})
		if err != nil {
			return fmt.Errorf("tmux send-keys: %w", err)
		}
		if res.exitCode != 0 {
			return fmt.Errorf("tmux send-keys -t %s Enter: exit %d: %s", target, res.exitCode, strings.TrimSpace(res.stderr))
		}
	}
	return nil
}

// Capture returns the rendered text of the target pane. Uses -p (stdout),
// -e (keep escape sequences; callers strip them) and -J (join wrapped lines,
// so a long line comes back as one line). ScopeHistory adds -S - to start at
// the beginning of the scrollback.
func (t *Tmux) Capture(ctx context.Context, target string, scope Scope) (string, error) {
	args := []string{"capture-pane", "-t", target, "-p", "-e", "-J"}
	if scope == ScopeHistory {
		args = append(args, "-S", "-")
	}
	res, err := t.run(ctx, t.bin, args)
	if err != nil {
		return "", fmt.Errorf("tmux capture-pane: %w", err)
	}
	if res.exitCode != 0 {
		return "", fmt.Errorf("tmux capture-pane -t %s: exit %d: %s", target, res.exitCode, strings.TrimSpace(res.stderr))
	}
	return res.stdout, nil
}

// ListSessions returns the names of all live sessions. tmux exits non-zero
// when no server is running; that is an empty list, not an error.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	res, err := t.run(ctx, t.bin, []string{"list-sessions", "-F", "#{session_name}"})
	if err != nil {
		return nil, fmt.Errorf("tmux list-sessions: %w", err)
	}
	if res.exitCode != 0 {
		return []string{}, nil
	}
	out := strings.TrimSpace(res.stdout)
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}
