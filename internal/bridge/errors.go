package bridge

import (
	"fmt"
	"strings"
	"time"
)

// SessionNotFoundError is returned by New when the target does not refer to
// a live tmux session. The session must be created externally; the message
// says how.
type SessionNotFoundError struct {
	Target string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("tmux session %q not found (create it with: tmux new -s %s)",
		e.Target, SessionName(e.Target))
}

// CommandTimeoutError is returned by Execute when the end marker was not
// observed before the deadline. The command may still be running in the
// target pane; the controller remains usable for subsequent calls.
type CommandTimeoutError struct {
	Target  string
	Command string
	Timeout time.Duration
}

func (e *CommandTimeoutError) Error() string {
	return fmt.Sprintf("command %q on %s did not complete within %s",
		e.Command, e.Target, e.Timeout)
}

// SessionName returns the session part of a target identifier
// ("session", "session:window" or "session:window.pane").
func SessionName(target string) string {
	if idx := strings.Index(target, ":"); idx >= 0 {
		return target[:idx]
	}
	return target
}
