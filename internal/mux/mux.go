// Package mux provides the transport layer for talking to a terminal
// multiplexer pane.
//
// This package is pure transport: it validates targets, sends keystrokes,
// and captures rendered pane text without interpreting any of it. Command
// synchronization (markers, polling, extraction) lives in the bridge package
// on top of this interface.
package mux

import "context"

// Scope selects how much of a pane's rendered text a capture returns.
type Scope int

const (
	// ScopeVisible captures the currently visible region (one screenful).
	ScopeVisible Scope = iota
	// ScopeHistory captures the entire scrollback plus the visible region.
	ScopeHistory
)

// Transport abstracts the multiplexer operations the bridge needs.
// The only real implementation is Tmux; tests substitute fakes.
type Transport interface {
	// HasSession reports whether the target refers to a live session.
	// A well-formed "not found" answer is (false, nil); a non-nil error
	// means the multiplexer tool itself could not be invoked.
	HasSession(ctx context.Context, target string) (bool, error)

	// SendKeys transmits literal keystrokes to the target. When enter is
	// true, the line-submit key is sent as a separate logical key after the
	// text. Fire-and-forget: returning nil means the multiplexer accepted
	// the keys, not that the target program has processed them.
	SendKeys(ctx context.Context, target, text string, enter bool) error

	// Capture returns the target pane's rendered text for the given scope.
	// The returned text is raw: escape sequences are preserved.
	Capture(ctx context.Context, target string, scope Scope) (string, error)

	// ListSessions enumerates live session names in server order. When no
	// server or sessions exist it returns an empty slice, not an error.
	ListSessions(ctx context.Context) ([]string, error)
}
