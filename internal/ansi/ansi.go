// Package ansi strips terminal escape sequences from captured pane text.
//
// tmux capture-pane (with -e) returns the pane content exactly as rendered,
// including color/attribute codes, cursor movement, and OSC title sequences.
// Everything read from a pane goes through Strip before it is compared or
// returned to a caller, so marker scanning and extraction operate on plain
// text.
package ansi

import "regexp"

// escape matches ANSI/VT escape sequences: CSI sequences with arbitrary
// parameter and intermediate bytes (covers 256-color and truecolor codes),
// OSC sequences terminated by BEL or ST (ESC \), charset designators, and
// the bare ESC > / ESC = keypad modes.
var escape = regexp.MustCompile(`\x1b(?:\[[\x30-\x3f]*[\x20-\x2f]*[\x40-\x7e]|\][^\x07\x1b]*(?:\x07|\x1b\\)|\([B0UK]|[>=])`)

// Strip removes all escape sequences from s, preserving ordinary characters
// (including newlines) verbatim. Idempotent: stripping already-clean text is
// a no-op.
func Strip(s string) string {
	return escape.ReplaceAllString(s, "")
}
