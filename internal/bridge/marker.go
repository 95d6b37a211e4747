package bridge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// A marker is a pair of sentinel strings bounding one command's output in
// the pane. The identifier comes from a fresh UUID per invocation, so two
// controllers driving the same session cannot produce colliding markers.
// A pair is scoped to exactly one Execute call and never reused.
type marker struct {
	start string
	end   string
}

func newMarker() marker {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return marker{
		start: fmt.Sprintf("__TMUX_BRIDGE_START_%s__", id),
		end:   fmt.Sprintf("__TMUX_BRIDGE_END_%s__", id),
	}
}

// wrap composes the single line submitted to the shell: echo the start
// marker, run the command verbatim, echo the end marker.
func (m marker) wrap(command string) string {
	return fmt.Sprintf("echo '%s'; %s; echo '%s'", m.start, command, m.end)
}

// extract scans escape-stripped pane text for the marker pair and returns
// the command's output: every line strictly between the start marker's echo
// and the end marker's echo.
//
// Markers only count when they appear as their own line. The shell's echo of
// the submitted input line contains both marker strings, but alongside the
// echo statements and the command, so line-anchored matching skips it. A
// command whose own output prints a bare marker line can still fool this;
// that is a documented limitation, not a handled case.
//
// Seeing the end marker without the start marker (scrollback truncation on
// very chatty commands) reports not-found rather than guessing a boundary.
func (m marker) extract(text, command string) (string, bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == m.start {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == m.end {
			end = i
			break
		}
	}
	if end < 0 {
		return "", false
	}

	between := lines[start+1 : end]

	// Some shells render the command's echo after the start marker's output
	// line. If the first captured line is that echo (it ends with the
	// command text rather than being output), drop it.
	if len(between) > 0 && strings.HasSuffix(strings.TrimSpace(between[0]), command) {
		between = between[1:]
	}

	return strings.Join(between, "\n"), true
}
