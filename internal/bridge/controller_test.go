package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/timvw/tmux-bridge/internal/mux"
)

// sendCall records one SendKeys invocation on the fake transport.
type sendCall struct {
	target string
	text   string
	enter  bool
}

// fakeTransport implements mux.Transport for testing. Captures are served
// by a hook so tests can change the pane content between polls.
type fakeTransport struct {
	hasSession bool
	hasErr     error

	sends   []sendCall
	sendErr error

	captureFn  func(call int, scope mux.Scope) (string, error)
	captureN   int
	lastScopes []mux.Scope

	sessions []string
}

func (f *fakeTransport) HasSession(_ context.Context, target string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.hasSession, nil
}

func (f *fakeTransport) SendKeys(_ context.Context, target, text string, enter bool) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sends = append(f.sends, sendCall{target: target, text: text, enter: enter})
	return nil
}

func (f *fakeTransport) Capture(_ context.Context, target string, scope mux.Scope) (string, error) {
	f.captureN++
	f.lastScopes = append(f.lastScopes, scope)
	if f.captureFn == nil {
		return "", nil
	}
	return f.captureFn(f.captureN, scope)
}

func (f *fakeTransport) ListSessions(_ context.Context) ([]string, error) {
	if f.sessions == nil {
		return []string{}, nil
	}
	return f.sessions, nil
}

// sentMarkers pulls the start/end marker strings out of the wrapped line the
// controller submitted, so the fake can render them back.
func sentMarkers(t *testing.T, f *fakeTransport) (start, end string) {
	t.Helper()
	if len(f.sends) == 0 {
		t.Fatal("no keys were sent")
	}
	wrapped := f.sends[0].text
	parts := strings.Split(wrapped, "'")
	// echo '<start>'; <command>; echo '<end>'
	if len(parts) < 4 {
		t.Fatalf("unexpected wrapped line %q", wrapped)
	}
	return parts[1], parts[len(parts)-2]
}

func newTestController(t *testing.T, f *fakeTransport, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{
		WithTransport(f),
		WithTimeout(200 * time.Millisecond),
		WithPollInterval(time.Millisecond),
	}, opts...)
	c, err := New(context.Background(), "myserver", opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewValidSession(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c, err := New(context.Background(), "myserver:0.1", WithTransport(f))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c.Target() != "myserver:0.1" {
		t.Errorf("Target() = %q, want the exact constructed string", c.Target())
	}
}

func TestNewMissingSession(t *testing.T) {
	f := &fakeTransport{hasSession: false}
	_, err := New(context.Background(), "nonexistent", WithTransport(f))

	var notFound *SessionNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("New() error = %v, want *SessionNotFoundError", err)
	}
	if notFound.Target != "nonexistent" {
		t.Errorf("Target = %q, want %q", notFound.Target, "nonexistent")
	}
	if !strings.Contains(err.Error(), "tmux new -s nonexistent") {
		t.Errorf("error %q should hint at creating the session", err)
	}
}

func TestNewTransportFailure(t *testing.T) {
	f := &fakeTransport{hasErr: errors.New("tmux: executable file not found")}
	_, err := New(context.Background(), "myserver", WithTransport(f))
	if err == nil {
		t.Fatal("expected error")
	}
	var notFound *SessionNotFoundError
	if errors.As(err, &notFound) {
		t.Errorf("transport failure must not be reported as session-not-found: %v", err)
	}
}

func TestExecuteSuccess(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f)

	// First poll shows only a prompt; the second shows the finished command
	// bounded by both markers, plus the shell's echo of the submitted line.
	f.captureFn = func(call int, _ mux.Scope) (string, error) {
		if call < 2 {
			return "$ \n", nil
		}
		start, end := sentMarkers(t, f)
		return fmt.Sprintf(
			"$ %s\n%s\n\x1b[1mtotal 0\x1b[0m\ndrwxr-xr-x  2 user user  40 Jan  1 00:00 .\ndrwxr-xr-x  3 user user  60 Jan  1 00:00 ..\n%s\n$\n",
			f.sends[0].text, start, end), nil
	}

	out, err := c.Execute(context.Background(), "ls -la")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !strings.Contains(out, "total 0") {
		t.Errorf("output %q missing command output", out)
	}
	if !strings.Contains(out, "drwxr-xr-x  2 user user") || !strings.Contains(out, "drwxr-xr-x  3 user user") {
		t.Errorf("output %q missing directory entries", out)
	}
	if strings.Contains(out, "__TMUX_BRIDGE_START_") || strings.Contains(out, "__TMUX_BRIDGE_END_") {
		t.Errorf("output %q contains marker text", out)
	}
	if strings.Contains(out, "\x1b") {
		t.Errorf("output %q contains raw escape sequences", out)
	}

	// The wrapped line is submitted once, with Enter.
	if len(f.sends) != 1 {
		t.Fatalf("got %d sends, want 1", len(f.sends))
	}
	if !f.sends[0].enter {
		t.Error("wrapped command must be submitted")
	}
	if !strings.Contains(f.sends[0].text, "ls -la") {
		t.Errorf("wrapped line %q missing the command", f.sends[0].text)
	}

	// Polling reads the full history so scrolled output is not lost.
	for _, s := range f.lastScopes {
		if s != mux.ScopeHistory {
			t.Error("execute polls must capture the full history")
		}
	}
}

func TestExecuteFastCommandNoSleep(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	// Poll interval far longer than the test: success on the first poll
	// proves no sleep happens before the first marker scan.
	c := newTestController(t, f, WithPollInterval(time.Hour))

	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		start, end := sentMarkers(t, f)
		return fmt.Sprintf("%s\nok\n%s\n", start, end), nil
	}

	done := make(chan struct{})
	var out string
	var err error
	go func() {
		out, err = c.Execute(context.Background(), "true && echo ok")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Execute() slept before the first poll")
	}
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if out != "ok" {
		t.Errorf("Execute() = %q, want %q", out, "ok")
	}
}

func TestExecuteTimeout(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f, WithTimeout(20*time.Millisecond))

	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		return "$ \n", nil // markers never appear
	}

	_, err := c.Execute(context.Background(), "sleep 999")

	var timeout *CommandTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Execute() error = %v, want *CommandTimeoutError", err)
	}
	if timeout.Command != "sleep 999" || timeout.Target != "myserver" {
		t.Errorf("timeout error carries %q/%q", timeout.Command, timeout.Target)
	}

	// The controller stays usable after a timeout.
	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		last := f.sends[len(f.sends)-1].text
		parts := strings.Split(last, "'")
		return fmt.Sprintf("%s\nlater\n%s\n", parts[1], parts[len(parts)-2]), nil
	}
	out, err := c.Execute(context.Background(), "echo later")
	if err != nil {
		t.Fatalf("Execute() after timeout error: %v", err)
	}
	if out != "later" {
		t.Errorf("Execute() after timeout = %q", out)
	}
}

func TestExecuteEndMarkerWithoutStartTimesOut(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f, WithTimeout(20*time.Millisecond))

	// Scrollback truncation dropped the start marker: never guess a start
	// boundary, report timeout instead.
	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		_, end := sentMarkers(t, f)
		return fmt.Sprintf("...truncated...\n%s\n$\n", end), nil
	}

	_, err := c.Execute(context.Background(), "yes | head -100000")
	var timeout *CommandTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("Execute() error = %v, want *CommandTimeoutError", err)
	}
}

func TestExecuteCaptureFailure(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f)

	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		return "", errors.New("tmux capture-pane: server exited")
	}

	_, err := c.Execute(context.Background(), "ls")
	if err == nil {
		t.Fatal("expected capture failure to propagate")
	}
	var timeout *CommandTimeoutError
	if errors.As(err, &timeout) {
		t.Errorf("capture failure must not be reported as timeout: %v", err)
	}
}

func TestSendKeysPassthrough(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f)

	if err := c.SendKeys(context.Background(), "ls -la", true); err != nil {
		t.Fatalf("SendKeys() error: %v", err)
	}
	if err := c.SendKeys(context.Background(), "partial", false); err != nil {
		t.Fatalf("SendKeys() error: %v", err)
	}

	if len(f.sends) != 2 {
		t.Fatalf("got %d sends, want 2", len(f.sends))
	}
	if !f.sends[0].enter {
		t.Error("default send must submit")
	}
	if f.sends[1].enter {
		t.Error("enter=false send must not submit")
	}
	if f.sends[1].text != "partial" {
		t.Errorf("sent %q, want %q", f.sends[1].text, "partial")
	}
}

func TestReadBuffer(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f)

	f.captureFn = func(_ int, scope mux.Scope) (string, error) {
		if scope != mux.ScopeVisible {
			t.Error("ReadBuffer must capture the visible region")
		}
		return "line1\nline2\nline3\nline4\nline5\n", nil
	}

	got, err := c.ReadBuffer(context.Background(), 2)
	if err != nil {
		t.Fatalf("ReadBuffer() error: %v", err)
	}
	if got != "line4\nline5" {
		t.Errorf("ReadBuffer(2) = %q, want last two lines in order", got)
	}

	got, err = c.ReadBuffer(context.Background(), 10)
	if err != nil {
		t.Fatalf("ReadBuffer() error: %v", err)
	}
	if got != "line1\nline2\nline3\nline4\nline5" {
		t.Errorf("ReadBuffer(10) on a 5-line buffer = %q", got)
	}
}

func TestReadBufferStripsEscapes(t *testing.T) {
	f := &fakeTransport{hasSession: true}
	c := newTestController(t, f)

	f.captureFn = func(_ int, _ mux.Scope) (string, error) {
		return "\x1b[32mgreen text\x1b[0m\n", nil
	}

	got, err := c.ReadBuffer(context.Background(), 0)
	if err != nil {
		t.Fatalf("ReadBuffer() error: %v", err)
	}
	if strings.Contains(got, "\x1b") {
		t.Errorf("ReadBuffer() = %q, escape sequences not stripped", got)
	}
	if !strings.Contains(got, "green text") {
		t.Errorf("ReadBuffer() = %q, payload lost", got)
	}
}

func TestListSessions(t *testing.T) {
	f := &fakeTransport{sessions: []string{"session1", "session2", "session3"}}
	got, err := ListSessions(context.Background(), f)
	if err != nil {
		t.Fatalf("ListSessions() error: %v", err)
	}
	if len(got) != 3 || got[0] != "session1" || got[2] != "session3" {
		t.Errorf("ListSessions() = %v", got)
	}
}
