// Package history records executed commands to an append-only JSONL file.
//
// Each run command appends one entry; the history command reads them back.
// Recording is optional: a nil *Log (no history_file configured) makes every
// operation a no-op.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one executed command.
type Entry struct {
	Target     string    `json:"target"`
	Command    string    `json:"command"`
	Outcome    string    `json:"outcome"` // ok, timeout, error
	DurationMs int64     `json:"duration_ms"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Log appends entries to a JSONL file.
type Log struct {
	mu   sync.Mutex
	path string
}

// New creates a log writing to path. An empty path returns nil, which
// disables recording (all methods are nil-safe).
func New(path string) *Log {
	if path == "" {
		return nil
	}
	return &Log{path: path}
}

// Append writes one entry. The parent directory is created on first use.
func (l *Log) Append(e Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating history dir: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding history entry: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing history entry: %w", err)
	}
	return nil
}

// Tail returns the last n entries in chronological order (all of them when
// n <= 0 or the file has fewer). A missing file is an empty history.
func (l *Log) Tail(n int) ([]Entry, error) {
	if l == nil {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			// A torn write at the tail should not make history unreadable.
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
