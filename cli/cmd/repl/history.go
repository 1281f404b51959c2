package repl

import (
	"bufio"
	"os"
	"slices"
	"strings"
	"sync"
)

const baseHistory = "history.utf8"

// HistoryEntry is one submitted line and the mode it was submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

func (e HistoryEntry) encode() string {
	if e.Mode == modeCtrl {
		return "C:" + e.Line + "\n"
	}

	return "E:" + e.Line + "\n"
}

func decodeEntry(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, "C:"); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	s, _ := strings.CutPrefix(line, "E:")

	return HistoryEntry{Line: s, Mode: modeEval}
}

// History is the REPL line history, persisted to a file with one entry per
// line prefixed by its mode ("E:" or "C:").
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns an empty history persisted at path. An empty path keeps
// the history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those read from the history file.
// A missing file is not an error.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	h.entries = nil

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		h.entries = append(h.entries, decodeEntry(line))
	}

	return scanner.Err()
}

// Add appends entry to the history. An earlier identical entry (same line
// and mode) is moved to the end instead of duplicated.
func (h *History) Add(line string, mode inputMode) error {
	entry := HistoryEntry{Line: strings.TrimSpace(line), Mode: mode}
	if entry.Line == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if h.path == "" {
		return nil
	}

	if i >= 0 {
		return h.rewrite()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.encode())

	return err
}

// Entry returns the i'th entry. Index 0 is the oldest entry.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	var sb strings.Builder

	for _, entry := range h.entries {
		sb.WriteString(entry.encode())
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
