package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistoryAddPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"upper(name)", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := "E:1 + 2\nC:list\nE:upper(name)\n"
	if string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !slices.Equal(loaded.Entries(), h.Entries()) {
		t.Errorf("Load() entries = %v, want %v", loaded.Entries(), h.Entries())
	}
}

func TestHistoryAddMovesDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	for _, line := range []string{"a", "b", "c", "a", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatalf("Add(%q) error = %v", line, err)
		}
	}

	// Same line in another mode is a distinct entry.
	if err := h.Add("b", modeCtrl); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	want := []HistoryEntry{
		{"b", modeEval},
		{"c", modeEval},
		{"a", modeEval},
		{"b", modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(data) != "E:b\nE:c\nE:a\nC:b\n" {
		t.Errorf("history file = %q", data)
	}
}

func TestHistoryEntry(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("  ", modeEval); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if h.Len() != 0 {
		t.Fatalf("Len() = %d after blank line, want 0", h.Len())
	}

	if err := h.Add(" x ", modeEval); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	e, err := h.Entry(0)
	if err != nil || e.Line != "x" {
		t.Errorf("Entry(0) = %v, %v, want x", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistoryLoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))

	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1 + 2", HistoryEntry{"1 + 2", modeEval}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
