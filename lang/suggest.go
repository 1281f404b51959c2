package lang

import (
	"log/slog"

	"github.com/sahilm/fuzzy"
)

// Suggest returns the candidate that best matches word, or "" if none does.
func Suggest(word string, candidates []string) string {
	if word == "" || len(candidates) == 0 {
		return ""
	}

	matches := fuzzy.Find(word, candidates)
	if len(matches) == 0 {
		return ""
	}

	return matches[0].Str
}

// suggestAttrs returns a "suggest" attribute when a candidate resembles word.
func suggestAttrs(word string, candidates []string) []slog.Attr {
	if s := Suggest(word, candidates); s != "" && s != word {
		return []slog.Attr{slog.String("suggest", s)}
	}

	return nil
}
