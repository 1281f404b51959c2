package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "vars", "set", "unset", "render", "edit", "clear", "quit",
}

// keywords complete at the top level of an expression.
var keywords = []string{"if", "else", "for", "in", "and", "or", "true", "false"}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isWordBoundary returns true if the rune delimits a word for completion
// purposes: anything that cannot appear in an identifier.
func isWordBoundary(r rune) bool {
	return !isIdentRune(r)
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary (after a space,
// after a dot, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	// Walk backward from cursor to find word start.
	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	// Walk forward from cursor to find word end.
	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the field-access chain leading up to the word starting
// at wordStart. For input "x + globals.site.na" with the word "na", the
// parent path is "globals.site". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	if wordStart == 0 || input[wordStart-1] != '.' {
		return ""
	}

	pos := wordStart - 1

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(input[pos:wordStart], ".")
}

// scope is what the REPL can complete: variables, globals, function names,
// and template names.
type scope struct {
	vars      map[string]any
	globals   []string
	functions []string
	templates []string
}

// candidates returns the completions for a word following parent.
func (s scope) candidates(parent string) []string {
	if parent == "" {
		names := slices.Collect(maps.Keys(s.vars))
		names = append(names, "globals")
		names = append(names, keywords...)

		for _, fn := range s.functions {
			head, _, _ := strings.Cut(fn, ".")
			names = append(names, head)
		}

		return dedupe(names)
	}

	if parent == "globals" {
		return s.globals
	}

	var names []string

	// Dotted function names, e.g. "classes" completes to "prefix".
	for _, fn := range s.functions {
		if rest, ok := strings.CutPrefix(fn, parent+"."); ok {
			head, _, _ := strings.Cut(rest, ".")
			names = append(names, head)
		}
	}

	// Fields of dictionary variables.
	v := any(s.vars)

	for seg := range strings.SplitSeq(parent, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			v = nil

			break
		}

		v = m[seg]
	}

	if m, ok := v.(map[string]any); ok {
		names = append(names, slices.Collect(maps.Keys(m))...)
	}

	return dedupe(names)
}

func dedupe(names []string) []string {
	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. When the current word is empty at the top level, it returns nil
// matches. When the word is empty after a dot (field access), it returns all
// children as matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		switch head, _, _ := strings.Cut(input, " "); {
		case wordStart == 0:
			candidates = ctrlCommands
		case head == "render":
			candidates = m.scope.templates
		case head == "unset":
			candidates = slices.Sorted(maps.Keys(m.scope.vars))
		}
	} else {
		parent := parentPath(input, wordStart)
		candidates = m.scope.candidates(parent)

		// When the word is empty at the top level, don't show completions
		// (allows the hint text to be visible). After a dot, show all children
		// immediately so the user can browse the available members.
		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}

		// Template names complete inside a tag.
		if wordStart > 0 && input[wordStart-1] == '<' {
			candidates = m.scope.templates
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Known functions are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if _, ok := signatures[match.Str]; ok {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}
