package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// signatures lists the parameters of the default host functions.
// See https://expr-lang.org/docs/language-definition for the builtins.
var signatures = map[string][]string{
	"len":            {"v"},
	"abs":            {"n"},
	"max":            {"a", "...b"},
	"min":            {"a", "...b"},
	"sum":            {"list"},
	"mean":           {"list"},
	"median":         {"list"},
	"join":           {"list", "separator"},
	"split":          {"string", "separator"},
	"replace":        {"string", "old", "new"},
	"repeat":         {"string", "n"},
	"trim":           {"string"},
	"trimPrefix":     {"string", "prefix"},
	"trimSuffix":     {"string", "suffix"},
	"upper":          {"string"},
	"lower":          {"string"},
	"hasPrefix":      {"string", "prefix"},
	"hasSuffix":      {"string", "suffix"},
	"indexOf":        {"string", "substring"},
	"string":         {"v"},
	"type":           {"v"},
	"reverse":        {"list"},
	"first":          {"list"},
	"last":           {"list"},
	"keys":           {"dict"},
	"values":         {"dict"},
	"uuid":           {},
	"gettext":        {"message"},
	"ngettext":       {"singular", "plural", "n"},
	"classes.prefix": {"list", "...prefix"},
}

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string // dotted function name (e.g., "classes.prefix")
	argIndex int    // current argument index (0-based)
	inCall   bool
}

// detectFunctionCall reports the innermost call whose argument list contains
// the cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := -1
	depth := 0

scan:
	for i := cursor - 1; i >= 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++
		case '[':
			depth--
		case '(':
			if depth == 0 {
				open = i

				break scan
			}

			depth--
		}
	}

	if open == -1 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" || strings.HasPrefix(name, ".") {
		return functionCall{}
	}

	arg := 0
	depth = 0
	quote := byte(0)

	for i := open + 1; i < cursor; i++ {
		switch ch := input[i]; {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
		case ch == ',' && depth == 0:
			arg++
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// signature returns the parameter names of the function name, falling back
// to its last segment the way the catalog dispatches calls.
func signature(name string) ([]string, bool) {
	if params, ok := signatures[name]; ok {
		return params, true
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		params, ok := signatures[name[i+1:]]

		return params, ok
	}

	return nil, false
}

// renderSignatureHint renders the signature of name with the parameter at
// argIndex highlighted.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		// A variadic parameter stays current for every remaining argument.
		variadic := strings.HasPrefix(param, "...")
		if argIndex == i || (variadic && argIndex >= i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
