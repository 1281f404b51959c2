package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/xcomp/catalog"
	"github.com/ardnew/xcomp/lang"
	"github.com/ardnew/xcomp/log"
)

// editDoneMsg is sent when manifest editing completes.
type editDoneMsg struct{ loaded bool }

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-manifest error.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// resultName is the variable bound to the value of the last evaluation.
const resultName = "_"

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  list              List templates and functions
  vars              List variables
  set NAME EXPR     Bind NAME to the value of EXPR
  unset NAME        Remove the variable NAME
  render NAME       Render template NAME with the current variables
  edit              Edit templates and globals in external $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type an expression to evaluate it; its value is bound to _
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatEcho formats the echo line of a submitted input.
func formatEcho(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	catalog      *catalog.Catalog
	scope        scope
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL over the templates and functions of c.
func Run(
	ctx context.Context,
	c *catalog.Catalog,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if c == nil {
		return ErrNoCatalog
	}

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("template_count", len(c.Names())),
	)

	// Without a cache directory the history lives only as long as the session.
	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, c, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	c *catalog.Catalog,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		catalog:    c,
		scope:      scope{vars: map[string]any{}},
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		width:      defaultWidth,
		mode:       modeEval,
	}
	m.refreshScope()

	return m
}

// refreshScope reloads the catalog names used for completion.
func (m *model) refreshScope() {
	m.scope.globals = m.catalog.Globals()
	m.scope.functions = m.catalog.Functions()
	m.scope.templates = m.catalog.Names()
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		if !msg.loaded {
			return m, tea.Println(hintStyle.Render("edit cancelled"))
		}

		m.refreshScope()
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("template_count", len(m.scope.templates)),
		)

		return m, tea.Println(resultStyle.Render("catalog updated"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectFunctionCall(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render("Type an expression or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case call.inCall && m.mode == modeEval:
		if params, ok := signature(call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.Type == tea.KeySpace {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	// Single candidate: complete and confirm immediately.
	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl submit",
		slog.String("input", input),
		slog.Bool("command", mode == modeCtrl),
	)

	echo := tea.Println(formatEcho(mode, input))

	if mode == modeCtrl {
		m, cmd := m.executeCommand(input)

		return m, tea.Sequence(echo, cmd)
	}

	out, err := m.evaluate(resultName, input)
	if err != nil {
		return m, tea.Sequence(echo, printError(err))
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

// evaluate evaluates src with the current variables, binds the value to
// name, and returns its HTML rendering.
func (m model) evaluate(name, src string) (string, error) {
	ctx := m.ctxFunc()

	v, err := m.catalog.Evaluate(ctx, src, m.scope.vars)
	if err != nil {
		return "", err
	}

	m.scope.vars[name] = lang.ToNative(v)

	return m.catalog.RenderValue(ctx, v)
}

func printError(err error) tea.Cmd {
	msg := "error: " + err.Error()

	var le *lang.Error
	if errors.As(err, &le) {
		if s, ok := le.Attr("suggest"); ok {
			msg += " (did you mean " + strconv.Quote(s.String()) + "?)"
		}
	}

	return tea.Println(errorStyle.Render(msg))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.String("args", rest),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "l", "list":
		return m, tea.Println(m.listCatalog())

	case "v", "vars":
		return m, tea.Println(m.listVars())

	case "s", "set":
		target, src, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(src) == "" {
			return m, tea.Println(errorStyle.Render("usage: set NAME EXPR"))
		}

		out, err := m.evaluate(target, strings.TrimSpace(src))
		if err != nil {
			return m, printError(err)
		}

		return m, tea.Println(resultStyle.Render(target + " = " + out))

	case "u", "unset":
		delete(m.scope.vars, rest)

		return m, nil

	case "r", "render":
		out, err := m.catalog.Render(m.ctxFunc(), rest, m.scope.vars)
		if err != nil {
			return m, printError(err)
		}

		return m, tea.Println(resultStyle.Render(out))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, m.edit()

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + name + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editManifestCommand{
		catalog: m.catalog,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		return editDoneMsg{loaded: cmd.loaded}
	})
}

// historyStep moves through history by step entries. With inMode set, only
// entries of the current mode are visited; otherwise the mode follows the
// entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, inMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (inMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) listCatalog() string {
	var b strings.Builder

	b.WriteString("templates:\n")

	for _, name := range m.scope.templates {
		b.WriteString("  " + name)

		if t, ok := m.catalog.Get(name); ok && len(t.Params) > 0 {
			b.WriteString(" " + hintStyle.Render(strings.Join(slices.Sorted(maps.Keys(t.Params)), ", ")))
		}

		b.WriteString("\n")
	}

	b.WriteString("functions:\n")

	for _, name := range m.scope.functions {
		b.WriteString("  " + name + "\n")
	}

	return b.String()
}

func (m model) listVars() string {
	var b strings.Builder

	for _, name := range slices.Sorted(maps.Keys(m.scope.vars)) {
		v, err := lang.FromNative(m.scope.vars[name])
		if err != nil {
			continue
		}

		b.WriteString(fmt.Sprintf("  %s %s\n", name, hintStyle.Render(v.String())))
	}

	return b.String()
}

// switchToMode switches to the specified mode, preserving each mode's input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
