// Package picker provides the interactive match-list TUI. It shows the
// stored list, lets the user prune entries and ranges, and can collect a
// substitution expression to run across the surviving files.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runger/grepl/internal/matchlist"
)

// mode is the picker's input mode.
type mode int

const (
	modeList  mode = iota // Normal list navigation
	modeRange             // Range selection anchored at anchor
	modeSubst             // Substitution expression prompt open
)

// Model is the Bubble Tea model for the match list TUI.
// It must be exported so that cmd/grepl can use it.
type Model struct {
	list    matchlist.List
	pattern string // Search pattern, highlighted in match text

	md     mode
	cursor int
	anchor int // Range anchor; only meaningful in modeRange
	top    int // First visible row

	input textinput.Model // Substitution expression prompt

	pageSize int // Visible rows before the terminal reports its size
	width    int
	height   int

	cancelled bool
	expr      string // Entered substitution expression, "" when none
	err       error
}

// NewModel creates a picker over list. pattern may be empty; when set,
// occurrences in match text are highlighted. pageSize caps the list window
// until the terminal reports its real size; values below 1 fall back to a
// default.
func NewModel(list matchlist.List, pattern string, pageSize int) Model {
	ti := textinput.New()
	ti.Prompt = ":s"
	ti.Placeholder = "/pattern/replacement/flags"
	ti.CharLimit = 512

	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return Model{
		list:     list,
		pattern:  pattern,
		md:       modeList,
		anchor:   -1,
		input:    ti,
		pageSize: pageSize,
	}
}

// List returns the (possibly pruned) match list after the TUI exits.
func (m Model) List() matchlist.List {
	return m.list
}

// Expression returns the substitution expression the user entered,
// or "" if none was.
func (m Model) Expression() string {
	return m.expr
}

// IsCancelled reports whether the user abandoned the session; a cancelled
// session discards edits.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.md == modeSubst {
			return m.handleSubstKey(msg)
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollIntoView()
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input in list and range modes.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit

	case "esc":
		if m.md == modeRange {
			m.md = modeList
			m.anchor = -1
			return m, nil
		}
		m.cancelled = true
		return m, tea.Quit

	case "q", "enter":
		return m, tea.Quit

	case "j", "down":
		m.moveCursor(1)
		return m, nil

	case "k", "up":
		m.moveCursor(-1)
		return m, nil

	case "g", "home":
		m.cursor = 0
		m.scrollIntoView()
		return m, nil

	case "G", "end":
		if n := len(m.list); n > 0 {
			m.cursor = n - 1
		}
		m.scrollIntoView()
		return m, nil

	case "ctrl+d", "pgdown":
		m.moveCursor(m.listHeight())
		return m, nil

	case "ctrl+u", "pgup":
		m.moveCursor(-m.listHeight())
		return m, nil

	case "v":
		if len(m.list) == 0 {
			return m, nil
		}
		if m.md == modeRange {
			m.md = modeList
			m.anchor = -1
		} else {
			m.md = modeRange
			m.anchor = m.cursor
		}
		return m, nil

	case "x", "d":
		return m.deleteSelection()

	case "s":
		if m.list.Live() == 0 {
			return m, nil
		}
		m.md = modeSubst
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	}

	return m, nil
}

// handleSubstKey processes keyboard input while the substitution prompt
// is open.
func (m Model) handleSubstKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.md = modeList
		m.input.Blur()
		return m, nil

	case tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit

	case tea.KeyEnter:
		m.expr = strings.TrimSpace(m.input.Value())
		m.input.Blur()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// deleteSelection removes the cursor entry, or the anchored range in
// range mode. Positions of the surviving entries do not shift.
func (m Model) deleteSelection() (tea.Model, tea.Cmd) {
	if len(m.list) == 0 {
		return m, nil
	}

	first, last := m.cursor+1, m.cursor+1
	if m.md == modeRange {
		first, last = matchlist.NormalizeRange(m.cursor+1, m.anchor+1)
	}

	pruned, err := matchlist.DeleteRange(m.list, first, last)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.list = pruned
	m.md = modeList
	m.anchor = -1
	m.cursor = first - 1
	m.scrollIntoView()
	return m, nil
}

// moveCursor moves the cursor by delta rows, clamped to the list.
func (m *Model) moveCursor(delta int) {
	if len(m.list) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.list) {
		m.cursor = len(m.list) - 1
	}
	m.scrollIntoView()
}

// scrollIntoView adjusts the window so the cursor row is visible.
func (m *Model) scrollIntoView() {
	h := m.listHeight()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+h {
		m.top = m.cursor - h + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// defaultPageSize is the list window used when no page size is configured.
const defaultPageSize = 20

// listHeight returns the number of visible list rows: the terminal height
// minus header and footer, capped at the configured page size. Before the
// first WindowSizeMsg the page size alone decides.
func (m Model) listHeight() int {
	const chrome = 2
	h := m.height - chrome
	if h < 1 || h > m.pageSize {
		h = m.pageSize
	}
	return h
}

// inRange reports whether row i falls inside the anchored range.
func (m Model) inRange(i int) bool {
	if m.md != modeRange {
		return false
	}
	first, last := matchlist.NormalizeRange(m.cursor+1, m.anchor+1)
	return i+1 >= first && i+1 <= last
}

// --- View rendering ---

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	rangeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238"))
	normalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	locationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteRune('\n')
	b.WriteString(m.viewList())
	b.WriteRune('\n')
	b.WriteString(m.viewFooter())

	return b.String()
}

// viewHeader renders the title bar with pattern and live count.
func (m Model) viewHeader() string {
	title := fmt.Sprintf(" %d/%d matches ", m.list.Live(), len(m.list))
	if m.pattern != "" {
		title = fmt.Sprintf(" /%s/ %s", m.pattern, title)
	}
	return headerStyle.Render(title)
}

// viewList renders the visible window of the match list.
func (m Model) viewList() string {
	if len(m.list) == 0 {
		return dimStyle.Render("No matches")
	}

	var b strings.Builder
	h := m.listHeight()
	end := m.top + h
	if end > len(m.list) {
		end = len(m.list)
	}

	for i := m.top; i < end; i++ {
		b.WriteString(m.viewRow(i))
		if i < end-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

// viewRow renders a single list row.
func (m Model) viewRow(i int) string {
	e := m.list[i]

	marker := "  "
	if i == m.cursor {
		marker = "> "
	}

	if e.IsTombstone() {
		return dimStyle.Render(marker + "~")
	}

	loc := fmt.Sprintf("%s:%d", e.File, e.Line)
	if e.Col > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Col)
	}

	text := StripANSI(ValidateUTF8(e.Text))
	if m.width > 4 {
		budget := m.width - 4 - len(loc)
		if budget < 8 {
			budget = 8
		}
		text = MiddleTruncate(text, budget)
	}

	switch {
	case i == m.cursor:
		return selectedStyle.Render(marker+loc+": ") + m.renderText(text, selectedStyle)
	case m.inRange(i):
		return rangeStyle.Render(marker + loc + ": " + text)
	default:
		return marker + locationStyle.Render(loc+": ") + m.renderText(text, normalStyle)
	}
}

// renderText renders match text with every occurrence of the search pattern
// highlighted. The pattern is treated as a literal here; regex metacharacters
// just fail to match and the row renders unhighlighted.
func (m Model) renderText(text string, base lipgloss.Style) string {
	spans := patternSpans(text, m.pattern)
	if len(spans) == 0 {
		return base.Render(text)
	}

	var b strings.Builder
	prev := 0
	for _, s := range spans {
		if s[0] > prev {
			b.WriteString(base.Render(text[prev:s[0]]))
		}
		b.WriteString(highlightStyle.Render(text[s[0]:s[1]]))
		prev = s[1]
	}
	if prev < len(text) {
		b.WriteString(base.Render(text[prev:]))
	}
	return b.String()
}

// patternSpans returns the [start, end) byte ranges of every non-overlapping
// occurrence of pattern in text, in order. An empty pattern matches nothing.
func patternSpans(text, pattern string) [][2]int {
	if pattern == "" {
		return nil
	}
	var spans [][2]int
	off := 0
	for {
		idx := strings.Index(text[off:], pattern)
		if idx < 0 {
			return spans
		}
		start := off + idx
		spans = append(spans, [2]int{start, start + len(pattern)})
		off = start + len(pattern)
	}
}

// viewFooter renders the key hints, the error line, or the substitution
// prompt depending on mode.
func (m Model) viewFooter() string {
	if m.md == modeSubst {
		return m.input.View()
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %s", m.err))
	}
	hints := "j/k move  x delete  v range  s substitute  enter save  esc cancel"
	if m.md == modeRange {
		hints = "j/k extend  d delete range  esc leave range"
	}
	return dimStyle.Render(hints)
}
