package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/grepl/internal/matchlist"
)

func sampleList() matchlist.List {
	return matchlist.List{
		{File: "a.go", Line: 1, Col: 3, Text: "alpha needle one"},
		{File: "a.go", Line: 7, Col: 1, Text: "beta needle two"},
		{File: "b.go", Line: 2, Col: 9, Text: "gamma needle three"},
		{File: "c.go", Line: 5, Col: 2, Text: "delta needle four"},
	}
}

func newTestModel(list matchlist.List) Model {
	m := NewModel(list, "needle", 0)
	m.width = 80
	m.height = 24
	return m
}

// press feeds a key string through Update and returns the resulting model.
func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+d":
		msg = tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+u":
		msg = tea.KeyMsg{Type: tea.KeyCtrlU}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	result, _ := m.Update(msg)
	return result.(Model)
}

func TestNavigation(t *testing.T) {
	m := newTestModel(sampleList())
	require.Equal(t, 0, m.cursor)

	m = press(t, m, "j")
	m = press(t, m, "j")
	assert.Equal(t, 2, m.cursor)

	m = press(t, m, "k")
	assert.Equal(t, 1, m.cursor)

	m = press(t, m, "G")
	assert.Equal(t, 3, m.cursor)

	m = press(t, m, "j")
	assert.Equal(t, 3, m.cursor, "cursor must clamp at last row")

	m = press(t, m, "g")
	assert.Equal(t, 0, m.cursor)

	m = press(t, m, "k")
	assert.Equal(t, 0, m.cursor, "cursor must clamp at first row")
}

func TestNavigationArrowKeys(t *testing.T) {
	m := newTestModel(sampleList())

	m = press(t, m, "down")
	assert.Equal(t, 1, m.cursor)
	m = press(t, m, "up")
	assert.Equal(t, 0, m.cursor)
}

func TestDeleteEntry(t *testing.T) {
	m := newTestModel(sampleList())
	m = press(t, m, "j")

	m = press(t, m, "x")

	require.Len(t, m.list, 4, "deletion must not shift positions")
	assert.True(t, m.list[1].IsTombstone())
	assert.False(t, m.list[0].IsTombstone())
	assert.Equal(t, 3, m.list.Live())
	assert.Equal(t, 1, m.cursor)
}

func TestDeleteRange(t *testing.T) {
	m := newTestModel(sampleList())

	// Anchor at row 1, extend down to row 2, delete.
	m = press(t, m, "j")
	m = press(t, m, "v")
	require.Equal(t, modeRange, m.md)
	m = press(t, m, "j")
	m = press(t, m, "d")

	require.Len(t, m.list, 4)
	assert.False(t, m.list[0].IsTombstone())
	assert.True(t, m.list[1].IsTombstone())
	assert.True(t, m.list[2].IsTombstone())
	assert.False(t, m.list[3].IsTombstone())
	assert.Equal(t, modeList, m.md)
	assert.Equal(t, 1, m.cursor, "cursor lands on the first deleted row")
}

func TestDeleteRangeUpward(t *testing.T) {
	m := newTestModel(sampleList())

	// Anchor at the last row and extend upward.
	m = press(t, m, "G")
	m = press(t, m, "v")
	m = press(t, m, "k")
	m = press(t, m, "k")
	m = press(t, m, "d")

	assert.False(t, m.list[0].IsTombstone())
	assert.True(t, m.list[1].IsTombstone())
	assert.True(t, m.list[2].IsTombstone())
	assert.True(t, m.list[3].IsTombstone())
	assert.Equal(t, 1, m.cursor)
}

func TestRangeEscLeavesRangeMode(t *testing.T) {
	m := newTestModel(sampleList())

	m = press(t, m, "v")
	require.Equal(t, modeRange, m.md)

	m = press(t, m, "esc")
	assert.Equal(t, modeList, m.md)
	assert.False(t, m.cancelled, "first esc only leaves range mode")

	m = press(t, m, "esc")
	assert.True(t, m.cancelled)
}

func TestEnterSavesList(t *testing.T) {
	m := newTestModel(sampleList())
	m = press(t, m, "x")
	m = press(t, m, "enter")

	assert.False(t, m.IsCancelled())
	assert.Equal(t, 3, m.List().Live())
	assert.Empty(t, m.Expression())
}

func TestCtrlCCancels(t *testing.T) {
	m := newTestModel(sampleList())
	m = press(t, m, "ctrl+c")
	assert.True(t, m.IsCancelled())
}

func TestSubstitutionPrompt(t *testing.T) {
	m := newTestModel(sampleList())

	m = press(t, m, "s")
	require.Equal(t, modeSubst, m.md)

	for _, r := range "/needle/thread/g" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")

	assert.Equal(t, "/needle/thread/g", m.Expression())
	assert.False(t, m.IsCancelled())
}

func TestSubstitutionPromptEscReturnsToList(t *testing.T) {
	m := newTestModel(sampleList())

	m = press(t, m, "s")
	m = press(t, m, "/")
	m = press(t, m, "esc")

	assert.Equal(t, modeList, m.md)
	assert.Empty(t, m.Expression())
	assert.False(t, m.IsCancelled())
}

func TestSubstitutionPromptNeedsLiveEntries(t *testing.T) {
	m := newTestModel(matchlist.List{matchlist.Tombstone(), matchlist.Tombstone()})

	m = press(t, m, "s")
	assert.Equal(t, modeList, m.md, "no live entries, prompt must not open")
}

func TestViewShowsMatches(t *testing.T) {
	m := newTestModel(sampleList())
	view := m.View()

	assert.Contains(t, view, "a.go:1:3")
	assert.Contains(t, view, "4/4 matches")
	assert.Contains(t, view, "needle")
}

func TestViewRendersTombstones(t *testing.T) {
	m := newTestModel(sampleList())
	m = press(t, m, "x")
	view := m.View()

	assert.Contains(t, view, "~")
	assert.Contains(t, view, "3/4 matches")
}

func TestViewEmptyList(t *testing.T) {
	m := newTestModel(nil)
	view := m.View()

	assert.Contains(t, view, "No matches")
}

func TestPageSizeBoundsListWindow(t *testing.T) {
	var list matchlist.List
	for i := 0; i < 50; i++ {
		list = append(list, matchlist.Entry{File: "big.go", Line: i + 1, Col: 1, Text: "row"})
	}

	m := NewModel(list, "", 5)
	assert.Equal(t, 5, m.listHeight(), "page size decides before the first WindowSizeMsg")

	m.width = 80
	m.height = 40
	assert.Equal(t, 5, m.listHeight(), "a tall terminal must not exceed the page size")

	// ctrl+d pages by the window, so the configured size is the step.
	m = press(t, m, "ctrl+d")
	assert.Equal(t, 5, m.cursor)
	m = press(t, m, "ctrl+u")
	assert.Equal(t, 0, m.cursor)

	view := m.View()
	assert.Len(t, strings.Split(view, "\n"), 7, "header + 5 rows + footer")
}

func TestPageSizeFallsBackWhenUnset(t *testing.T) {
	m := NewModel(sampleList(), "", 0)
	assert.Equal(t, defaultPageSize, m.pageSize)
}

func TestPatternSpans(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    [][2]int
	}{
		{"single", "alpha needle one", "needle", [][2]int{{6, 12}}},
		{"repeated", "needle and needle", "needle", [][2]int{{0, 6}, {11, 17}}},
		{"adjacent", "aaaa", "aa", [][2]int{{0, 2}, {2, 4}}},
		{"none", "no match here", "needle", nil},
		{"empty pattern", "text", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, patternSpans(tt.text, tt.pattern))
		})
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	var list matchlist.List
	for i := 0; i < 100; i++ {
		list = append(list, matchlist.Entry{File: "big.go", Line: i + 1, Col: 1, Text: "row"})
	}
	m := newTestModel(list)

	m = press(t, m, "G")
	assert.Equal(t, 99, m.cursor)
	assert.GreaterOrEqual(t, m.cursor, m.top)
	assert.Less(t, m.cursor, m.top+m.listHeight())

	view := m.View()
	assert.Contains(t, view, "big.go:100")
	assert.NotContains(t, strings.Split(view, "\n")[1], "big.go:1:")
}
