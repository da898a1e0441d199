package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/grepl/internal/compile"
	"github.com/runger/grepl/internal/highlight"
	"github.com/runger/grepl/internal/matchlist"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRunner hands a canned result to the completion callback, synchronously.
type fakeRunner struct {
	lastCmdline string
	list        matchlist.List
	err         error
}

func (f *fakeRunner) Run(_ context.Context, cmdline string, done CompleteFunc) error {
	f.lastCmdline = cmdline
	return done(f.list, f.err)
}

type fakeSink struct {
	scope string
	list  matchlist.List
	calls int
	err   error
}

func (f *fakeSink) Replace(scope string, list matchlist.List) error {
	f.calls++
	f.scope = scope
	f.list = list
	return f.err
}

func mustCompile(t *testing.T, raw string) compile.Command {
	t.Helper()
	cmd, err := compile.Compile(raw)
	require.NoError(t, err)
	return cmd
}

func TestDispatchBuildsCommandLine(t *testing.T) {
	runner := &fakeRunner{list: matchlist.List{{File: "a.go", Line: 1, Text: "x"}}}
	sink := &fakeSink{}
	hl := &highlight.State{}
	d := New(Config{Program: "rg --vimgrep", Highlight: true}, runner, sink, hl, discardLogger())

	err := d.Dispatch(context.Background(), mustCompile(t, "needle src"), ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, "rg --vimgrep needle src", runner.lastCmdline)
	assert.Equal(t, ScopeGlobal, sink.scope)
	assert.Len(t, sink.list, 1)
}

func TestDispatchNoProgramIsSilentNoop(t *testing.T) {
	runner := &fakeRunner{}
	sink := &fakeSink{}
	d := New(Config{}, runner, sink, &highlight.State{}, discardLogger())

	err := d.Dispatch(context.Background(), mustCompile(t, "needle"), ScopeGlobal)
	require.NoError(t, err)
	assert.Empty(t, runner.lastCmdline)
	assert.Zero(t, sink.calls)
}

func TestDispatchZeroMatchesStillInstalls(t *testing.T) {
	runner := &fakeRunner{list: matchlist.List{}}
	sink := &fakeSink{}
	d := New(Config{Program: "rg"}, runner, sink, &highlight.State{}, discardLogger())

	err := d.Dispatch(context.Background(), mustCompile(t, "needle"), ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, 1, sink.calls, "an empty list is installed so the user sees no matches")
	assert.Equal(t, ScopeLocal, sink.scope)
}

func TestDispatchPublishesPattern(t *testing.T) {
	hl := &highlight.State{}
	d := New(Config{Program: "rg", Highlight: true}, &fakeRunner{}, &fakeSink{}, hl, discardLogger())

	require.NoError(t, d.Dispatch(context.Background(), mustCompile(t, "-i needle"), ScopeGlobal))
	p, ok := hl.Pattern()
	assert.True(t, ok)
	assert.Equal(t, "needle", p)
	assert.True(t, hl.ConsumeDirty())
}

func TestDispatchHighlightDisabled(t *testing.T) {
	hl := &highlight.State{}
	d := New(Config{Program: "rg", Highlight: false}, &fakeRunner{}, &fakeSink{}, hl, discardLogger())

	require.NoError(t, d.Dispatch(context.Background(), mustCompile(t, "needle"), ScopeGlobal))
	_, ok := hl.Pattern()
	assert.False(t, ok)
}

func TestDispatchOptionsOnlyPublishesNothing(t *testing.T) {
	hl := &highlight.State{}
	d := New(Config{Program: "rg", Highlight: true}, &fakeRunner{}, &fakeSink{}, hl, discardLogger())

	require.NoError(t, d.Dispatch(context.Background(), mustCompile(t, "-i --count"), ScopeGlobal))
	_, ok := hl.Pattern()
	assert.False(t, ok, "no pattern captured means nothing to highlight")
}

func TestDispatchRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("rg: oh no")}
	sink := &fakeSink{}
	hl := &highlight.State{}
	d := New(Config{Program: "rg", Highlight: true}, runner, sink, hl, discardLogger())

	err := d.Dispatch(context.Background(), mustCompile(t, "needle"), ScopeGlobal)
	require.Error(t, err)
	assert.Equal(t, "rg: oh no", err.Error())
	assert.Zero(t, sink.calls)
	_, ok := hl.Pattern()
	assert.False(t, ok, "a failed search publishes nothing")
}

func TestDispatchSinkError(t *testing.T) {
	sink := &fakeSink{err: errors.New("store locked")}
	d := New(Config{Program: "rg"}, &fakeRunner{}, sink, &highlight.State{}, discardLogger())

	err := d.Dispatch(context.Background(), mustCompile(t, "needle"), ScopeGlobal)
	assert.ErrorContains(t, err, "store locked")
}

func TestCommandLine(t *testing.T) {
	d := New(Config{Program: "grep -rn"}, &fakeRunner{}, &fakeSink{}, &highlight.State{}, discardLogger())
	assert.Equal(t, "grep -rn 'two words'", d.CommandLine(mustCompile(t, `two\ words`)))

	disabled := New(Config{}, &fakeRunner{}, &fakeSink{}, &highlight.State{}, discardLogger())
	assert.Empty(t, disabled.CommandLine(mustCompile(t, "x")))
}
