// Package dispatch runs the external search program with a compiled command
// and feeds its output into the match list.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runger/grepl/internal/compile"
	"github.com/runger/grepl/internal/highlight"
	"github.com/runger/grepl/internal/matchlist"
)

// Scope names for the two match lists: the shared one and the one tied to
// the working directory.
const (
	ScopeGlobal = "global"
	ScopeLocal  = "local"
)

// Sink installs a freshly produced match list. Installation is always a
// whole-list replacement, never a partial edit.
type Sink interface {
	Replace(scope string, list matchlist.List) error
}

// Config carries the dispatcher's feature toggles.
type Config struct {
	// Program is the external search command, e.g. "rg --vimgrep". Empty
	// means search is disabled.
	Program string
	// Highlight controls whether a captured pattern is published for
	// result highlighting.
	Highlight bool
}

// Dispatcher wires a Runner, a Sink and the highlight slot together.
type Dispatcher struct {
	cfg    Config
	runner Runner
	sink   Sink
	hl     *highlight.State
	log    *slog.Logger
}

// New builds a Dispatcher. The runner strategy is the caller's choice, made
// once at startup.
func New(cfg Config, runner Runner, sink Sink, hl *highlight.State, log *slog.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, runner: runner, sink: sink, hl: hl, log: log}
}

// Dispatch runs the search for cmd and installs the result under scope.
//
// With no search program configured this is a silent no-op: the feature is
// disabled, not broken. A zero-match run installs an empty list so the caller
// still shows "no matches" instead of nothing happening. With a synchronous
// runner the returned error covers the whole run; with a background runner
// Dispatch returns once the job is launched and failures are logged on
// completion.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd compile.Command, scope string) error {
	if d.cfg.Program == "" {
		d.log.Debug("no search program configured, search disabled")
		return nil
	}

	cmdline := d.cfg.Program + " " + cmd.Escaped
	d.log.Debug("dispatching search", "command", cmdline, "scope", scope)

	return d.runner.Run(ctx, cmdline, func(list matchlist.List, err error) error {
		if err != nil {
			return err
		}
		if err := d.sink.Replace(scope, list); err != nil {
			return fmt.Errorf("installing match list: %w", err)
		}
		if d.cfg.Highlight {
			// Marks the slot dirty so the next render re-applies it.
			d.hl.Publish(cmd.Pattern)
		}
		d.log.Info("search complete", "matches", len(list), "scope", scope)
		return nil
	})
}

// CommandLine reports the full command line Dispatch would run, for display.
func (d *Dispatcher) CommandLine(cmd compile.Command) string {
	if d.cfg.Program == "" {
		return ""
	}
	return d.cfg.Program + " " + cmd.Escaped
}
