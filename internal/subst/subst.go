// Package subst applies a substitution expression across every file a match
// list references and persists the results.
package subst

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/runger/grepl/internal/matchlist"
)

// FileStore abstracts persistence so the pass can be exercised against an
// in-memory store in tests.
type FileStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// OSFileStore persists through the local filesystem, preserving each file's
// permission bits.
type OSFileStore struct{}

func (OSFileStore) Read(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileStore) Write(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

// Hook observes a substitution pass. Both callbacks receive the derived file
// set; either may be nil.
type Hook struct {
	BeforeWrite func(files []string)
	AfterWrite  func(files []string)
}

// Orchestrator runs substitution passes over match lists.
type Orchestrator struct {
	store FileStore
	hooks []Hook
	log   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFileStore swaps the persistence layer.
func WithFileStore(fs FileStore) Option {
	return func(o *Orchestrator) { o.store = fs }
}

// WithHook registers a pass observer.
func WithHook(h Hook) Option {
	return func(o *Orchestrator) { o.hooks = append(o.hooks, h) }
}

// New builds an Orchestrator writing through the OS filesystem by default.
func New(log *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store: OSFileStore{},
		log:   log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run applies expr to every file the list references and persists changed
// files. It returns the number of files whose content actually changed and
// was written; files visited without a match do not count and are not an
// error.
//
// Validation happens before any file is touched: a malformed expression or an
// empty file set aborts with no side effects. Per-file write failures are
// logged, folded into the returned error, and never retried or rolled back —
// there is no cross-file transaction.
func (o *Orchestrator) Run(list matchlist.List, expr string) (int, error) {
	e, err := ParseExpression(expr)
	if err != nil {
		return 0, err
	}
	re, err := e.Compile()
	if err != nil {
		return 0, err
	}
	files, err := matchlist.Files(list)
	if err != nil {
		return 0, err
	}

	for _, h := range o.hooks {
		if h.BeforeWrite != nil {
			h.BeforeWrite(files)
		}
	}

	changed := 0
	var failures []error
	for _, path := range files {
		didChange, err := o.applyFile(path, re, e.Replacement)
		if err != nil {
			o.log.Error("substitution failed", "file", path, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if didChange {
			changed++
		}
	}

	for _, h := range o.hooks {
		if h.AfterWrite != nil {
			h.AfterWrite(files)
		}
	}
	return changed, errors.Join(failures...)
}

// applyFile rewrites one file line by line. The replacement is always global
// within each line.
func (o *Orchestrator) applyFile(path string, re *regexp.Regexp, replacement string) (bool, error) {
	data, err := o.store.Read(path)
	if err != nil {
		return false, err
	}

	lines := strings.Split(string(data), "\n")
	touched := false
	for i, line := range lines {
		out := re.ReplaceAllString(line, replacement)
		if out != line {
			lines[i] = out
			touched = true
		}
	}
	if !touched {
		return false, nil
	}
	if err := o.store.Write(path, []byte(strings.Join(lines, "\n"))); err != nil {
		return false, err
	}
	o.log.Debug("file rewritten", "file", path)
	return true, nil
}
