// Package highlight holds the most recently captured search pattern so that
// rendering code elsewhere can re-highlight matches without reaching back
// into the search pipeline.
package highlight

import "sync"

// State is a single-slot store for the last search pattern. It is written
// once per successful search that captured a pattern and read by whoever
// renders results. The dirty flag tells the next render to re-apply
// highlighting.
type State struct {
	mu      sync.Mutex
	pattern string
	set     bool
	dirty   bool
}

// Publish records pattern as the current search pattern and marks the slot
// dirty. Empty patterns are ignored: an option-only query captures nothing.
func (s *State) Publish(pattern string) {
	if pattern == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = pattern
	s.set = true
	s.dirty = true
}

// Pattern returns the current pattern and whether one has been published.
func (s *State) Pattern() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pattern, s.set
}

// ConsumeDirty reports whether highlighting needs re-applying, clearing the
// flag so the work happens once per publish.
func (s *State) ConsumeDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d
}
