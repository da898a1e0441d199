// Package matchlist holds the ordered list of matches produced by a search
// run: entries, tombstones left behind by deletions, and the derived set of
// files the list references.
package matchlist

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNoFiles is returned when a file set is requested from a list that
// references no live files.
var ErrNoFiles = errors.New("no files in the match list")

// Entry is a single match reported by the search program.
// A zero Entry is a tombstone: a deleted slot that keeps its position so
// numeric indexes into the list stay valid.
type Entry struct {
	File string
	Line int
	Col  int
	Text string
}

// Tombstone returns the marker that occupies a deleted slot.
func Tombstone() Entry {
	return Entry{}
}

// IsTombstone reports whether the entry is a deleted slot. Tombstones carry
// no file or position and must never be dereferenced for lookups.
func (e Entry) IsTombstone() bool {
	return e.File == "" && e.Line == 0
}

// String renders the entry in the conventional file:line:col format.
func (e Entry) String() string {
	if e.IsTombstone() {
		return "~"
	}
	if e.Col > 0 {
		return fmt.Sprintf("%s:%d:%d:%s", e.File, e.Line, e.Col, e.Text)
	}
	return fmt.Sprintf("%s:%d:%s", e.File, e.Line, e.Text)
}

// List is an ordered sequence of entries and tombstones. It is treated as a
// whole-value resource: mutations return a full replacement list rather than
// editing in place, so a partially applied update is never observable.
type List []Entry

// Live returns the number of non-tombstone entries.
func (l List) Live() int {
	n := 0
	for _, e := range l {
		if !e.IsTombstone() {
			n++
		}
	}
	return n
}

// DeleteRange returns a copy of the list with every slot in the 1-based
// inclusive range [first, last] replaced by a tombstone. The length of the
// list never changes, and slots outside the range are untouched, so any index
// a caller already holds stays valid. Tombstoning an already-deleted slot is
// a no-op.
//
// After installing the returned list the caller is expected to move its
// cursor to position first.
func DeleteRange(list List, first, last int) (List, error) {
	if first < 1 || last < first || last > len(list) {
		return nil, fmt.Errorf("delete range %d..%d out of bounds for list of %d", first, last, len(list))
	}
	out := make(List, len(list))
	copy(out, list)
	for i := first - 1; i < last; i++ {
		out[i] = Tombstone()
	}
	return out, nil
}

// NormalizeRange turns a cursor/anchor pair into an inclusive 1-based range,
// regardless of which side the anchor is on. Motion- and selection-derived
// deletions both funnel through this so the interpretation is always
// inclusive of both endpoints.
func NormalizeRange(cursor, anchor int) (first, last int) {
	if anchor < cursor {
		return anchor, cursor
	}
	return cursor, anchor
}

// Files projects the list down to the distinct files it references, in
// first-occurrence order. Identity is the cleaned absolute path, so the same
// file reached by different spellings appears once; the emitted value is the
// path as the search program reported it. Tombstones contribute nothing.
//
// An empty result is an error: a substitution pass over zero files means
// nothing would happen, and that has to be surfaced rather than silently
// succeeding.
func Files(list List) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, e := range list {
		if e.IsTombstone() {
			continue
		}
		key := canonicalPath(e.File)
		if seen[key] {
			continue
		}
		seen[key] = true
		files = append(files, e.File)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// canonicalPath returns the identity key for a file path.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
