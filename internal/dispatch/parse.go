package dispatch

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/runger/grepl/internal/matchlist"
)

// maxRecordLine bounds a single match record. Minified sources can produce
// very long lines; anything longer is truncated by the scanner.
const maxRecordLine = 1 << 20

// parseMatches reads the search program's stdout as newline-delimited
// file:line[:col]:text records. Lines that do not fit the grammar are the
// tool's own chatter (summaries, warnings) and are skipped, not errors.
func parseMatches(out []byte) matchlist.List {
	var list matchlist.List
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 64*1024), maxRecordLine)
	for sc.Scan() {
		if entry, ok := parseRecord(sc.Text()); ok {
			list = append(list, entry)
		}
	}
	return list
}

// parseRecord parses one match record. The column is optional; a Windows
// drive prefix ("C:\...") is not mistaken for the file separator.
func parseRecord(s string) (matchlist.Entry, bool) {
	start := 0
	if len(s) > 2 && isDriveLetter(s[0]) && s[1] == ':' && (s[2] == '\\' || s[2] == '/') {
		start = 2
	}

	i := strings.Index(s[start:], ":")
	if i < 0 {
		return matchlist.Entry{}, false
	}
	file := s[:start+i]
	rest := s[start+i+1:]

	j := strings.Index(rest, ":")
	if j < 0 || file == "" {
		return matchlist.Entry{}, false
	}
	lineNo, err := strconv.Atoi(rest[:j])
	if err != nil || lineNo < 1 {
		return matchlist.Entry{}, false
	}
	rest = rest[j+1:]

	if k := strings.Index(rest, ":"); k >= 0 {
		if col, err := strconv.Atoi(rest[:k]); err == nil && col >= 1 {
			return matchlist.Entry{File: file, Line: lineNo, Col: col, Text: rest[k+1:]}, true
		}
	}
	return matchlist.Entry{File: file, Line: lineNo, Text: rest}, true
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
