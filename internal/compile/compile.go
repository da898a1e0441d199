// Package compile turns the raw argument string typed by the user into a
// shell-safe command line for the external search program, and pulls out the
// search pattern used later for highlighting.
package compile

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrEmptyQuery is returned when the raw query contains no tokens at all.
var ErrEmptyQuery = errors.New("empty query")

// Command is the compiled form of one raw query. It is immutable once built.
type Command struct {
	// Args are the classified tokens after glob expansion, unescaped.
	Args []string
	// Escaped is the shell-safe, space-joined command line fragment.
	Escaped string
	// Pattern is the first non-option token, with escaped spaces resolved
	// to literal spaces. Empty means the query carried no pattern, which is
	// "nothing to highlight", not an error.
	Pattern string
}

// Compile tokenizes raw, classifies each token, expands path globs, and
// shell-escapes the result.
//
// Classification is positional: tokens starting with "-" are options and pass
// through verbatim; the first remaining token is the pattern; everything after
// it is a path and gets glob-expanded. A path whose glob matches nothing is
// forwarded unexpanded so the search program can report the miss itself.
func Compile(raw string) (Command, error) {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return Command{}, ErrEmptyQuery
	}

	var cmd Command
	patternSeen := false
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "-"):
			// Option flags must reach the search program unmodified.
			cmd.Args = append(cmd.Args, tok)
		case !patternSeen:
			patternSeen = true
			cmd.Pattern = tok
			cmd.Args = append(cmd.Args, tok)
		default:
			cmd.Args = append(cmd.Args, expandPath(tok)...)
		}
	}

	escaped := make([]string, len(cmd.Args))
	for i, a := range cmd.Args {
		escaped[i] = shellEscape(a)
	}
	cmd.Escaped = strings.Join(escaped, " ")
	return cmd, nil
}

// tokenize splits raw on runs of unescaped whitespace. A backslash-escaped
// space is one lexical unit inside its token, resolved to a literal space.
// Every other backslash is preserved as-is, since it is almost always part of
// a regex.
func tokenize(raw string) []string {
	var tokens []string
	var cur strings.Builder
	inToken := false

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && runes[i+1] == ' ':
			cur.WriteRune(' ')
			inToken = true
			i++
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	flush()
	return tokens
}

// expandPath expands a user-named path token as a filesystem glob. Expansion
// deliberately ignores any ignore-file configuration the search program may
// honor: the user named these paths explicitly.
func expandPath(tok string) []string {
	matches, err := doublestar.FilepathGlob(tok)
	if err != nil || len(matches) == 0 {
		// Pass the token through so the search program reports the miss
		// in its own words.
		return []string{tok}
	}
	return matches
}

// safeChars are bytes that never need quoting in a POSIX shell word.
const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_@%+=:,./-"

// shellEscape quotes a single token for a POSIX shell.
func shellEscape(s string) string {
	if s == "" {
		return "''"
	}
	plain := true
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(safeChars, rune(s[i])) {
			plain = false
			break
		}
	}
	if plain {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
