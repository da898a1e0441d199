package subst

import (
	"fmt"
	"regexp"
	"strings"
)

// Expression is a parsed substitution of the form <delim>pattern<delim>replacement<delim>flags.
// The first byte of the input picks the delimiter, conventionally "/".
type Expression struct {
	Pattern     string
	Replacement string
	Flags       string
}

// ParseExpression validates and splits a substitution expression. The
// delimiter must open the expression and occur at least twice more,
// unescaped; anything else is rejected before any file is touched.
// Flags are free text: i (ignore case) is honored, g and e are forced on
// regardless, and anything else is carried along and ignored.
func ParseExpression(expr string) (Expression, error) {
	if len(expr) < 3 {
		return Expression{}, fmt.Errorf("invalid substitution %q: want <delim>pattern<delim>replacement<delim>[flags]", expr)
	}
	delim := rune(expr[0])
	if isWordRune(delim) || delim == '\\' {
		return Expression{}, fmt.Errorf("invalid substitution %q: %q cannot delimit", expr, delim)
	}

	parts := splitUnescaped(expr[1:], delim)
	if len(parts) < 3 {
		return Expression{}, fmt.Errorf("invalid substitution %q: want <delim>pattern<delim>replacement<delim>[flags]", expr)
	}

	e := Expression{
		Pattern:     parts[0],
		Replacement: parts[1],
		Flags:       strings.Join(parts[2:], string(delim)),
	}
	if e.Pattern == "" {
		return Expression{}, fmt.Errorf("invalid substitution %q: empty pattern", expr)
	}
	return e, nil
}

// Compile builds the line-level regexp. The user's flags augment the forced
// behavior: "ge" is always on, "i" adds case-insensitivity.
func (e Expression) Compile() (*regexp.Regexp, error) {
	pat := e.Pattern
	if strings.ContainsRune(e.Flags, 'i') {
		pat = "(?i)" + pat
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("invalid substitution pattern: %w", err)
	}
	return re, nil
}

// splitUnescaped splits s on delim, treating a backslash-escaped delimiter as
// literal content.
func splitUnescaped(s string, delim rune) []string {
	var parts []string
	var cur strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes) && runes[i+1] == delim:
			cur.WriteRune(delim)
			i++
		case r == delim:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
