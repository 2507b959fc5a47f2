package dialect

import (
	"regexp"
	"strconv"
	"strings"
)

var quotedDefault = regexp.MustCompile(`^'(.*)'(::[\w\s."\[\]]+)?$`)

// ParseDefault converts a catalog default expression into a Go value:
// quoted literals become strings (with any ::type cast dropped), true/false
// become bools, numeric literals become int64 or float64 and NULL becomes
// nil. Anything else, such as nextval(...) or CURRENT_TIMESTAMP, is kept
// as the raw expression.
func ParseDefault(raw *string) any {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" || strings.EqualFold(s, "null") || strings.HasPrefix(strings.ToUpper(s), "NULL::") {
		return nil
	}
	if m := quotedDefault.FindStringSubmatch(s); m != nil {
		return strings.ReplaceAll(m[1], "''", "'")
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// stripParens removes the redundant parentheses SQL Server wraps defaults in,
// e.g. "((0))" → "0". A pair is only removed when the opening parenthesis
// closes at the last character, so "((1)+(2))" becomes "(1)+(2)".
func stripParens(s string) string {
	for len(s) >= 2 && s[0] == '(' && closingParen(s) == len(s)-1 {
		s = s[1 : len(s)-1]
	}
	return s
}

// closingParen returns the index of the parenthesis closing s[0], or -1.
// Parentheses inside single-quoted literals are ignored.
func closingParen(s string) int {
	depth := 0
	quoted := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\'':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
