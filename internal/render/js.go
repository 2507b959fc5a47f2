package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// quote renders s as a single-quoted literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// key renders an object key, quoting it only when it is not an identifier.
func key(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	return quote(name)
}

// ident turns name into something usable as a variable or field name.
func ident(name string) string {
	if identifier.MatchString(name) {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// literal renders a parsed default value. Strings are quoted; everything
// else is written as its literal representation.
func literal(v any) string {
	switch t := v.(type) {
	case string:
		return quote(t)
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Literal renders a table option value given as text. Booleans, numbers,
// null and values that already look like code (quoted strings, objects,
// arrays) are kept verbatim. Anything else is quoted.
func Literal(s string) string {
	t := strings.TrimSpace(s)
	switch {
	case t == "":
		return quote(s)
	case t == "true" || t == "false" || t == "null":
		return t
	case strings.ContainsAny(t[:1], `'"{[`):
		return t
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return t
	}
	return quote(s)
}

// Quote renders s as a single-quoted literal.
func Quote(s string) string { return quote(s) }
