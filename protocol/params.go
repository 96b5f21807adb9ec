package protocol

import (
	"fmt"
	"strings"
)

// quoteSentinel protects '?' characters embedded inside a rendered string
// literal from being mistaken for the next placeholder during substitution.
const quoteSentinel = "\x00QM\x00"

// BindParameters substitutes the '?' placeholders in body, left to right,
// with args rendered as SQL literals (§4.4). The k-th placeholder always
// receives the k-th argument, even if an earlier argument's rendered form
// itself contains '?' characters (§8 invariant 4, scenario S4).
func BindParameters(body string, args []interface{}) (string, error) {
	want := strings.Count(body, "?")
	if want != len(args) {
		return "", ArgumentCountMismatchError(want, len(args))
	}
	if want == 0 {
		return body, nil
	}

	var out strings.Builder
	remaining := body
	for _, arg := range args {
		idx := strings.IndexByte(remaining, '?')
		literal := renderLiteral(arg)
		literal = strings.ReplaceAll(literal, "?", quoteSentinel)

		out.WriteString(remaining[:idx])
		out.WriteString(literal)
		remaining = remaining[idx+1:]
	}
	out.WriteString(remaining)

	return strings.ReplaceAll(out.String(), quoteSentinel, "?"), nil
}

// renderLiteral renders a single bound argument as a SQL literal, per §4.4.
func renderLiteral(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "CAST(1 as BOOLEAN)"
		}
		return "CAST(0 as BOOLEAN)"
	case string:
		return quoteString(t)
	default:
		return formatNumeric(v)
	}
}

// quoteString strips CR/LF, doubles embedded single quotes, and wraps the
// result in single quotes (§4.4).
func quoteString(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "'", "''")
	return "'" + s + "'"
}

// formatNumeric renders an integer or floating point argument in its
// decimal form.
func formatNumeric(v interface{}) string {
	switch t := v.(type) {
	case int:
		return fmt.Sprintf("%d", t)
	case int32:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float32:
		return fmt.Sprintf("%g", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
