package cronexpr

import "strings"

// Normalize returns the canonical cron form of expr.
//
// Expressions without ASCII letters are returned trimmed and otherwise
// untouched; validating them is the recurrence parser's job. Expressions
// with letters go through Translate.
func Normalize(expr string) (string, error) {
	s := strings.TrimSpace(expr)
	if IsEnglish(s) {
		return Translate(s)
	}
	return s, nil
}

// IsEnglish reports whether expr contains any ASCII letter.
func IsEnglish(expr string) bool {
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
