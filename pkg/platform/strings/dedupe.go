// Package strings normalizes the string lists stored on registered apps.
package strings

import (
	"slices"
	"strings"
)

// CleanList trims each value and drops blanks and repeats, keeping the first
// occurrence. Case is preserved: redirect URIs and scopes compare exactly. The
// result is never nil so it can be stored in a NOT NULL array column.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
