// Package attrs reads values back out of slog-style key/value argument lists,
// so one list can feed both a log line and a structured event.
package attrs

import "fmt"

// Pairs holds the string-valued attributes of a list by key.
type Pairs map[string]string

// Index collects every key whose value is a string or a fmt.Stringer. A key
// that repeats keeps its last value, matching what the log line shows. Other
// value types and a trailing key without a value are skipped.
func Index(kv []any) Pairs {
	p := make(Pairs, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			p[key] = v
		case fmt.Stringer:
			p[key] = v.String()
		}
	}
	return p
}

// Get returns the value for key, or "" when it is absent.
func (p Pairs) Get(key string) string {
	return p[key]
}
