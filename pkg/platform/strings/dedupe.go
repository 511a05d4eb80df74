// Package strings holds small helpers for list-valued settings.
package strings

import "strings"

// DedupeAndTrimLower trims and lowercases each value, drops blanks and keeps
// the first occurrence of every remaining value. Order is preserved, so
// "JSON" and " json " collapse into the position of whichever came first.
func DedupeAndTrimLower(values []string) []string {
	if values == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := strings.ToLower(strings.TrimSpace(v))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
