// Package strings holds small helpers for officer-supplied string lists.
package strings

import "strings"

// DedupeAndTrim trims every element and drops blanks and repeats, keeping
// first-seen order. Document references arrive pasted from case files and
// tend to carry stray whitespace and duplicates; storage gets the clean form.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
