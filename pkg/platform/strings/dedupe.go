// Package strings provides string slice utilities shared across services.
package strings

import "strings"

// DedupeAddresses trims, lowercases, and deduplicates a recipient list while
// preserving order. Empty entries are dropped. Campaign sends rely on this so
// one subscriber never receives the same campaign twice.
func DedupeAddresses(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		addr := strings.ToLower(strings.TrimSpace(v))
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; !ok {
			seen[addr] = struct{}{}
			result = append(result, addr)
		}
	}

	return result
}
