// Package strings provides order-preserving de-duplication helpers.
package strings

import (
	"strings"
)

// Dedupe removes repeated values, keeping the first occurrence of each.
//
//	Dedupe([]string{"interview", "basic_income_check", "interview"})
//	// Returns: []string{"interview", "basic_income_check"}
func Dedupe[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}

	seen := make(map[T]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

// DedupeAndTrim removes duplicates and blank entries, trimming whitespace
// from each element. Order is preserved.
func DedupeAndTrim(values []string) []string {
	return dedupeMapped(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but also lowercases each element.
//
//	DedupeAndTrimLower([]string{" SNAP ", "tanf", "snap"})
//	// Returns: []string{"snap", "tanf"}
func DedupeAndTrimLower(values []string) []string {
	return dedupeMapped(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

func dedupeMapped(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}
	return result
}
