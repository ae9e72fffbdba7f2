// Package strings provides slice helpers for string-like values.
package strings

// Dedupe removes repeated values, keeping the first occurrence of each. The
// result is never nil.
func Dedupe[T ~string](values []T) []T {
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
