package common

// Coalesce picks the first value that is set. Builder options use it to fall back to a default
// when the caller left a field at its zero value, e.g. the renderer's clear color.
//
// Parameters:
//   - candidates: values in order of preference
//
// Returns:
//   - T: the first non-zero candidate, or the zero value when none is set
func Coalesce[T comparable](candidates ...T) T {
	var unset T
	for _, c := range candidates {
		if c == unset {
			continue
		}
		return c
	}
	return unset
}
