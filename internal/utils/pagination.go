// Package utils holds small domain-free helpers shared across layers.
package utils

import "strconv"

// AtoiDefault parses s as an int, falling back to def when s is empty or
// not a valid integer. Query parameters such as ?page= and ?limit= go
// through this so malformed input degrades to the documented default
// instead of an error.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
