package common

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Camelize converts a kebab or snake cased identifier into camel case:
// `test-plugin` becomes `testPlugin`.
func Camelize(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}

		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}

	return s
}

// NormalizePath cleans a path and converts it to forward slashes.
func NormalizePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
