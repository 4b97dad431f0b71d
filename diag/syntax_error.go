// Package diag turns the raw error text reported by the UTS bundler into
// structured diagnostics.
package diag

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// SyntaxError is a parse or type error in user source reported by the
// bundler.  Line and Column are one-based; both are zero when the bundler
// gave no location.
type SyntaxError struct {
	// File is the erroneous source file: relative to the input directory when
	// it lies inside it, as reported otherwise.
	File string

	Line   int
	Column int

	Message string
}

func (se *SyntaxError) Error() string {
	if se.File == "" {
		return "error: " + se.Message
	}

	if se.Line == 0 {
		return fmt.Sprintf("%s: error: %s", se.File, se.Message)
	}

	return fmt.Sprintf("%s:%d:%d: error: %s", se.File, se.Line, se.Column, se.Message)
}

// Location patterns in the order they are tried: the arrow marker of a code
// frame, the bracketed header of a fancy code frame, a stack entry and finally
// any bare `file:line:column`.
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`-->\s*(.+?):(\d+):(\d+)`),
	regexp.MustCompile(`╭─\[(.+?):(\d+):(\d+)\]`),
	regexp.MustCompile(`at\s+\(?(.+?\.(?:uts|ts|swift|kt)):(\d+):(\d+)\)?`),
	regexp.MustCompile(`(\S+\.(?:uts|ts|swift|kt)):(\d+):(\d+)`),
}

// messagePrefixes are stripped from the first line of the raw error.
var messagePrefixes = []string{"error:", "Error:", "SyntaxError:", "×"}

// ParseSyntaxError parses raw bundler error text.  The raw text itself is
// never kept: only the extracted location and the first meaningful line.
func ParseSyntaxError(raw, inputDir string) *SyntaxError {
	se := &SyntaxError{}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		file, ln, col, span, found := matchLocation(line)

		if se.Message == "" && !isLocationLine(line) && !isFrameLine(line) {
			msg := line
			// compiler style `file:line:col: error: message`
			if found && span[0] == 0 {
				msg = strings.TrimLeft(line[span[1]:], ": ")
			}

			se.Message = trimMessage(msg)
		}

		if se.File == "" && found {
			se.File, se.Line, se.Column = file, ln, col
		}

		if se.Message != "" && se.File != "" {
			break
		}
	}

	if se.Message == "" {
		se.Message = "unknown compile error"
	}

	if se.File != "" && inputDir != "" && filepath.IsAbs(se.File) {
		if rel, err := filepath.Rel(inputDir, se.File); err == nil && !strings.HasPrefix(rel, "..") {
			se.File = filepath.ToSlash(rel)
		}
	}

	return se
}

// matchLocation returns the first location found in line along with the byte
// span of the whole match.
func matchLocation(line string) (string, int, int, [2]int, bool) {
	for _, pattern := range locationPatterns {
		m := pattern.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}

		ln, err := strconv.Atoi(line[m[4]:m[5]])
		if err != nil {
			continue
		}

		col, err := strconv.Atoi(line[m[6]:m[7]])
		if err != nil {
			continue
		}

		return line[m[2]:m[3]], ln, col, [2]int{m[0], m[1]}, true
	}

	return "", 0, 0, [2]int{}, false
}

func isLocationLine(line string) bool {
	return strings.HasPrefix(line, "-->") || strings.HasPrefix(line, "at ") || strings.HasPrefix(line, "╭─[")
}

// isFrameLine matches the gutter lines of a code frame: `|`, `3 | code`
func isFrameLine(line string) bool {
	gutter := strings.IndexAny(line, "|│")
	if gutter == -1 {
		return false
	}

	return strings.Trim(line[:gutter], " 0123456789") == ""
}

func trimMessage(line string) string {
	for _, prefix := range messagePrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}

	return line
}
