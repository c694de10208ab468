package skills

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseErrorKind names the structural defect found in an entry file.
type ParseErrorKind string

const (
	// ErrNoOpeningDelimiter means the file does not start with a `---` line.
	ErrNoOpeningDelimiter ParseErrorKind = "no-opening-delimiter"
	// ErrNoClosingDelimiter means the frontmatter block is never terminated.
	ErrNoClosingDelimiter ParseErrorKind = "no-closing-delimiter"
	// ErrMalformedLine means a line inside the block is not a key-value pair.
	ErrMalformedLine ParseErrorKind = "malformed-line"
)

// ParseError reports a malformed frontmatter block. Line is 1-based and
// only meaningful for ErrMalformedLine.
type ParseError struct {
	Kind ParseErrorKind
	Line int
}

func (e *ParseError) Error() string {
	if e.Kind == ErrMalformedLine {
		return fmt.Sprintf("%s: %d", e.Kind, e.Line)
	}
	return string(e.Kind)
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// ParseManifest extracts and decodes the frontmatter block from the raw
// bytes of an entry file. It is a pure function: field semantics (name
// pattern, lengths, directory match) are the validator's job, and the
// markdown body after the block is ignored entirely.
func ParseManifest(raw []byte) (*Manifest, error) {
	lines := strings.Split(string(raw), "\n")
	if len(lines) == 0 || !isDelimiter(lines[0]) {
		return nil, &ParseError{Kind: ErrNoOpeningDelimiter}
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, &ParseError{Kind: ErrNoClosingDelimiter}
	}

	block := lines[1:end]
	for i, line := range block {
		if !wellFormedLine(line) {
			return nil, &ParseError{Kind: ErrMalformedLine, Line: i + 2}
		}
	}

	var m Manifest
	if err := yaml.Unmarshal([]byte(strings.Join(block, "\n")), &m); err != nil {
		// The line scan only checks shape; yaml may still reject a line
		// (bad indentation, tab characters). Map it back to a file line.
		return nil, &ParseError{Kind: ErrMalformedLine, Line: yamlErrorLine(err)}
	}

	return &m, nil
}

// isDelimiter reports whether the line is exactly `---`, tolerating a
// trailing carriage return from CRLF files.
func isDelimiter(line string) bool {
	return strings.TrimRight(line, "\r") == "---"
}

// wellFormedLine accepts the restricted key-value shape allowed inside the
// block: blank lines, comments, `key: value` pairs, and the continuation
// forms yaml needs for list values (indented lines and `- item` entries).
func wellFormedLine(line string) bool {
	trimmed := strings.TrimRight(line, "\r")
	if strings.TrimSpace(trimmed) == "" {
		return true
	}
	if strings.HasPrefix(trimmed, " ") || strings.HasPrefix(trimmed, "\t") {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
		return true
	}
	if strings.HasPrefix(trimmed, "- ") || trimmed == "-" {
		return true
	}
	return strings.Contains(trimmed, ":")
}

// yamlErrorLine recovers the offending file line from a yaml error message.
// yaml line numbers are relative to the block, which starts at file line 2.
func yamlErrorLine(err error) int {
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		if n, convErr := strconv.Atoi(m[1]); convErr == nil {
			return n + 1
		}
	}
	return 2
}
