package skills

import (
	"fmt"
	"path/filepath"
	"regexp"
)

const (
	maxNameLen        = 64
	maxDescriptionLen = 1024
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate applies every field-level rule to a parsed manifest and returns
// the complete list of violations in fixed rule order, so callers can show
// all problems at once. A nil return means the manifest is valid. parseErr
// is the error from ParseManifest, if any; when set it is the sole reason,
// since no field rule can be evaluated without a manifest.
func Validate(m *Manifest, parseErr error, dir string) []string {
	if parseErr != nil {
		return []string{fmt.Sprintf("manifest: %s", parseErr)}
	}
	if m == nil {
		return []string{"manifest: not parsed"}
	}

	var reasons []string

	switch {
	case m.Name == "":
		reasons = append(reasons, "name: required")
	case !namePattern.MatchString(m.Name):
		reasons = append(reasons, "name: must be lowercase words separated by single hyphens")
	case len(m.Name) > maxNameLen:
		reasons = append(reasons, fmt.Sprintf("name: %d chars exceeds limit of %d", len(m.Name), maxNameLen))
	}

	if m.Name != "" {
		if base := filepath.Base(dir); m.Name != base {
			reasons = append(reasons, fmt.Sprintf("name: %q does not match directory %q", m.Name, base))
		}
	}

	switch {
	case m.Description == "":
		reasons = append(reasons, "description: required")
	case len(m.Description) > maxDescriptionLen:
		reasons = append(reasons, fmt.Sprintf("description: %d chars exceeds limit of %d", len(m.Description), maxDescriptionLen))
	}

	seen := make(map[string]bool, len(m.AllowedTools))
	for i, tool := range m.AllowedTools {
		if tool == "" {
			reasons = append(reasons, fmt.Sprintf("allowed-tools: empty entry at position %d", i))
			continue
		}
		if seen[tool] {
			reasons = append(reasons, fmt.Sprintf("allowed-tools: duplicate entry %q", tool))
		}
		seen[tool] = true
	}

	return reasons
}
