// Package skills implements discovery and validation of skill bundles.
// A bundle is a directory containing a SKILL.md entry file with YAML
// frontmatter describing the skill, plus optional resources/, templates/
// and scripts/ subdirectories. Discovery produces one Summary per bundle
// directory; only the manifest metadata is read eagerly, file contents
// under the optional subdirectories are left on disk until an install or
// package operation needs them.
package skills

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EntryFileName is the manifest entry file every bundle must contain.
const EntryFileName = "SKILL.md"

// Manifest is the parsed frontmatter of a bundle's entry file.
type Manifest struct {
	Name                   string   `yaml:"name"`
	Description            string   `yaml:"description"`
	AllowedTools           ToolList `yaml:"allowed-tools"`
	DisableModelInvocation bool     `yaml:"disable-model-invocation"`
	Version                string   `yaml:"version"`
}

// ToolList is an ordered list of capability names. In frontmatter it may
// be written either as a YAML sequence or as a single comma-separated
// scalar; both forms appear in published skills.
type ToolList []string

// UnmarshalYAML accepts both the sequence and comma-separated scalar forms.
func (t *ToolList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*t = items
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		var items []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		*t = items
	default:
		return errors.Errorf("allowed-tools: unexpected yaml node kind %d", value.Kind)
	}
	return nil
}

// Status classifies a discovered bundle directory.
type Status string

const (
	// StatusValid means the entry file parsed and every validation rule passed.
	StatusValid Status = "valid"
	// StatusInvalid means the entry file exists but parsing or validation failed.
	StatusInvalid Status = "invalid"
	// StatusMissing means the directory has no entry file at all.
	StatusMissing Status = "missing"
)

// Summary describes one bundle directory found by a scan. Summaries are
// immutable; a re-scan produces a fresh slice rather than mutating old ones.
type Summary struct {
	ID       string    // directory basename
	Path     string    // absolute path to the bundle directory
	Manifest *Manifest // nil when the entry file is missing or unparseable
	Status   Status
	Reasons  []string // validation failures in rule order; nil when valid

	// Relative paths (forward-slash) beneath the optional subdirectories,
	// sorted. Paths only: no file under them is read during discovery.
	Resources []string
	Templates []string
	Scripts   []string
}
