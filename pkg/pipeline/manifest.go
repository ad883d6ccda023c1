// Package pipeline is the host-graph adapter: it loads build rules from a
// YAML manifest, constructs graph nodes for their artifacts, and drives the
// core (render -> content-address -> dependency propagation -> submit) one
// rule at a time.
package pipeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/macadam-build/macadam/pkg/engine"
)

// Rule is one unit of work: declared target artifacts, source dependencies,
// and the command templates that build the targets.
//
// Target paths ending in "/" declare directory artifacts; all others are
// files. Relative paths resolve against the manifest's directory.
type Rule struct {
	Name        string            `yaml:"name"`
	Targets     []string          `yaml:"targets"`
	Sources     []string          `yaml:"sources"`
	SourceGlobs []string          `yaml:"source_globs"`
	Commands    []string          `yaml:"commands"`
	Script      string            `yaml:"script"`
	AuxDeps     []string          `yaml:"aux_deps"`
	WorkingDir  string            `yaml:"working_dir"`
	Params      map[string]string `yaml:"params"`
	Variables   map[string]string `yaml:"variables"`
}

// Manifest is a pipeline file: an ordered list of rules plus build-wide
// substitution variables.
type Manifest struct {
	Variables map[string]string `yaml:"variables"`
	Rules     []Rule            `yaml:"rules"`
}

// Load reads and validates a pipeline manifest.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a manifest from raw YAML. Unknown
// fields are rejected.
func LoadFromBytes(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest file is empty")
	}

	var m Manifest
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural requirements before any rule runs.
func (m *Manifest) Validate() error {
	if len(m.Rules) == 0 {
		return fmt.Errorf("manifest declares no rules")
	}

	seen := make(map[string]struct{}, len(m.Rules))
	for i, r := range m.Rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate rule name %q", name)
		}
		seen[name] = struct{}{}

		if len(r.Targets) == 0 {
			return fmt.Errorf("rule %q declares no targets", name)
		}
		for _, t := range r.Targets {
			if strings.TrimSpace(strings.TrimSuffix(t, "/")) == "" {
				return fmt.Errorf("rule %q has an empty target path", name)
			}
		}
		if len(r.Commands) == 0 {
			return fmt.Errorf("rule %q declares no commands", name)
		}
		for pname := range r.Params {
			if !engine.Recognized(pname) {
				return fmt.Errorf("rule %q: unrecognized engine parameter %q", name, pname)
			}
		}
	}
	return nil
}
