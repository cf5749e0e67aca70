package policy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a single ruleset file.
func Load(path string) (*RuleSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("parse ruleset %s: %w", path, err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("validate ruleset %s: %w", path, err)
	}
	return &rs, nil
}

// LoadDir loads every *.yaml / *.yml ruleset under dir, keyed by tool
// family. Duplicate families are an error rather than a silent override.
func LoadDir(dir string) (map[string]*RuleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read ruleset dir: %w", err)
	}

	sets := make(map[string]*RuleSet)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		rs, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := sets[rs.Family]; dup {
			return nil, fmt.Errorf("duplicate ruleset for family %q", rs.Family)
		}
		sets[rs.Family] = rs
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no rulesets found in %q", dir)
	}
	return sets, nil
}

// Families returns the family names of a ruleset map in sorted order,
// so classification and audit output are deterministic.
func Families(sets map[string]*RuleSet) []string {
	out := make([]string, 0, len(sets))
	for f := range sets {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
