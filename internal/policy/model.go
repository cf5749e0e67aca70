package policy

import "fmt"

// RuleSet is the per-tool-family classification policy. RuleSets are
// loaded once at startup and treated as read-only for the process
// lifetime.
type RuleSet struct {
	Version     int    `yaml:"version"`
	Family      string `yaml:"family"`
	Description string `yaml:"description,omitempty"`

	// Aliases are the invocation names that identify this tool in a
	// command line (the real binary plus wrapper scripts in PATH).
	// Shell aliases don't survive into subprocess calls, so they can't
	// bypass matching anyway.
	Aliases []string `yaml:"aliases"`

	// DenyRules are evaluated in order; the first match wins.
	DenyRules []DenyRule `yaml:"deny_rules"`

	// Keywords feed the indirection heuristic: a command that mentions
	// one of these outside sub-command position could be smuggling a
	// denied operation through variables or eval. Defaults to the
	// deny-rule sub-commands when empty.
	Keywords []string `yaml:"keywords,omitempty"`

	// DenyGuidance is appended to every deny reason, pointing the
	// operator at the sanctioned workflow (PR review, GitOps, ...).
	DenyGuidance string `yaml:"deny_guidance,omitempty"`

	// AskGuidance is appended to the default approval prompt.
	AskGuidance string `yaml:"ask_guidance,omitempty"`
}

// DenyRule forbids one sub-command of the tool. Subcommand is matched
// case-insensitively as the token immediately following the invocation
// (global flags skipped). Args, when present, are glob patterns the
// token after the sub-command must match (e.g. "state" + rm/mv/push/pull).
type DenyRule struct {
	Name       string   `yaml:"name"`
	Subcommand string   `yaml:"subcommand"`
	Args       []string `yaml:"args,omitempty"`
	Message    string   `yaml:"message,omitempty"`
}

// Validate performs minimal semantic validation of a ruleset.
func (r *RuleSet) Validate() error {
	if r.Version <= 0 {
		return fmt.Errorf("version must be > 0")
	}
	if r.Family == "" {
		return fmt.Errorf("family is required")
	}
	if len(r.Aliases) == 0 {
		return fmt.Errorf("ruleset %q: at least one alias is required", r.Family)
	}
	for i, d := range r.DenyRules {
		if d.Name == "" {
			return fmt.Errorf("ruleset %q: deny rule %d has no name", r.Family, i)
		}
		if d.Subcommand == "" {
			return fmt.Errorf("ruleset %q: deny rule %q has no subcommand", r.Family, d.Name)
		}
	}
	return nil
}

// IndirectionKeywords returns the configured keywords, falling back to
// the deny-rule sub-commands.
func (r *RuleSet) IndirectionKeywords() []string {
	if len(r.Keywords) > 0 {
		return r.Keywords
	}
	seen := make(map[string]struct{}, len(r.DenyRules))
	var out []string
	for _, d := range r.DenyRules {
		if _, ok := seen[d.Subcommand]; ok {
			continue
		}
		seen[d.Subcommand] = struct{}{}
		out = append(out, d.Subcommand)
	}
	return out
}
