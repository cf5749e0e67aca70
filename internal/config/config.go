// Package config holds the engine's static configuration: where audit
// partitions live, where (if anywhere) ruleset files are loaded from,
// and which environment variable signals the isolated environment.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cmdgate/cmdgate/internal/sandbox"
)

// Environment variables consulted when flags and config file are silent.
const (
	EnvAuditDir   = "CMDGATE_AUDIT_DIR"
	EnvRulesDir   = "CMDGATE_RULES_DIR"
	EnvProjectDir = "CLAUDE_PROJECT_DIR"
)

type Config struct {
	// AuditDir is the fixed directory for append-only audit partitions.
	AuditDir string `yaml:"audit_dir"`

	// RulesDir holds per-family ruleset YAML files. Empty means the
	// builtin terraform and helm rulesets.
	RulesDir string `yaml:"rules_dir"`

	// IsolatedEnvVar overrides the environment variable checked by
	// sandbox detection.
	IsolatedEnvVar string `yaml:"isolated_env_var"`
}

// Default resolves the configuration from environment variables. The
// audit directory follows the host runtime's project layout:
// $CLAUDE_PROJECT_DIR/.claude/audit, falling back to the working
// directory.
func Default() Config {
	auditDir := os.Getenv(EnvAuditDir)
	if auditDir == "" {
		project := os.Getenv(EnvProjectDir)
		if project == "" {
			project = "."
		}
		auditDir = filepath.Join(project, ".claude", "audit")
	}
	return Config{
		AuditDir:       auditDir,
		RulesDir:       os.Getenv(EnvRulesDir),
		IsolatedEnvVar: sandbox.DefaultEnvVar,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// Unknown fields are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	var file Config
	if err := dec.Decode(&file); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.AuditDir != "" {
		cfg.AuditDir = file.AuditDir
	}
	if file.RulesDir != "" {
		cfg.RulesDir = file.RulesDir
	}
	if file.IsolatedEnvVar != "" {
		cfg.IsolatedEnvVar = file.IsolatedEnvVar
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	if c.AuditDir == "" {
		return fmt.Errorf("audit_dir is required")
	}
	return nil
}
