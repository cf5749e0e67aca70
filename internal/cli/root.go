// Package cli wires the cmdgate commands: the hook protocol entry
// points plus operator tooling for ad-hoc checks, ruleset inspection,
// and audit review.
package cli

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdgate/cmdgate/internal/audit"
	"github.com/cmdgate/cmdgate/internal/config"
	"github.com/cmdgate/cmdgate/internal/hook"
	"github.com/cmdgate/cmdgate/internal/policy"
)

func NewRoot(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "cmdgate",
		Short:         "cmdgate: command-safety classification and audit engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.SetVersionTemplate("cmdgate {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", getenvDefault("CMDGATE_CONFIG", ""), "Path to cmdgate.yaml")
	cmd.PersistentFlags().StringVar(&opts.auditDir, "audit-dir", "", "Audit log directory (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.rulesDir, "rules-dir", "", "Ruleset directory (empty = builtin rulesets)")

	cmd.AddCommand(newHookCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newRulesCmd(opts))
	cmd.AddCommand(newAuditCmd(opts))

	return cmd
}

type rootOptions struct {
	configPath string
	auditDir   string
	rulesDir   string
}

// setup is everything a command needs: resolved config, compiled
// engines, the recorder, and a stderr logger (stdout belongs to the
// protocol).
type setup struct {
	cfg      config.Config
	engines  hook.Engines
	recorder *audit.Recorder
	log      *slog.Logger
}

func (o *rootOptions) buildSetup() (*setup, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}
	if o.auditDir != "" {
		cfg.AuditDir = o.auditDir
	}
	if o.rulesDir != "" {
		cfg.RulesDir = o.rulesDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sets := policy.Builtin()
	if cfg.RulesDir != "" {
		sets, err = policy.LoadDir(cfg.RulesDir)
		if err != nil {
			return nil, err
		}
	}
	engines, err := hook.BuildEngines(sets)
	if err != nil {
		return nil, err
	}

	return &setup{
		cfg:      cfg,
		engines:  engines,
		recorder: audit.NewRecorder(cfg.AuditDir),
		log:      slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(v)
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
