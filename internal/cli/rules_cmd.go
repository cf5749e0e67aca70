package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRulesCmd(opts *rootOptions) *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the loaded rulesets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}

			families := s.engines.Families()
			if family != "" {
				if _, ok := s.engines[family]; !ok {
					return fmt.Errorf("no ruleset for family %q (configured: %v)", family, families)
				}
				families = []string{family}
			}

			for i, fam := range families {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "---")
				}
				b, err := yaml.Marshal(s.engines[fam].RuleSet())
				if err != nil {
					return fmt.Errorf("marshal ruleset %q: %w", fam, err)
				}
				if _, err := cmd.OutOrStdout().Write(b); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "Show only one tool family")
	return cmd
}
