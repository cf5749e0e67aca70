package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmdgate/cmdgate/internal/hook"
	"github.com/cmdgate/cmdgate/internal/policy"
	"github.com/cmdgate/cmdgate/pkg/types"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var family string
	var cwd string

	cmd := &cobra.Command{
		Use:   "check [flags] -- COMMAND...",
		Short: "Classify a command without the hook protocol",
		Long: `Classifies a command exactly as the pre-execution hook would, but
takes the command from the arguments, writes no audit records, and
prints a human-readable summary. Exit code mirrors hook semantics
(2 when the command would be denied).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}
			if cwd == "" {
				if cwd, err = os.Getwd(); err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
			}

			engines := s.engines.FilterFamily(family, s.log)
			req := policy.Request{Command: strings.Join(args, " "), WorkingDir: cwd}

			best := policy.Result{Decision: types.DecisionAllow, Reason: "no configured tool referenced"}
			for _, fam := range engines.Families() {
				res := engines[fam].Classify(req)
				if res.Decision.Restrictiveness() > best.Decision.Restrictiveness() {
					best = res
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "decision: %s\n", best.Decision)
			if best.Rule != "" {
				fmt.Fprintf(w, "rule:     %s\n", best.Rule)
			}
			if best.Reason != "" {
				fmt.Fprintf(w, "reason:   %s\n", indentContinuation(best.Reason))
			}

			if best.Decision == types.DecisionDeny {
				return &ExitError{code: hook.ExitBlocked}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "Restrict to one tool family")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory to report (default: current)")
	return cmd
}

// indentContinuation keeps multi-line reasons aligned under the label.
func indentContinuation(s string) string {
	return strings.ReplaceAll(s, "\n", "\n          ")
}
