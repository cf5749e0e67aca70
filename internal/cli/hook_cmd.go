package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cmdgate/cmdgate/internal/hook"
	"github.com/cmdgate/cmdgate/internal/sandbox"
)

func newHookCmd(opts *rootOptions) *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook protocol entry points (one JSON request on stdin)",
	}
	cmd.PersistentFlags().StringVar(&family, "family", "", "Restrict to one tool family (default: all configured)")

	pre := &cobra.Command{
		Use:   "pre",
		Short: "Classify a candidate command before execution",
		Long: `Reads one PreToolUse request from stdin, classifies the command
against the configured rulesets, writes the decision-time audit record,
and prints the permission decision as JSON on stdout.

Exit codes: 0 for allow/ask (the decision is in the JSON body), 2 for
deny, 1 for malformed input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}
			in, err := hook.Decode(cmd.InOrStdin())
			if err != nil {
				return asExit(err)
			}
			engines := s.engines.FilterFamily(family, s.log)
			env := sandbox.Detect(s.cfg.IsolatedEnvVar)
			return writeOutcome(cmd, hook.RunPre(in, engines, s.recorder, env, s.log))
		},
	}

	post := &cobra.Command{
		Use:   "post",
		Short: "Record a gated command's completion status",
		Long: `Reads one PostToolUse request from stdin and appends the
COMPLETED_SUCCESS or COMPLETED_FAILURE audit record. Always exits 0 on
valid input: logging never blocks the workflow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}
			in, err := hook.Decode(cmd.InOrStdin())
			if err != nil {
				return asExit(err)
			}
			engines := s.engines.FilterFamily(family, s.log)
			return writeOutcome(cmd, hook.RunPost(in, engines, s.recorder, s.log))
		},
	}

	cmd.AddCommand(pre)
	cmd.AddCommand(post)
	return cmd
}

// writeOutcome prints the hook's JSON body (if any) and converts a
// non-zero exit into an ExitError with no extra message: the reason
// already travels in the body.
func writeOutcome(cmd *cobra.Command, out hook.Outcome) error {
	if out.Output != nil {
		if err := printJSON(cmd, out.Output); err != nil {
			return err
		}
	}
	if out.ExitCode != 0 {
		return &ExitError{code: out.ExitCode}
	}
	return nil
}

// asExit maps input-validation failures to exit code 1 with the
// validation message on stderr.
func asExit(err error) error {
	var ve *hook.ValidationError
	if errors.As(err, &ve) {
		return &ExitError{code: hook.ExitInvalid, message: ve.Error()}
	}
	return err
}
