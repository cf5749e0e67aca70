package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cmdgate/cmdgate/internal/audit"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the append-only audit log",
	}
	cmd.AddCommand(newAuditListCmd(opts))
	cmd.AddCommand(newAuditShowCmd(opts))
	return cmd
}

func newAuditListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List audit partitions (one file per family per UTC day)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}
			parts, err := audit.List(s.cfg.AuditDir)
			if err != nil {
				return err
			}
			if len(parts) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no audit partitions in %s\n", s.cfg.AuditDir)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FAMILY\tDATE\tPATH")
			for _, p := range parts {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Family, p.Date, p.Path)
			}
			return tw.Flush()
		},
	}
}

func newAuditShowCmd(opts *rootOptions) *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "show PARTITION",
		Short: "Print the records of one partition as JSON lines",
		Long: `PARTITION is either a file name under the audit directory
(terraform-2026-08-29.log) or a path to a partition file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.buildSetup()
			if err != nil {
				return err
			}

			path := args[0]
			if !strings.ContainsRune(path, filepath.Separator) {
				path = filepath.Join(s.cfg.AuditDir, path)
			}

			records, err := audit.Tail(path, tail)
			if err != nil {
				return err
			}
			for _, rec := range records {
				if err := printJSON(cmd, rec); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "Show only the last N records")
	return cmd
}
