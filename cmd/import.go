package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replay a JSON-lines attempt log",
		Long: "Replay a JSON-lines attempt log in order. Each line is an object with\n" +
			"item_id and correct, and optionally learner_id, response_time_ms and\n" +
			"answered_at (RFC 3339). Invalid lines are reported and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open attempt log: %w", err)
				}
				defer f.Close()
				r = f
			}

			return withSession(cmd, func(s *session) error {
				report, err := s.svc.ImportAttempts(cmd.Context(), r, s.learner)
				if report != nil {
					for _, le := range report.Rejected {
						fmt.Fprintln(cmd.ErrOrStderr(), "skipped", le)
					}
					s.out.line("Imported %d answers, skipped %d.", report.Applied, len(report.Rejected))
				}
				return err
			})
		},
	}
}
