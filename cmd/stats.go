package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				sum, err := s.svc.Summary(cmd.Context(), s.learner)
				if err != nil {
					return err
				}

				s.out.title("Progress for %s", s.learner)
				s.out.field("items studied", fmt.Sprintf("%d", sum.ItemsStudied))
				s.out.field("due now", fmt.Sprintf("%d", sum.Due))
				s.out.field("answers", formatCounts(sum.TotalCorrect, sum.TotalIncorrect))
				s.out.field("accuracy", fmt.Sprintf("%s %.1f%%", s.out.bar(sum.Accuracy/100), sum.Accuracy))
				return nil
			})
		},
	}
}

func formatCounts(correct, incorrect int) string {
	return fmt.Sprintf("%d correct, %d incorrect", correct, incorrect)
}
