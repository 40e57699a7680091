package cmd

import (
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show the review schedule for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				st, err := s.svc.State(cmd.Context(), s.learner, args[0])
				if err != nil {
					return err
				}

				if !st.Exists {
					s.out.title("%s: not attempted yet", st.ItemID)
					s.out.line("  first answer starts from ease %.2f, interval %s", st.State.EaseFactor, pluralDays(st.State.IntervalDays))
					return nil
				}

				s.out.title("%s", st.ItemID)
				s.out.state(st.State, s.svc.Now())
				s.out.field("answers", formatCounts(st.CorrectCount, st.IncorrectCount))
				s.out.field("last reviewed", formatTime(st.LastReviewedAt))
				return nil
			})
		},
	}
}
