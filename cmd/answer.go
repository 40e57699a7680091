package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowing/internal/review"
)

func newAnswerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "answer <item-id>",
		Short: "Record an answer and schedule the item's next review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			correct, _ := cmd.Flags().GetBool("correct")
			rt, _ := cmd.Flags().GetDuration("response-time")

			return withSession(cmd, func(s *session) error {
				a := review.Attempt{
					LearnerID: s.learner,
					ItemID:    args[0],
					Correct:   correct,
				}
				if cmd.Flags().Changed("response-time") {
					a.ResponseTime = &rt
				}

				res, err := s.svc.RecordAttempt(cmd.Context(), a)
				if err != nil {
					return err
				}

				s.out.title("%s: %s", res.ItemID, s.out.outcome(correct))
				s.out.state(res.After, s.svc.Now())
				s.out.field("answers", formatCounts(res.CorrectCount, res.IncorrectCount))
				return nil
			})
		},
	}

	cmd.Flags().Bool("correct", false, "The answer was correct")
	cmd.Flags().Bool("incorrect", false, "The answer was incorrect")
	cmd.Flags().Duration("response-time", time.Duration(0), "How long the answer took (recorded, not used for scheduling)")
	cmd.MarkFlagsMutuallyExclusive("correct", "incorrect")
	cmd.MarkFlagsOneRequired("correct", "incorrect")
	return cmd
}
