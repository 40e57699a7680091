package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <item-id>",
		Short: "Show recent answers for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			return withSession(cmd, func(s *session) error {
				events, err := s.svc.History(cmd.Context(), s.learner, args[0], limit)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					s.out.line("No answers recorded for %s.", args[0])
					return nil
				}

				s.out.title("%s", args[0])
				for _, ev := range events {
					rt := ""
					if ev.ResponseTime != nil {
						rt = fmt.Sprintf("  in %s", *ev.ResponseTime)
					}
					s.out.line("  #%-5d %s  %s%s  interval %d -> %d, ease %.2f -> %.2f",
						ev.Sequence,
						formatTime(ev.AnsweredAt),
						s.out.outcome(ev.Correct)+padding(outcomeText(ev.Correct), 9),
						rt,
						ev.IntervalBefore, ev.IntervalAfter,
						ev.EaseBefore, ev.EaseAfter)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of answers to show (0 = all)")
	return cmd
}

func outcomeText(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
