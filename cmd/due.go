package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List items due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			return withSession(cmd, func(s *session) error {
				items, err := s.svc.Due(cmd.Context(), s.learner, limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					s.out.line("Nothing due for %s.", s.learner)
					return nil
				}

				now := s.svc.Now()
				s.out.title("%-32s  %-9s  %-16s  %s", "ITEM", "STATUS", "DUE SINCE", "INTERVAL")
				for _, it := range items {
					status := it.State.Status(now)
					s.out.line("%-32s  %s  %-16s  %s",
						it.ItemID,
						s.out.status(status)+padding(string(status), 9),
						formatTime(it.State.NextReviewAt),
						pluralDays(it.State.IntervalDays))
				}
				s.out.line("\n%d due", len(items))
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum number of items to list (0 = all)")
	return cmd
}

// padding returns the spaces needed to widen s to width. Styled text can't
// be padded with %-Ns because of its escape codes.
func padding(s string, width int) string {
	if n := width - len(s); n > 0 {
		return fmt.Sprintf("%*s", n, "")
	}
	return ""
}
