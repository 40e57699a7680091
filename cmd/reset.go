package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/knowing/internal/store"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <item-id>",
		Short: "Reset an item's schedule so the next answer starts fresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				err := s.svc.Reset(cmd.Context(), s.learner, args[0])
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no progress recorded for %s", args[0])
				}
				if err != nil {
					return err
				}
				s.out.line("Reset %s for %s.", args[0], s.learner)
				return nil
			})
		},
	}
}
