package cmd

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "knowing",
		Short: "Spaced-repetition review scheduler",
		Long: "knowing records answers to study questions and schedules each question's next review\n" +
			"with an SM-2 style policy: intervals grow after correct answers and reset after a miss.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("db", "", "Path to SQLite database file (overrides KNOWING_DB env var)")
	root.PersistentFlags().String("learner", "", "Learner id (overrides KNOWING_LEARNER env var)")

	root.AddCommand(
		newAnswerCmd(),
		newShowCmd(),
		newDueCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newResetCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
