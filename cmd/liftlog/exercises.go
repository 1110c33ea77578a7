package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addExerciseRest int

var addExerciseCmd = &cobra.Command{
	Use:   "add-exercise NAME",
	Short: "Append an exercise to the session",
	Long: `Append an exercise to the session. It starts with one default set.

Examples:
  liftlog add-exercise "Lateral Raise" --rest 45`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var created struct {
			ID string `json:"id"`
		}
		body := map[string]any{"name": args[0], "rest_seconds": addExerciseRest}
		if err := newClient().do("POST", "/session/exercises", body, &created); err != nil {
			return err
		}
		fmt.Printf("added %q (%s)\n", args[0], created.ID)
		return nil
	},
}

var removeExerciseCmd = &cobra.Command{
	Use:   "remove-exercise EXERCISE",
	Short: "Remove an exercise from the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return sessionOp("DELETE", fmt.Sprintf("/session/exercises/%d", exercise), nil)
	},
}

var renameExerciseCmd = &cobra.Command{
	Use:   "rename-exercise EXERCISE NAME",
	Short: "Rename an exercise",
	Long: `Rename an exercise. When the daemon can reach the workout history it
attaches the previous performance for the new name as a hint.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return sessionOp("PUT", fmt.Sprintf("/session/exercises/%d", exercise), map[string]string{"name": args[1]})
	},
}

func init() {
	addExerciseCmd.Flags().IntVar(&addExerciseRest, "rest", 0, "rest seconds after each completed set")
	rootCmd.AddCommand(addExerciseCmd, removeExerciseCmd, renameExerciseCmd)
}
