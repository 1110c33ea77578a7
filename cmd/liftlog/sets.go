package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete EXERCISE SET",
	Short: "Mark a set completed",
	Long: `Mark a set completed. Indexes are zero-based, matching liftlog status
row order. Completing a set starts the exercise's rest countdown unless it
was the last remaining set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, set, err := parseIndexes(args)
		if err != nil {
			return err
		}
		return sessionOp("POST", fmt.Sprintf("/session/exercises/%d/sets/%d/complete", exercise, set), nil)
	},
}

var uncompleteCmd = &cobra.Command{
	Use:   "uncomplete EXERCISE SET",
	Short: "Clear a set's completion mark",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, set, err := parseIndexes(args)
		if err != nil {
			return err
		}
		return sessionOp("POST", fmt.Sprintf("/session/exercises/%d/sets/%d/uncomplete", exercise, set), nil)
	},
}

var (
	setReps   int
	setWeight float64
)

var setCmd = &cobra.Command{
	Use:   "set EXERCISE SET",
	Short: "Edit a set's reps and/or weight",
	Long: `Edit a set's actual reps and/or weight.

Examples:
  liftlog set 0 1 --reps 10
  liftlog set 0 1 --reps 8 --weight 62.5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, set, err := parseIndexes(args)
		if err != nil {
			return err
		}
		body := map[string]any{}
		if cmd.Flags().Changed("reps") {
			body["reps"] = setReps
		}
		if cmd.Flags().Changed("weight") {
			body["weight"] = setWeight
		}
		if len(body) == 0 {
			return fmt.Errorf("pass --reps and/or --weight")
		}
		return sessionOp("PUT", fmt.Sprintf("/session/exercises/%d/sets/%d", exercise, set), body)
	},
}

var addSetCmd = &cobra.Command{
	Use:   "add-set EXERCISE",
	Short: "Append a set to an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return sessionOp("POST", fmt.Sprintf("/session/exercises/%d/sets", exercise), nil)
	},
}

var removeSetCmd = &cobra.Command{
	Use:   "remove-set EXERCISE SET",
	Short: "Remove a set from an exercise",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		exercise, set, err := parseIndexes(args)
		if err != nil {
			return err
		}
		return sessionOp("DELETE", fmt.Sprintf("/session/exercises/%d/sets/%d", exercise, set), nil)
	},
}

func init() {
	setCmd.Flags().IntVar(&setReps, "reps", 0, "actual reps")
	setCmd.Flags().Float64Var(&setWeight, "weight", 0, "actual weight")
	rootCmd.AddCommand(completeCmd, uncompleteCmd, setCmd, addSetCmd, removeSetCmd)
}

func parseIndex(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad index %q", s)
	}
	return v, nil
}

func parseIndexes(args []string) (int, int, error) {
	exercise, err := parseIndex(args[0])
	if err != nil {
		return 0, 0, err
	}
	set, err := parseIndex(args[1])
	if err != nil {
		return 0, 0, err
	}
	return exercise, set, nil
}
