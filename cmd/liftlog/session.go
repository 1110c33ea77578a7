package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/saveflow"
)

var finishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Move the session to the finish summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionOp("POST", "/session/finish", nil)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Return from the summary to live logging",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionOp("POST", "/session/resume", nil)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the finished workout",
	Long: `Save the finished workout. Only completed sets are persisted.

When the account is not signed in the save is deferred: the session stays
intact and completes automatically after sign-in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result saveflow.Result
		if err := newClient().do("POST", "/session/save", nil, &result); err != nil {
			return err
		}
		if result.AuthRequired {
			fmt.Printf("not signed in: save deferred, sign in at %s\n", result.RedirectTo)
			return nil
		}
		fmt.Printf("workout saved (%s)\n", result.WorkoutID)
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the session without saving",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().do("DELETE", "/session", nil, nil); err != nil {
			return err
		}
		fmt.Println("session discarded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(finishCmd, resumeCmd, saveCmd, discardCmd)
}
