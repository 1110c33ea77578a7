package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Control the rest countdown",
}

var restSkipCmd = &cobra.Command{
	Use:   "skip",
	Short: "Skip the running rest countdown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionOp("POST", "/session/rest/skip", nil)
	},
}

var restExtendCmd = &cobra.Command{
	Use:   "extend SECONDS",
	Short: "Add time to the running rest countdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(args[0])
		if err != nil || seconds <= 0 {
			return fmt.Errorf("bad seconds %q", args[0])
		}
		return sessionOp("POST", "/session/rest/extend", map[string]int{"seconds": seconds})
	},
}

func init() {
	restCmd.AddCommand(restSkipCmd, restExtendCmd)
	rootCmd.AddCommand(restCmd)
}
