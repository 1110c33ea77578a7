package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	apiKey    string
)

var rootCmd = &cobra.Command{
	Use:   "liftlog",
	Short: "LiftLog - log workouts against the session daemon",
	Long: `LiftLog drives an active workout session held by the liftlogd daemon.

It allows you to:
  - Start a session from a workout plan
  - Mark sets complete and edit reps/weights mid-workout
  - Skip or extend the rest countdown
  - Finish, save, or discard the workout
  - Watch the session live in the terminal`,
}

func main() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("LIFTLOG_SERVER", "http://127.0.0.1:8484"), "liftlogd base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("LIFTLOG_API_KEY"), "API key, when the daemon requires one")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
