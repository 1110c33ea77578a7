package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claude/liftlog/internal/session"
)

var (
	startType      string
	startPlanFile  string
	startExercises []string
)

var startCmd = &cobra.Command{
	Use:   "start NAME",
	Short: "Start a workout session",
	Long: `Start a new workout session.

Exercises come from repeated --exercise flags or from a JSON plan file.
The --exercise format is NAME[:REST_SECONDS[:SETSxREPS[@WEIGHT]]].

Examples:
  # Quick session, default sets
  liftlog start "Push Day" -e "Bench Press:90:3x8@60" -e "Overhead Press:60"

  # From a saved plan
  liftlog start "Leg Day" --plan legday.json`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startType, "type", "strength", "workout type")
	startCmd.Flags().StringVar(&startPlanFile, "plan", "", "JSON file with an exercise plan")
	startCmd.Flags().StringArrayVarP(&startExercises, "exercise", "e", nil, "exercise spec NAME[:REST[:SETSxREPS[@WEIGHT]]]")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := session.StartConfig{
		WorkoutName: args[0],
		Type:        startType,
	}

	switch {
	case startPlanFile != "":
		data, err := os.ReadFile(startPlanFile)
		if err != nil {
			return fmt.Errorf("reading plan: %w", err)
		}
		if err := json.Unmarshal(data, &cfg.Exercises); err != nil {
			return fmt.Errorf("parsing plan: %w", err)
		}
	case len(startExercises) > 0:
		for _, spec := range startExercises {
			ex, err := parseExerciseSpec(spec)
			if err != nil {
				return err
			}
			cfg.Exercises = append(cfg.Exercises, ex)
		}
	default:
		return fmt.Errorf("pass --exercise or --plan")
	}

	return sessionOp("POST", "/session", cfg)
}

// parseExerciseSpec parses NAME[:REST_SECONDS[:SETSxREPS[@WEIGHT]]].
func parseExerciseSpec(spec string) (session.ExerciseConfig, error) {
	parts := strings.SplitN(spec, ":", 3)
	ex := session.ExerciseConfig{Name: parts[0]}
	if ex.Name == "" {
		return ex, fmt.Errorf("exercise spec %q: empty name", spec)
	}

	if len(parts) >= 2 {
		rest, err := strconv.Atoi(parts[1])
		if err != nil || rest < 0 {
			return ex, fmt.Errorf("exercise spec %q: bad rest seconds %q", spec, parts[1])
		}
		ex.RestSeconds = rest
	}

	if len(parts) == 3 {
		sets, err := parseSetsSpec(parts[2])
		if err != nil {
			return ex, fmt.Errorf("exercise spec %q: %w", spec, err)
		}
		ex.Sets = sets
	}
	return ex, nil
}

// parseSetsSpec parses SETSxREPS[@WEIGHT], e.g. "3x8@60".
func parseSetsSpec(spec string) ([]session.SetConfig, error) {
	withWeight := strings.SplitN(spec, "@", 2)
	dims := strings.SplitN(withWeight[0], "x", 2)
	if len(dims) != 2 {
		return nil, fmt.Errorf("bad sets spec %q, want SETSxREPS[@WEIGHT]", spec)
	}

	count, err := strconv.Atoi(dims[0])
	if err != nil || count < 1 {
		return nil, fmt.Errorf("bad set count %q", dims[0])
	}
	reps, err := strconv.Atoi(dims[1])
	if err != nil || reps < 1 {
		return nil, fmt.Errorf("bad rep count %q", dims[1])
	}

	var weight float64
	if len(withWeight) == 2 {
		weight, err = strconv.ParseFloat(withWeight[1], 64)
		if err != nil || weight < 0 {
			return nil, fmt.Errorf("bad weight %q", withWeight[1])
		}
	}

	sets := make([]session.SetConfig, count)
	for i := range sets {
		sets[i] = session.SetConfig{TargetReps: reps, TargetWeight: weight, WeightUnit: "kg"}
	}
	return sets, nil
}
