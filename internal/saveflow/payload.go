package saveflow

import (
	"time"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/session"
)

// BuildPayload converts a session into a persistence request: completed
// sets only, exercises with zero completed sets dropped, set numbers
// re-derived as 1..N over the surviving sets, elapsed seconds converted to
// whole minutes.
func BuildPayload(s *session.Session) api.WorkoutPayload {
	p := api.WorkoutPayload{
		WorkoutName:     s.WorkoutName,
		Type:            s.Type,
		Date:            s.StartedAt.UTC().Format(time.RFC3339),
		TemplateID:      s.TemplateID,
		DurationMinutes: durationMinutes(s.ElapsedSeconds),
	}
	for _, ex := range s.Exercises {
		pe := api.PayloadExercise{Name: ex.Name, RestSeconds: ex.RestSeconds}
		for _, set := range ex.Sets {
			if !set.IsCompleted {
				continue
			}
			pe.Sets = append(pe.Sets, api.PayloadSet{
				SetNumber:  len(pe.Sets) + 1,
				Reps:       set.ActualReps,
				Weight:     set.ActualWeight,
				WeightUnit: set.WeightUnit,
			})
		}
		if len(pe.Sets) > 0 {
			p.Exercises = append(p.Exercises, pe)
		}
	}
	return p
}

// durationMinutes truncates to whole minutes, with a floor of one: a saved
// workout of zero minutes reads as noise in history.
func durationMinutes(elapsedSeconds int) int {
	m := elapsedSeconds / 60
	if m < 1 {
		m = 1
	}
	return m
}
