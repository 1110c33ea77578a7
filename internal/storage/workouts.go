package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/session"
)

// CreateWorkout inserts a finished workout with its exercises and sets in
// one transaction and returns the new workout id. It implements the same
// WorkoutCreator contract as the remote API client.
func (db *DB) CreateWorkout(ctx context.Context, payload api.WorkoutPayload) (string, error) {
	date, err := time.Parse(time.RFC3339, payload.Date)
	if err != nil {
		return "", fmt.Errorf("parsing workout date: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	workoutID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO workouts (id, name, type, performed_at, template_id, duration_minutes)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		workoutID, payload.WorkoutName, payload.Type, date, payload.TemplateID, payload.DurationMinutes)
	if err != nil {
		return "", fmt.Errorf("inserting workout: %w", err)
	}

	for pos, ex := range payload.Exercises {
		exerciseID := uuid.New()
		_, err = tx.Exec(ctx,
			`INSERT INTO workout_exercises (id, workout_id, position, name, rest_seconds)
			 VALUES ($1, $2, $3, $4, $5)`,
			exerciseID, workoutID, pos+1, ex.Name, ex.RestSeconds)
		if err != nil {
			return "", fmt.Errorf("inserting exercise %q: %w", ex.Name, err)
		}

		for _, set := range ex.Sets {
			_, err = tx.Exec(ctx,
				`INSERT INTO workout_sets (exercise_id, set_number, reps, weight, weight_unit)
				 VALUES ($1, $2, $3, $4, $5)`,
				exerciseID, set.SetNumber, set.Reps, set.Weight, set.WeightUnit)
			if err != nil {
				return "", fmt.Errorf("inserting set %d of %q: %w", set.SetNumber, ex.Name, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("committing workout: %w", err)
	}
	return workoutID.String(), nil
}

// LastStats returns the most recent saved performance per exercise name.
// Missing names are simply absent from the result.
func (db *DB) LastStats(ctx context.Context, names []string) (map[string]session.LastWorkoutData, error) {
	if len(names) == 0 {
		return map[string]session.LastWorkoutData{}, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (e.name) e.name, w.performed_at, e.id
		 FROM workout_exercises e
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE e.name = ANY($1)
		 ORDER BY e.name, w.performed_at DESC`,
		names)
	if err != nil {
		return nil, fmt.Errorf("querying last performances: %w", err)
	}
	defer rows.Close()

	type header struct {
		date       time.Time
		exerciseID uuid.UUID
	}
	headers := make(map[string]header)
	for rows.Next() {
		var name string
		var h header
		if err := rows.Scan(&name, &h.date, &h.exerciseID); err != nil {
			return nil, fmt.Errorf("scanning last performance: %w", err)
		}
		headers[name] = h
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]session.LastWorkoutData, len(headers))
	for name, h := range headers {
		sets, err := db.setsForExercise(ctx, h.exerciseID)
		if err != nil {
			return nil, err
		}
		out[name] = session.LastWorkoutData{Date: h.date, Sets: sets}
	}
	return out, nil
}

func (db *DB) setsForExercise(ctx context.Context, exerciseID uuid.UUID) ([]session.LastSet, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT reps, weight, weight_unit
		 FROM workout_sets
		 WHERE exercise_id = $1
		 ORDER BY set_number ASC`,
		exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	var sets []session.LastSet
	for rows.Next() {
		var s session.LastSet
		if err := rows.Scan(&s.Reps, &s.Weight, &s.WeightUnit); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
