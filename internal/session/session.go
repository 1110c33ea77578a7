// Package session implements the active workout session: the data model,
// the pure reducer that owns every state transition, and the wall-clock
// arithmetic both timers are derived from.
package session

import "time"

// Status is the session state-machine state.
type Status string

const (
	// StatusActive is normal set logging and editing.
	StatusActive Status = "active"
	// StatusResting means a rest countdown is live; editing is still permitted.
	StatusResting Status = "resting"
	// StatusFinishing is the summary/review screen before saving.
	StatusFinishing Status = "finishing"
	// StatusSaving means persistence is in flight; the elapsed display freezes.
	StatusSaving Status = "saving"
)

// Set is one planned set of an exercise with the user's live-edited result.
type Set struct {
	SetNumber    int        `json:"set_number"`
	TargetReps   int        `json:"target_reps"`
	TargetWeight float64    `json:"target_weight"`
	WeightUnit   string     `json:"weight_unit"`
	ActualReps   int        `json:"actual_reps"`
	ActualWeight float64    `json:"actual_weight"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// LastSet is one set of a previous performance of an exercise.
type LastSet struct {
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weight_unit"`
}

// LastWorkoutData is a cached snapshot of the user's previous performance on
// an exercise name. UI hinting only; it never affects session invariants.
type LastWorkoutData struct {
	Date time.Time `json:"date"`
	Sets []LastSet `json:"sets"`
}

// Exercise is one exercise within the session. It has no lifecycle of its
// own: it exists only inside a Session and always holds at least one set.
type Exercise struct {
	// ID is generated locally when the exercise enters the session and is
	// stable for its lifetime. Used for UI identity, never persisted.
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Sets        []Set            `json:"sets"`
	RestSeconds int              `json:"rest_seconds"`
	LastWorkout *LastWorkoutData `json:"last_workout,omitempty"`
}

// RestTimer is the single active inter-set countdown. At most one exists,
// and only while the session status is StatusResting.
type RestTimer struct {
	TotalSeconds int `json:"total_seconds"`
	// StartedAt is the sole source of truth for the remaining time.
	// Extending the timer shifts it forward rather than touching a counter.
	StartedAt     time.Time `json:"started_at"`
	ExerciseIndex int       `json:"exercise_index"`
	SetIndex      int       `json:"set_index"`
	// RemainingSeconds is a derived cache, recomputed from StartedAt on
	// every rest tick and on rehydration.
	RemainingSeconds int `json:"remaining_seconds"`
}

// Session is the aggregate root of one in-progress workout. There is never
// more than one per client; it exists between start and discard/save.
type Session struct {
	Status      Status `json:"status"`
	WorkoutName string `json:"workout_name"`
	Type        string `json:"type"`
	TemplateID  string `json:"template_id,omitempty"`
	// StartedAt is immutable once set and is the sole source of truth for
	// elapsed time.
	StartedAt time.Time `json:"started_at"`
	// ElapsedSeconds is derived from StartedAt on every tick and on
	// rehydration. It is never advanced by incrementing, so missed ticks
	// and process suspension cannot introduce drift.
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Exercises      []Exercise `json:"exercises"`
	RestTimer      *RestTimer `json:"rest_timer,omitempty"`
	// CurrentExercise/CurrentSet point at the next set to perform.
	CurrentExercise int `json:"current_exercise"`
	CurrentSet      int `json:"current_set"`
}

// Clone returns a deep copy of the session. The reducer works on clones so
// callers can hold earlier snapshots without aliasing surprises.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Exercises = make([]Exercise, len(s.Exercises))
	for i, ex := range s.Exercises {
		out.Exercises[i] = ex
		out.Exercises[i].Sets = append([]Set(nil), ex.Sets...)
		for j, set := range ex.Sets {
			if set.CompletedAt != nil {
				t := *set.CompletedAt
				out.Exercises[i].Sets[j].CompletedAt = &t
			}
		}
		if ex.LastWorkout != nil {
			lw := *ex.LastWorkout
			lw.Sets = append([]LastSet(nil), ex.LastWorkout.Sets...)
			out.Exercises[i].LastWorkout = &lw
		}
	}
	if s.RestTimer != nil {
		rt := *s.RestTimer
		out.RestTimer = &rt
	}
	return &out
}

// AllSetsCompleted reports whether every set of every exercise is completed.
func (s *Session) AllSetsCompleted() bool {
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if !set.IsCompleted {
				return false
			}
		}
	}
	return true
}

// CompletedSetCount returns the number of completed sets across the session.
func (s *Session) CompletedSetCount() int {
	n := 0
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.IsCompleted {
				n++
			}
		}
	}
	return n
}

// TotalSetCount returns the number of sets across the session.
func (s *Session) TotalSetCount() int {
	n := 0
	for _, ex := range s.Exercises {
		n += len(ex.Sets)
	}
	return n
}
