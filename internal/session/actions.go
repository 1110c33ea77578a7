package session

import "time"

// Action is one discrete session mutation. Actions carry the current instant
// where a transition needs it, so the reducer itself never reads the clock.
type Action interface {
	isAction()
}

// SetConfig is the plan for one set in a start configuration.
type SetConfig struct {
	TargetReps   int     `json:"target_reps"`
	TargetWeight float64 `json:"target_weight"`
	WeightUnit   string  `json:"weight_unit"`
}

// ExerciseConfig is one exercise in a start configuration. ID must be a
// fresh locally-generated identifier; exercises with no sets get a single
// default set so the at-least-one-set invariant holds from the first moment.
type ExerciseConfig struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	RestSeconds int         `json:"rest_seconds"`
	Sets        []SetConfig `json:"sets"`
}

// StartConfig describes the workout to materialize: from a template, an
// AI-generated suggestion, or empty.
type StartConfig struct {
	WorkoutName string           `json:"workout_name"`
	Type        string           `json:"type"`
	TemplateID  string           `json:"template_id,omitempty"`
	Exercises   []ExerciseConfig `json:"exercises"`
}

// Start materializes a session. No-op if a session already exists.
type Start struct {
	Now    time.Time
	Config StartConfig
}

// Rehydrate reloads a stored session verbatim, then recomputes the derived
// timer values for the time passed while unloaded.
type Rehydrate struct {
	Now    time.Time
	Stored *Session
}

// Tick recomputes ElapsedSeconds from StartedAt.
type Tick struct{ Now time.Time }

// RestTick recomputes the rest timer's remaining seconds and, at zero,
// clears the timer and returns the session to active.
type RestTick struct{ Now time.Time }

// CompleteSet marks a set completed, advances the cursor, and may open a
// rest timer.
type CompleteSet struct {
	Now      time.Time
	Exercise int
	Set      int
}

// UncompleteSet clears a set's completion. It does not retroactively cancel
// a rest timer the completion opened.
type UncompleteSet struct {
	Exercise int
	Set      int
}

// UpdateSet edits a set's actual reps/weight in place. Nil fields are left
// untouched.
type UpdateSet struct {
	Exercise int
	Set      int
	Reps     *int
	Weight   *float64
}

// AddSet appends a set to an exercise, seeded from the exercise's last set.
type AddSet struct{ Exercise int }

// RemoveSet deletes a set and renumbers the rest. Removing the only set of
// an exercise is rejected.
type RemoveSet struct {
	Exercise int
	Set      int
}

// AddExercise appends an exercise. ID must be freshly generated by the
// caller. With no set configs, the exercise starts with one default set.
type AddExercise struct {
	ID          string
	Name        string
	RestSeconds int
	Sets        []SetConfig
}

// RemoveExercise deletes an exercise. Removing the last one is rejected.
type RemoveExercise struct{ Exercise int }

// RenameExercise changes an exercise's name, optionally attaching an
// already-resolved previous-performance snapshot. The reducer never fetches
// it; lookups happen outside and arrive here as data.
type RenameExercise struct {
	Exercise int
	Name     string
	Last     *LastWorkoutData
}

// SkipRest cancels the running rest timer immediately.
type SkipRest struct{}

// ExtendRest lengthens the running rest timer in place.
type ExtendRest struct {
	Now     time.Time
	Seconds int
}

// Finish moves the session to the summary review. Any live rest timer is
// dropped, since a timer exists only while resting.
type Finish struct{}

// Resume returns from the summary to live logging.
type Resume struct{}

// BeginSave marks persistence as in flight.
type BeginSave struct{}

// SaveFailed reverts an in-flight save to the summary without losing data.
type SaveFailed struct{}

// Discard terminates the session unconditionally.
type Discard struct{}

func (Start) isAction()          {}
func (Rehydrate) isAction()      {}
func (Tick) isAction()           {}
func (RestTick) isAction()       {}
func (CompleteSet) isAction()    {}
func (UncompleteSet) isAction()  {}
func (UpdateSet) isAction()      {}
func (AddSet) isAction()         {}
func (RemoveSet) isAction()      {}
func (AddExercise) isAction()    {}
func (RemoveExercise) isAction() {}
func (RenameExercise) isAction() {}
func (SkipRest) isAction()       {}
func (ExtendRest) isAction()     {}
func (Finish) isAction()         {}
func (Resume) isAction()         {}
func (BeginSave) isAction()      {}
func (SaveFailed) isAction()     {}
func (Discard) isAction()        {}
