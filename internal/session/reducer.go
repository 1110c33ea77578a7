package session

import "time"

// Reduce applies one action to the session and returns the resulting
// session. It is a pure fold: no I/O, no clock reads, no errors. Guard
// violations (removing the last set, editing a finished session, indices
// out of range) return the input unchanged rather than failing, since the
// UI disables those paths and a stale click must not corrupt anything.
//
// A nil session means "no session": only Start and Rehydrate act on it, and
// Discard returns to it.
func Reduce(s *Session, action Action) *Session {
	switch a := action.(type) {
	case Start:
		if s != nil {
			return s
		}
		return start(a)
	case Rehydrate:
		if s != nil || a.Stored == nil {
			return s
		}
		return rehydrate(a)
	case Discard:
		return nil
	}

	if s == nil {
		return nil
	}

	switch a := action.(type) {
	case Tick:
		out := s.Clone()
		out.ElapsedSeconds = Elapsed(out.StartedAt, a.Now)
		return out
	case RestTick:
		return restTick(s, a.Now)
	case CompleteSet:
		return completeSet(s, a)
	case UncompleteSet:
		return uncompleteSet(s, a)
	case UpdateSet:
		return updateSet(s, a)
	case AddSet:
		return addSet(s, a.Exercise)
	case RemoveSet:
		return removeSet(s, a)
	case AddExercise:
		return addExercise(s, a)
	case RemoveExercise:
		return removeExercise(s, a.Exercise)
	case RenameExercise:
		return renameExercise(s, a)
	case SkipRest:
		if s.Status != StatusResting {
			return s
		}
		out := s.Clone()
		out.RestTimer = nil
		out.Status = StatusActive
		return out
	case ExtendRest:
		if s.Status != StatusResting || s.RestTimer == nil {
			return s
		}
		out := s.Clone()
		out.RestTimer.StartedAt = ExtendStart(out.RestTimer.StartedAt, a.Seconds)
		out.RestTimer.RemainingSeconds = Remaining(out.RestTimer.TotalSeconds, out.RestTimer.StartedAt, a.Now)
		return out
	case Finish:
		if s.Status != StatusActive && s.Status != StatusResting {
			return s
		}
		out := s.Clone()
		out.RestTimer = nil
		out.Status = StatusFinishing
		return out
	case Resume:
		if s.Status != StatusFinishing {
			return s
		}
		out := s.Clone()
		out.Status = StatusActive
		return out
	case BeginSave:
		if s.Status != StatusFinishing {
			return s
		}
		out := s.Clone()
		out.Status = StatusSaving
		return out
	case SaveFailed:
		if s.Status != StatusSaving {
			return s
		}
		out := s.Clone()
		out.Status = StatusFinishing
		return out
	}
	return s
}

func start(a Start) *Session {
	s := &Session{
		Status:      StatusActive,
		WorkoutName: a.Config.WorkoutName,
		Type:        a.Config.Type,
		TemplateID:  a.Config.TemplateID,
		StartedAt:   a.Now,
	}
	for _, ec := range a.Config.Exercises {
		s.Exercises = append(s.Exercises, materializeExercise(ec))
	}
	return s
}

func materializeExercise(ec ExerciseConfig) Exercise {
	ex := Exercise{
		ID:          ec.ID,
		Name:        ec.Name,
		RestSeconds: ec.RestSeconds,
	}
	cfgs := ec.Sets
	if len(cfgs) == 0 {
		cfgs = []SetConfig{{TargetReps: defaultTargetReps, WeightUnit: defaultWeightUnit}}
	}
	for i, sc := range cfgs {
		unit := sc.WeightUnit
		if unit == "" {
			unit = defaultWeightUnit
		}
		ex.Sets = append(ex.Sets, Set{
			SetNumber:    i + 1,
			TargetReps:   sc.TargetReps,
			TargetWeight: sc.TargetWeight,
			WeightUnit:   unit,
			ActualReps:   sc.TargetReps,
			ActualWeight: sc.TargetWeight,
		})
	}
	return ex
}

const (
	defaultTargetReps = 10
	defaultWeightUnit = "kg"
)

func rehydrate(a Rehydrate) *Session {
	s := a.Stored.Clone()
	s.ElapsedSeconds = Elapsed(s.StartedAt, a.Now)
	// A rest countdown that ran out while unloaded expires on the spot.
	if s.Status == StatusResting && s.RestTimer != nil {
		s.RestTimer.RemainingSeconds = Remaining(s.RestTimer.TotalSeconds, s.RestTimer.StartedAt, a.Now)
		if s.RestTimer.RemainingSeconds == 0 {
			s.RestTimer = nil
			s.Status = StatusActive
		}
	}
	return s
}

func restTick(s *Session, now time.Time) *Session {
	if s.Status != StatusResting || s.RestTimer == nil {
		return s
	}
	out := s.Clone()
	out.RestTimer.RemainingSeconds = Remaining(out.RestTimer.TotalSeconds, out.RestTimer.StartedAt, now)
	if out.RestTimer.RemainingSeconds == 0 {
		out.RestTimer = nil
		out.Status = StatusActive
	}
	return out
}

func completeSet(s *Session, a CompleteSet) *Session {
	if !editable(s) || !validSet(s, a.Exercise, a.Set) {
		return s
	}
	out := s.Clone()
	set := &out.Exercises[a.Exercise].Sets[a.Set]
	if !set.IsCompleted {
		set.IsCompleted = true
		t := a.Now
		set.CompletedAt = &t
	}
	advanceCursor(out, a.Exercise)

	// Open (or replace) the rest countdown, unless this was the last
	// incomplete set in the whole session.
	rest := out.Exercises[a.Exercise].RestSeconds
	if rest > 0 && !out.AllSetsCompleted() {
		out.RestTimer = &RestTimer{
			TotalSeconds:     rest,
			StartedAt:        a.Now,
			ExerciseIndex:    a.Exercise,
			SetIndex:         a.Set,
			RemainingSeconds: rest,
		}
		out.Status = StatusResting
	}
	return out
}

// advanceCursor points the cursor at the next incomplete set: first within
// the just-worked exercise in set order, then subsequent exercises in order.
// If nothing qualifies the cursor stays put.
func advanceCursor(s *Session, from int) {
	for i := from; i < len(s.Exercises); i++ {
		for j, set := range s.Exercises[i].Sets {
			if !set.IsCompleted {
				s.CurrentExercise = i
				s.CurrentSet = j
				return
			}
		}
	}
}

func uncompleteSet(s *Session, a UncompleteSet) *Session {
	if !validSet(s, a.Exercise, a.Set) {
		return s
	}
	out := s.Clone()
	set := &out.Exercises[a.Exercise].Sets[a.Set]
	set.IsCompleted = false
	set.CompletedAt = nil
	return out
}

func updateSet(s *Session, a UpdateSet) *Session {
	if !editable(s) || !validSet(s, a.Exercise, a.Set) {
		return s
	}
	out := s.Clone()
	set := &out.Exercises[a.Exercise].Sets[a.Set]
	if a.Reps != nil {
		set.ActualReps = *a.Reps
	}
	if a.Weight != nil {
		set.ActualWeight = *a.Weight
	}
	return out
}

func addSet(s *Session, exIdx int) *Session {
	if !editable(s) || !validExercise(s, exIdx) {
		return s
	}
	out := s.Clone()
	sets := out.Exercises[exIdx].Sets
	last := sets[len(sets)-1]
	out.Exercises[exIdx].Sets = append(sets, Set{
		SetNumber:    len(sets) + 1,
		TargetReps:   last.TargetReps,
		TargetWeight: last.TargetWeight,
		WeightUnit:   last.WeightUnit,
		ActualReps:   last.TargetReps,
		ActualWeight: last.TargetWeight,
	})
	return out
}

func removeSet(s *Session, a RemoveSet) *Session {
	if !editable(s) || !validSet(s, a.Exercise, a.Set) {
		return s
	}
	if len(s.Exercises[a.Exercise].Sets) == 1 {
		return s
	}
	out := s.Clone()
	sets := out.Exercises[a.Exercise].Sets
	out.Exercises[a.Exercise].Sets = append(sets[:a.Set], sets[a.Set+1:]...)
	renumber(out.Exercises[a.Exercise].Sets)
	clampCursor(out)
	return out
}

func addExercise(s *Session, a AddExercise) *Session {
	if !editable(s) {
		return s
	}
	out := s.Clone()
	out.Exercises = append(out.Exercises, materializeExercise(ExerciseConfig{
		ID:          a.ID,
		Name:        a.Name,
		RestSeconds: a.RestSeconds,
		Sets:        a.Sets,
	}))
	return out
}

func removeExercise(s *Session, exIdx int) *Session {
	if !editable(s) || !validExercise(s, exIdx) {
		return s
	}
	if len(s.Exercises) == 1 {
		return s
	}
	out := s.Clone()
	out.Exercises = append(out.Exercises[:exIdx], out.Exercises[exIdx+1:]...)
	clampCursor(out)
	if out.RestTimer != nil {
		// The timer keeps running; its provenance indices just get clamped
		// back into range.
		if out.RestTimer.ExerciseIndex >= len(out.Exercises) {
			out.RestTimer.ExerciseIndex = len(out.Exercises) - 1
		}
		if n := len(out.Exercises[out.RestTimer.ExerciseIndex].Sets); out.RestTimer.SetIndex >= n {
			out.RestTimer.SetIndex = n - 1
		}
	}
	return out
}

func renameExercise(s *Session, a RenameExercise) *Session {
	if !editable(s) || !validExercise(s, a.Exercise) {
		return s
	}
	out := s.Clone()
	out.Exercises[a.Exercise].Name = a.Name
	if a.Last != nil {
		out.Exercises[a.Exercise].LastWorkout = a.Last
	}
	return out
}

func renumber(sets []Set) {
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
}

func clampCursor(s *Session) {
	if s.CurrentExercise >= len(s.Exercises) {
		s.CurrentExercise = len(s.Exercises) - 1
	}
	if s.CurrentExercise < 0 {
		s.CurrentExercise = 0
	}
	if n := len(s.Exercises[s.CurrentExercise].Sets); s.CurrentSet >= n {
		s.CurrentSet = n - 1
	}
	if s.CurrentSet < 0 {
		s.CurrentSet = 0
	}
}

// editable reports whether structural edits and set logging are permitted.
func editable(s *Session) bool {
	return s.Status == StatusActive || s.Status == StatusResting
}

func validExercise(s *Session, i int) bool {
	return i >= 0 && i < len(s.Exercises)
}

func validSet(s *Session, i, j int) bool {
	return validExercise(s, i) && j >= 0 && j < len(s.Exercises[i].Sets)
}
