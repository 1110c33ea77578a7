// Package controller orchestrates the session reducer: it owns the current
// session, drives the elapsed and rest tick loops, persists every change,
// and exposes the imperative operations the surfaces call.
package controller

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/liftlog/internal/session"
)

var (
	// ErrNoSession is returned by operations that need a live session.
	ErrNoSession = errors.New("no active session")
	// ErrSessionActive is returned by Start when a session already exists.
	ErrSessionActive = errors.New("a session is already active")
)

// SessionStore persists the session document. Write failures are logged and
// swallowed: losing durability degrades reload survival, never the live
// session.
type SessionStore interface {
	SaveSession(*session.Session) error
	LoadSession() (*session.Session, error)
}

// Controller serializes all session mutations. Both tick drivers and every
// operation converge on dispatch under one mutex, so each action is a
// discrete atomic transition and the two timers can never race.
type Controller struct {
	mu    sync.Mutex
	sess  *session.Session
	clock Clock
	sched Scheduler
	store SessionStore
	log   *slog.Logger

	onRestExpired func(exerciseIndex, setIndex int)

	stopElapsed func()
	stopRest    func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option { return func(ctrl *Controller) { ctrl.clock = c } }

// WithScheduler replaces the tick source, for tests.
func WithScheduler(s Scheduler) Option { return func(ctrl *Controller) { ctrl.sched = s } }

// WithRestExpired registers a callback fired exactly once per rest-timer
// expiry (not on skip), identifying the set that triggered the rest. Used
// for cues like haptics or a terminal bell; the core itself stays
// side-effect free.
func WithRestExpired(fn func(exerciseIndex, setIndex int)) Option {
	return func(ctrl *Controller) { ctrl.onRestExpired = fn }
}

// New creates a Controller. Call Init to rehydrate any stored session and
// start the tick drivers.
func New(store SessionStore, log *slog.Logger, opts ...Option) *Controller {
	ctrl := &Controller{
		clock: SystemClock{},
		sched: TickerScheduler{},
		store: store,
		log:   log,
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	return ctrl
}

// Init attempts to rehydrate a session from the store. A session that was
// mid-save when the process died comes back as finishing: the in-flight
// call died with the old process, and the user retries from the summary.
func (c *Controller) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.store.LoadSession()
	if err != nil || stored == nil {
		return
	}
	c.dispatch(session.Rehydrate{Now: c.clock.Now(), Stored: stored})
	if c.sess != nil && c.sess.Status == session.StatusSaving {
		c.dispatch(session.SaveFailed{})
	}
	if c.sess != nil {
		c.log.Info("session rehydrated",
			"workout", c.sess.WorkoutName,
			"status", c.sess.Status,
			"elapsed_seconds", c.sess.ElapsedSeconds,
		)
	}
}

// Close stops both tick drivers. The session itself stays in the store.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDrivers()
}

// Session returns a snapshot of the current session, or nil.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Clone()
}

// Start materializes a new session from the given configuration. Exercises
// without ids get fresh ones.
func (c *Controller) Start(cfg session.StartConfig) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil {
		return nil, ErrSessionActive
	}
	for i := range cfg.Exercises {
		if cfg.Exercises[i].ID == "" {
			cfg.Exercises[i].ID = uuid.NewString()
		}
	}
	c.dispatch(session.Start{Now: c.clock.Now(), Config: cfg})
	c.log.Info("session started", "workout", c.sess.WorkoutName, "exercises", len(c.sess.Exercises))
	return c.sess.Clone(), nil
}

// CompleteSet marks a set done and may open a rest countdown.
func (c *Controller) CompleteSet(exercise, set int) error {
	return c.op(session.CompleteSet{Now: c.clock.Now(), Exercise: exercise, Set: set})
}

// UncompleteSet undoes a completion. Any rest timer it opened keeps running.
func (c *Controller) UncompleteSet(exercise, set int) error {
	return c.op(session.UncompleteSet{Exercise: exercise, Set: set})
}

// UpdateSet edits a set's actual reps and/or weight.
func (c *Controller) UpdateSet(exercise, set int, reps *int, weight *float64) error {
	return c.op(session.UpdateSet{Exercise: exercise, Set: set, Reps: reps, Weight: weight})
}

// AddSet appends a set to an exercise.
func (c *Controller) AddSet(exercise int) error {
	return c.op(session.AddSet{Exercise: exercise})
}

// RemoveSet deletes a set; the exercise's last set stays.
func (c *Controller) RemoveSet(exercise, set int) error {
	return c.op(session.RemoveSet{Exercise: exercise, Set: set})
}

// AddExercise appends an exercise and returns its generated id.
func (c *Controller) AddExercise(name string, restSeconds int, sets []session.SetConfig) (string, error) {
	id := uuid.NewString()
	err := c.op(session.AddExercise{ID: id, Name: name, RestSeconds: restSeconds, Sets: sets})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveExercise deletes an exercise; the session's last exercise stays.
func (c *Controller) RemoveExercise(exercise int) error {
	return c.op(session.RemoveExercise{Exercise: exercise})
}

// RenameExercise changes an exercise's name. last, when non-nil, is an
// already-fetched previous-performance snapshot supplied by the caller.
func (c *Controller) RenameExercise(exercise int, name string, last *session.LastWorkoutData) error {
	return c.op(session.RenameExercise{Exercise: exercise, Name: name, Last: last})
}

// SkipRest cancels the running rest countdown. No expiry cue fires.
func (c *Controller) SkipRest() error {
	return c.op(session.SkipRest{})
}

// ExtendRest adds seconds to the running rest countdown.
func (c *Controller) ExtendRest(seconds int) error {
	return c.op(session.ExtendRest{Now: c.clock.Now(), Seconds: seconds})
}

// Finish moves the session to the summary review.
func (c *Controller) Finish() error {
	return c.op(session.Finish{})
}

// Resume returns from the summary to live logging.
func (c *Controller) Resume() error {
	return c.op(session.Resume{})
}

// BeginSave marks persistence as in flight; the elapsed driver stops so the
// displayed duration freezes for the record being written.
func (c *Controller) BeginSave() error {
	return c.op(session.BeginSave{})
}

// SaveFailed reverts an in-flight save to the summary.
func (c *Controller) SaveFailed() error {
	return c.op(session.SaveFailed{})
}

// Discard terminates the session and clears it from the store.
func (c *Controller) Discard() error {
	return c.op(session.Discard{})
}

// op runs one action against a live session. In-session guard rejections
// are silent no-ops by design; only the absence of a session is an error.
func (c *Controller) op(a session.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ErrNoSession
	}
	c.dispatch(a)
	return nil
}

// dispatch applies one action, persists the result, and reconciles the tick
// drivers with the new status. Callers hold c.mu.
func (c *Controller) dispatch(a session.Action) {
	c.sess = session.Reduce(c.sess, a)
	if err := c.store.SaveSession(c.sess); err != nil {
		c.log.Warn("session persist failed", "error", err)
	}
	c.reconcileDrivers()
}

func (c *Controller) reconcileDrivers() {
	wantElapsed := c.sess != nil && c.sess.Status != session.StatusSaving
	wantRest := c.sess != nil && c.sess.Status == session.StatusResting

	if wantElapsed && c.stopElapsed == nil {
		c.stopElapsed = c.sched.Every(time.Second, c.elapsedTick)
	}
	if !wantElapsed && c.stopElapsed != nil {
		c.stopElapsed()
		c.stopElapsed = nil
	}
	if wantRest && c.stopRest == nil {
		c.stopRest = c.sched.Every(time.Second, c.restTick)
	}
	if !wantRest && c.stopRest != nil {
		c.stopRest()
		c.stopRest = nil
	}
}

func (c *Controller) stopDrivers() {
	if c.stopElapsed != nil {
		c.stopElapsed()
		c.stopElapsed = nil
	}
	if c.stopRest != nil {
		c.stopRest()
		c.stopRest = nil
	}
}

func (c *Controller) elapsedTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil || c.sess.Status == session.StatusSaving {
		return
	}
	c.dispatch(session.Tick{Now: c.clock.Now()})
}

func (c *Controller) restTick() {
	c.mu.Lock()
	var expiredEx, expiredSet int
	expired := false
	if c.sess != nil && c.sess.Status == session.StatusResting && c.sess.RestTimer != nil {
		expiredEx = c.sess.RestTimer.ExerciseIndex
		expiredSet = c.sess.RestTimer.SetIndex
		c.dispatch(session.RestTick{Now: c.clock.Now()})
		expired = c.sess != nil && c.sess.Status == session.StatusActive
	}
	cb := c.onRestExpired
	c.mu.Unlock()

	// Fired outside the lock so subscribers may call back in.
	if expired && cb != nil {
		cb(expiredEx, expiredSet)
	}
}
