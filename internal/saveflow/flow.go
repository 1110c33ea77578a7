// Package saveflow decides, at finish time, whether to persist the session
// immediately or defer through a sign-in detour and auto-resume afterward.
package saveflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/session"
)

var (
	// ErrNotFinishing is returned when save is attempted outside the
	// summary review.
	ErrNotFinishing = errors.New("session is not at the finish summary")
	// ErrNothingCompleted is returned when no set in the session is
	// completed; there is nothing worth persisting.
	ErrNothingCompleted = errors.New("no completed sets to save")
)

// WorkoutCreator persists a finished workout. Implemented by the remote API
// client and by the self-hosted postgres store.
type WorkoutCreator interface {
	CreateWorkout(ctx context.Context, payload api.WorkoutPayload) (string, error)
}

// AuthProvider reports the authentication signal.
type AuthProvider interface {
	AuthStatus(ctx context.Context) api.AuthState
}

// PendingStore holds the durable save-pending marker.
type PendingStore interface {
	SetPendingSave() error
	PendingSave() (bool, error)
	TakePendingSave() (bool, error)
}

// SignInPath is where an unauthenticated save sends the user, with a return
// path back to the live session view.
const SignInPath = "/sign-in?return=/session"

// saveTimeout bounds the persistence call so a stalled network cannot leave
// the session wedged in saving.
const saveTimeout = 30 * time.Second

// Result is the outcome of a save attempt.
type Result struct {
	// WorkoutID is set when the workout was persisted.
	WorkoutID string `json:"workout_id,omitempty"`
	// RedirectTo is where the caller should navigate next: the new
	// workout's detail view, or the sign-in detour.
	RedirectTo string `json:"redirect_to,omitempty"`
	// AuthRequired means the save was deferred, not performed.
	AuthRequired bool `json:"auth_required,omitempty"`
}

// Flow coordinates the controller, the auth signal, the workout creator,
// and the pending marker.
type Flow struct {
	ctrl    *controller.Controller
	auth    AuthProvider
	creator WorkoutCreator
	pending PendingStore
	log     *slog.Logger
}

// New creates a Flow.
func New(ctrl *controller.Controller, auth AuthProvider, creator WorkoutCreator, pending PendingStore, log *slog.Logger) *Flow {
	return &Flow{ctrl: ctrl, auth: auth, creator: creator, pending: pending, log: log}
}

// Save attempts to persist the session from the finish summary.
//
// Authenticated: the session enters saving, the creator is called under a
// timeout, and on success the session is discarded. Failure reverts to
// finishing with the session intact and editable.
//
// Not authenticated (including an auth signal still loading): nothing is
// called; the pending marker is set and the caller is redirected through
// sign-in. ResumePending completes the save after the detour.
func (f *Flow) Save(ctx context.Context) (*Result, error) {
	sess := f.ctrl.Session()
	if sess == nil {
		return nil, controller.ErrNoSession
	}
	if sess.Status != session.StatusFinishing {
		return nil, ErrNotFinishing
	}

	if f.auth.AuthStatus(ctx) != api.AuthAuthenticated {
		if err := f.pending.SetPendingSave(); err != nil {
			return nil, fmt.Errorf("deferring save: %w", err)
		}
		f.log.Info("save deferred pending sign-in")
		return &Result{AuthRequired: true, RedirectTo: SignInPath}, nil
	}

	return f.save(ctx, sess)
}

// ResumePending completes a deferred save after the sign-in detour. It runs
// at most once per marker: the marker is consumed before the creator is
// invoked, so a crash or reload mid-save cannot double-post the workout.
// Returns (nil, nil) when there is nothing to resume.
func (f *Flow) ResumePending(ctx context.Context) (*Result, error) {
	if f.auth.AuthStatus(ctx) != api.AuthAuthenticated {
		return nil, nil
	}
	ok, err := f.pending.TakePendingSave()
	if err != nil {
		return nil, fmt.Errorf("reading pending-save marker: %w", err)
	}
	if !ok {
		return nil, nil
	}

	sess := f.ctrl.Session()
	if sess == nil || sess.Status != session.StatusFinishing {
		f.log.Warn("pending save present but session not at summary; marker dropped")
		return nil, nil
	}
	f.log.Info("resuming deferred save")
	return f.save(ctx, sess)
}

// PendingSave reports whether a deferred save is waiting on sign-in, without
// consuming the marker. Surfaces use it to tell the user the session will
// save itself after the detour.
func (f *Flow) PendingSave() (bool, error) {
	return f.pending.PendingSave()
}

func (f *Flow) save(ctx context.Context, sess *session.Session) (*Result, error) {
	payload := BuildPayload(sess)
	if len(payload.Exercises) == 0 {
		return nil, ErrNothingCompleted
	}

	if err := f.ctrl.BeginSave(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	id, err := f.creator.CreateWorkout(ctx, payload)
	if err != nil {
		if revertErr := f.ctrl.SaveFailed(); revertErr != nil {
			f.log.Error("failed to revert after save error", "error", revertErr)
		}
		return nil, fmt.Errorf("saving workout: %w", err)
	}

	if err := f.ctrl.Discard(); err != nil {
		f.log.Warn("session discard after save failed", "error", err)
	}
	f.log.Info("workout saved", "id", id, "exercises", len(payload.Exercises))
	return &Result{WorkoutID: id, RedirectTo: "/workouts/" + id}, nil
}
