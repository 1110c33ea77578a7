package saveflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/session"
)

type memSessionStore struct {
	sess *session.Session
}

func (m *memSessionStore) SaveSession(s *session.Session) error { m.sess = s.Clone(); return nil }
func (m *memSessionStore) LoadSession() (*session.Session, error) {
	return m.sess.Clone(), nil
}

type fakeAuth struct{ state api.AuthState }

func (f *fakeAuth) AuthStatus(context.Context) api.AuthState { return f.state }

type fakeCreator struct {
	calls    int
	lastBody api.WorkoutPayload
	id       string
	err      error
}

func (f *fakeCreator) CreateWorkout(_ context.Context, p api.WorkoutPayload) (string, error) {
	f.calls++
	f.lastBody = p
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

type fakePending struct{ set bool }

func (f *fakePending) SetPendingSave() error { f.set = true; return nil }
func (f *fakePending) PendingSave() (bool, error) { return f.set, nil }
func (f *fakePending) TakePendingSave() (bool, error) {
	was := f.set
	f.set = false
	return was, nil
}

type frozenScheduler struct{}

func (frozenScheduler) Every(time.Duration, func()) func() { return func() {} }

func newFlow(t *testing.T, auth *fakeAuth, creator *fakeCreator) (*Flow, *controller.Controller, *fakePending, *memSessionStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := &memSessionStore{}
	ctrl := controller.New(st, log, controller.WithScheduler(frozenScheduler{}))
	t.Cleanup(ctrl.Close)
	pending := &fakePending{}
	return New(ctrl, auth, creator, pending, log), ctrl, pending, st
}

func startAndFinish(t *testing.T, ctrl *controller.Controller) {
	t.Helper()
	_, err := ctrl.Start(session.StartConfig{
		WorkoutName: "Push Day",
		Type:        "strength",
		Exercises: []session.ExerciseConfig{{Name: "Bench Press", RestSeconds: 90, Sets: []session.SetConfig{
			{TargetReps: 10, TargetWeight: 60, WeightUnit: "kg"},
		}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ctrl.CompleteSet(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Finish(); err != nil {
		t.Fatal(err)
	}
}

// TestSaveAuthenticated verifies the direct path: create, discard, redirect
// to the new workout.
func TestSaveAuthenticated(t *testing.T) {
	creator := &fakeCreator{id: "w-77"}
	flow, ctrl, pending, st := newFlow(t, &fakeAuth{state: api.AuthAuthenticated}, creator)
	startAndFinish(t, ctrl)

	res, err := flow.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.WorkoutID != "w-77" || res.RedirectTo != "/workouts/w-77" {
		t.Errorf("result = %+v, want id w-77 with detail redirect", res)
	}
	if creator.calls != 1 {
		t.Errorf("creator calls = %d, want 1", creator.calls)
	}
	if ctrl.Session() != nil {
		t.Error("session not discarded after successful save")
	}
	if st.sess != nil {
		t.Error("stored session not cleared after successful save")
	}
	if pending.set {
		t.Error("pending marker set on the authenticated path")
	}
}

// TestSaveFailureKeepsSession verifies a failed save reverts to finishing
// with the session intact and retryable.
func TestSaveFailureKeepsSession(t *testing.T) {
	creator := &fakeCreator{err: errors.New("connection reset")}
	flow, ctrl, _, _ := newFlow(t, &fakeAuth{state: api.AuthAuthenticated}, creator)
	startAndFinish(t, ctrl)

	if _, err := flow.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	sess := ctrl.Session()
	if sess == nil {
		t.Fatal("session lost on save failure")
	}
	if sess.Status != session.StatusFinishing {
		t.Errorf("status = %q, want finishing", sess.Status)
	}

	// Retry by pressing save again.
	creator.err = nil
	creator.id = "w-88"
	res, err := flow.Save(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.WorkoutID != "w-88" {
		t.Errorf("retry id = %q, want w-88", res.WorkoutID)
	}
}

// TestSaveUnauthenticatedDefers verifies the detour: no create call, marker
// set, session untouched, sign-in redirect with a return path.
func TestSaveUnauthenticatedDefers(t *testing.T) {
	creator := &fakeCreator{id: "w-99"}
	auth := &fakeAuth{state: api.AuthUnauthenticated}
	flow, ctrl, pending, _ := newFlow(t, auth, creator)
	startAndFinish(t, ctrl)

	res, err := flow.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.AuthRequired || res.RedirectTo != SignInPath {
		t.Errorf("result = %+v, want auth detour", res)
	}
	if creator.calls != 0 {
		t.Errorf("creator calls = %d, want 0 before sign-in", creator.calls)
	}
	if !pending.set {
		t.Error("pending marker not set")
	}
	if got := ctrl.Session().Status; got != session.StatusFinishing {
		t.Errorf("status = %q, want still finishing", got)
	}

	// After sign-in the resume completes the save exactly once.
	auth.state = api.AuthAuthenticated
	res, err = flow.ResumePending(context.Background())
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if res == nil || res.WorkoutID != "w-99" {
		t.Fatalf("resume result = %+v, want saved workout", res)
	}
	if creator.calls != 1 {
		t.Errorf("creator calls = %d, want exactly 1", creator.calls)
	}

	// A second resume is a no-op: the marker was consumed.
	res, err = flow.ResumePending(context.Background())
	if err != nil || res != nil {
		t.Errorf("second resume = (%+v, %v), want (nil, nil)", res, err)
	}
	if creator.calls != 1 {
		t.Errorf("creator calls after second resume = %d, want still 1", creator.calls)
	}
}

// TestAuthLoadingDefers verifies a still-loading auth signal defers rather
// than guessing, and that resume declines to run while loading.
func TestAuthLoadingDefers(t *testing.T) {
	creator := &fakeCreator{}
	auth := &fakeAuth{state: api.AuthLoading}
	flow, ctrl, pending, _ := newFlow(t, auth, creator)
	startAndFinish(t, ctrl)

	res, err := flow.Save(context.Background())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !res.AuthRequired {
		t.Error("loading auth should defer the save")
	}

	if res, err := flow.ResumePending(context.Background()); res != nil || err != nil {
		t.Errorf("resume while loading = (%+v, %v), want (nil, nil)", res, err)
	}
	if !pending.set {
		t.Error("marker consumed while auth still loading")
	}
}

// TestSaveGuards verifies state preconditions.
func TestSaveGuards(t *testing.T) {
	creator := &fakeCreator{}
	flow, ctrl, _, _ := newFlow(t, &fakeAuth{state: api.AuthAuthenticated}, creator)

	if _, err := flow.Save(context.Background()); !errors.Is(err, controller.ErrNoSession) {
		t.Errorf("save with no session = %v, want ErrNoSession", err)
	}

	if _, err := ctrl.Start(session.StartConfig{Exercises: []session.ExerciseConfig{{Name: "Squat"}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Save(context.Background()); !errors.Is(err, ErrNotFinishing) {
		t.Errorf("save while active = %v, want ErrNotFinishing", err)
	}

	// Finishing but with zero completed sets: nothing worth persisting.
	if err := ctrl.Finish(); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Save(context.Background()); !errors.Is(err, ErrNothingCompleted) {
		t.Errorf("save with nothing completed = %v, want ErrNothingCompleted", err)
	}
	if got := ctrl.Session().Status; got != session.StatusFinishing {
		t.Errorf("status after rejected save = %q, want finishing", got)
	}
	if creator.calls != 0 {
		t.Errorf("creator calls = %d, want 0", creator.calls)
	}
}

// TestResumeWithoutSessionDropsMarker verifies a stale marker with no
// session is consumed quietly.
func TestResumeWithoutSessionDropsMarker(t *testing.T) {
	creator := &fakeCreator{}
	flow, _, pending, _ := newFlow(t, &fakeAuth{state: api.AuthAuthenticated}, creator)
	pending.set = true

	res, err := flow.ResumePending(context.Background())
	if res != nil || err != nil {
		t.Errorf("resume = (%+v, %v), want (nil, nil)", res, err)
	}
	if pending.set {
		t.Error("stale marker not consumed")
	}
	if creator.calls != 0 {
		t.Errorf("creator calls = %d, want 0", creator.calls)
	}
}
