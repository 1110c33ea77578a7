package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/api"
	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/saveflow"
	"github.com/claude/liftlog/internal/session"
)

type memStore struct {
	sess *session.Session
}

func (m *memStore) SaveSession(s *session.Session) error {
	m.sess = s.Clone()
	return nil
}

func (m *memStore) LoadSession() (*session.Session, error) {
	return m.sess.Clone(), nil
}

type noopScheduler struct{}

func (noopScheduler) Every(time.Duration, func()) func() { return func() {} }

type fakeAuth struct{ state api.AuthState }

func (f *fakeAuth) AuthStatus(context.Context) api.AuthState { return f.state }

type fakeCreator struct{ id string }

func (f *fakeCreator) CreateWorkout(context.Context, api.WorkoutPayload) (string, error) {
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

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := controller.New(&memStore{}, log, controller.WithScheduler(noopScheduler{}))
	t.Cleanup(ctrl.Close)
	flow := saveflow.New(ctrl, &fakeAuth{state: api.AuthAuthenticated}, &fakeCreator{id: "wk-9"}, &fakePending{}, log)
	return &handlers{ctrl: ctrl, flow: flow, log: log}
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func startTestSession(t *testing.T, h *handlers) {
	t.Helper()
	_, err := h.ctrl.Start(session.StartConfig{
		WorkoutName: "Pull Day",
		Exercises: []session.ExerciseConfig{
			{Name: "Deadlift", RestSeconds: 120, Sets: []session.SetConfig{
				{TargetReps: 5, TargetWeight: 100, WeightUnit: "kg"},
				{TargetReps: 5, TargetWeight: 100, WeightUnit: "kg"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestGetSessionEmpty(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.getSession(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, res); got != "no active session" {
		t.Errorf("result = %q, want %q", got, "no active session")
	}
}

func TestStartSessionTool(t *testing.T) {
	h := newTestHandlers(t)
	res, err := h.startSession(context.Background(), toolRequest(map[string]any{
		"workout_name": "Push Day",
		"exercises":    `[{"name":"Bench Press","rest_seconds":90}]`,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(resultText(t, res)), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.WorkoutName != "Push Day" {
		t.Errorf("workout = %q, want %q", sess.WorkoutName, "Push Day")
	}
	if len(sess.Exercises) != 1 || len(sess.Exercises[0].Sets) != 1 {
		t.Errorf("exercises = %+v, want one exercise with one default set", sess.Exercises)
	}

	// Second start must be rejected.
	res, _ = h.startSession(context.Background(), toolRequest(map[string]any{
		"workout_name": "Again",
		"exercises":    `[{"name":"Squat"}]`,
	}))
	if !res.IsError {
		t.Error("second start succeeded, want error result")
	}
}

func TestStartSessionToolBadJSON(t *testing.T) {
	h := newTestHandlers(t)
	res, _ := h.startSession(context.Background(), toolRequest(map[string]any{
		"workout_name": "Push Day",
		"exercises":    "not json",
	}))
	if !res.IsError {
		t.Error("want error result for malformed exercises")
	}
}

func TestCompleteSetTool(t *testing.T) {
	h := newTestHandlers(t)
	startTestSession(t, h)

	res, err := h.completeSet(context.Background(), toolRequest(map[string]any{
		"exercise": float64(0), "set": float64(0),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(resultText(t, res)), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Status != session.StatusResting {
		t.Errorf("status = %q, want %q", sess.Status, session.StatusResting)
	}
	if !sess.Exercises[0].Sets[0].IsCompleted {
		t.Error("set not completed")
	}
}

func TestCompleteSetToolMissingArgs(t *testing.T) {
	h := newTestHandlers(t)
	startTestSession(t, h)

	res, _ := h.completeSet(context.Background(), toolRequest(map[string]any{"exercise": float64(0)}))
	if !res.IsError {
		t.Error("want error result when set index missing")
	}
}

func TestExtendRestToolRejectsNonPositive(t *testing.T) {
	h := newTestHandlers(t)
	startTestSession(t, h)

	res, _ := h.extendRest(context.Background(), toolRequest(map[string]any{"seconds": float64(0)}))
	if !res.IsError {
		t.Error("want error result for zero seconds")
	}
}

func TestToolsWithoutSession(t *testing.T) {
	h := newTestHandlers(t)
	res, _ := h.skipRest(context.Background(), toolRequest(nil))
	if !res.IsError {
		t.Error("skip_rest without session should be an error result")
	}
}

func TestSaveWorkoutTool(t *testing.T) {
	h := newTestHandlers(t)
	startTestSession(t, h)
	if err := h.ctrl.CompleteSet(0, 0); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := h.ctrl.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	res, err := h.saveWorkout(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var saved saveflow.Result
	if err := json.Unmarshal([]byte(resultText(t, res)), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.WorkoutID != "wk-9" {
		t.Errorf("workout id = %q, want %q", saved.WorkoutID, "wk-9")
	}
	if h.ctrl.Session() != nil {
		t.Error("session survived a successful save")
	}
}
