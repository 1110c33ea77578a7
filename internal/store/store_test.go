package store

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/session"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSession() *session.Session {
	return session.Reduce(nil, session.Start{
		Now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Config: session.StartConfig{
			WorkoutName: "Leg Day",
			Type:        "strength",
			Exercises: []session.ExerciseConfig{{
				ID: "ex-1", Name: "Squat", RestSeconds: 120,
				Sets: []session.SetConfig{{TargetReps: 5, TargetWeight: 100, WeightUnit: "kg"}},
			}},
		},
	})
}

// TestSaveLoadRoundTrip verifies a session survives the store intact.
func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTemp(t)
	sess := sampleSession()

	if err := s.SaveSession(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := s.LoadSession()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back == nil {
		t.Fatal("load returned no session")
	}
	if back.WorkoutName != "Leg Day" || len(back.Exercises) != 1 {
		t.Errorf("loaded session = %q with %d exercises, want Leg Day with 1", back.WorkoutName, len(back.Exercises))
	}
	if !back.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("started_at = %v, want %v", back.StartedAt, sess.StartedAt)
	}
}

// TestLoadEmpty verifies a fresh store reports no session without error.
func TestLoadEmpty(t *testing.T) {
	s := openTemp(t)
	sess, err := s.LoadSession()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil", sess)
	}
}

// TestSaveNilClears verifies that persisting "no session" clears the row.
func TestSaveNilClears(t *testing.T) {
	s := openTemp(t)
	if err := s.SaveSession(sampleSession()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveSession(nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}
	sess, err := s.LoadSession()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sess != nil {
		t.Error("session not cleared")
	}
}

// TestCorruptPayloadFailsOpen verifies an unparseable stored document is
// treated as no session, never surfaced as an error.
func TestCorruptPayloadFailsOpen(t *testing.T) {
	s := openTemp(t)
	if _, err := s.db.Exec(
		`INSERT INTO client_state (key, payload) VALUES (?, ?)`,
		keySession, `{"status": 42, truncated`,
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	sess, err := s.LoadSession()
	if err != nil {
		t.Fatalf("load should fail open, got error: %v", err)
	}
	if sess != nil {
		t.Errorf("session = %+v, want nil for corrupt payload", sess)
	}
}

// TestPendingSaveMarker verifies set/peek/take semantics, in particular
// that take consumes the marker exactly once.
func TestPendingSaveMarker(t *testing.T) {
	s := openTemp(t)

	if ok, err := s.PendingSave(); err != nil || ok {
		t.Fatalf("pending on fresh store = (%v, %v), want (false, nil)", ok, err)
	}

	if err := s.SetPendingSave(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, _ := s.PendingSave(); !ok {
		t.Fatal("marker not visible after set")
	}

	ok, err := s.TakePendingSave()
	if err != nil || !ok {
		t.Fatalf("take = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = s.TakePendingSave()
	if err != nil || ok {
		t.Errorf("second take = (%v, %v), want (false, nil)", ok, err)
	}
}

// TestOverwriteIsFullDocument verifies the latest save fully replaces any
// earlier document.
func TestOverwriteIsFullDocument(t *testing.T) {
	s := openTemp(t)
	first := sampleSession()
	if err := s.SaveSession(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := session.Reduce(first, session.CompleteSet{Now: first.StartedAt.Add(time.Minute), Exercise: 0, Set: 0})
	if err := s.SaveSession(second); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	back, err := s.LoadSession()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !back.Exercises[0].Sets[0].IsCompleted {
		t.Error("loaded document is not the latest write")
	}
}
