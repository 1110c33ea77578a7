package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCreateWorkout verifies the POST body, bearer header, and id decode.
func TestCreateWorkout(t *testing.T) {
	var gotAuth string
	var gotBody WorkoutPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/workouts" {
			t.Errorf("request = %s %s, want POST /workouts", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "w-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	id, err := c.CreateWorkout(context.Background(), WorkoutPayload{
		WorkoutName:     "Push Day",
		Type:            "strength",
		Date:            "2025-06-01T10:00:00Z",
		DurationMinutes: 42,
		Exercises: []PayloadExercise{{
			Name: "Bench Press", RestSeconds: 90,
			Sets: []PayloadSet{{SetNumber: 1, Reps: 10, Weight: 60, WeightUnit: "kg"}},
		}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "w-123" {
		t.Errorf("id = %q, want w-123", id)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotBody.DurationMinutes != 42 || len(gotBody.Exercises) != 1 {
		t.Errorf("payload = %+v, want 42 minutes with 1 exercise", gotBody)
	}
}

// TestCreateWorkoutServerError verifies non-2xx responses surface as errors.
func TestCreateWorkoutServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"validation failed"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.CreateWorkout(context.Background(), WorkoutPayload{}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

// TestAuthStatus covers the three signal values and the unreachable case.
func TestAuthStatus(t *testing.T) {
	status := "authenticated"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status == "401" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if got := c.AuthStatus(context.Background()); got != AuthAuthenticated {
		t.Errorf("status = %q, want authenticated", got)
	}

	status = "unauthenticated"
	if got := c.AuthStatus(context.Background()); got != AuthUnauthenticated {
		t.Errorf("status = %q, want unauthenticated", got)
	}

	status = "401"
	if got := c.AuthStatus(context.Background()); got != AuthUnauthenticated {
		t.Errorf("status on 401 = %q, want unauthenticated", got)
	}

	status = "garbage"
	if got := c.AuthStatus(context.Background()); got != AuthLoading {
		t.Errorf("status on unknown value = %q, want loading", got)
	}

	down := NewClient("http://127.0.0.1:1", "")
	if got := down.AuthStatus(context.Background()); got != AuthLoading {
		t.Errorf("status when unreachable = %q, want loading", got)
	}
}

// TestLastStats verifies query encoding and response decode.
func TestLastStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		names := r.URL.Query()["name"]
		if len(names) != 2 {
			t.Errorf("names = %v, want 2 entries", names)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"Bench Press": map[string]any{
				"date": "2025-05-25T10:00:00Z",
				"sets": []map[string]any{{"reps": 10, "weight": 57.5, "weight_unit": "kg"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	stats, err := c.LastStats(context.Background(), []string{"Bench Press", "Squat"})
	if err != nil {
		t.Fatalf("last stats: %v", err)
	}
	hint, ok := stats["Bench Press"]
	if !ok {
		t.Fatal("missing Bench Press entry")
	}
	if len(hint.Sets) != 1 || hint.Sets[0].Weight != 57.5 {
		t.Errorf("hint = %+v, want one set at 57.5", hint)
	}
	if _, ok := stats["Squat"]; ok {
		t.Error("Squat should be absent when the server has no data")
	}
}

// TestLastStatsEmptyNames verifies the no-op shortcut.
func TestLastStatsEmptyNames(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "")
	stats, err := c.LastStats(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty names: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("stats = %v, want empty", stats)
	}
}
