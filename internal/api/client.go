// Package api holds the contracts and HTTP clients for the external
// collaborators: the workout persistence API, the authentication provider,
// and the exercise last-performance lookup. The session core treats all
// three as black boxes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/session"
)

// AuthState is the authentication provider's read-only signal.
type AuthState string

const (
	AuthLoading         AuthState = "loading"
	AuthAuthenticated   AuthState = "authenticated"
	AuthUnauthenticated AuthState = "unauthenticated"
)

// WorkoutPayload is the persistence request for a finished workout. It
// carries only completed sets of exercises with at least one completed set,
// renumbered 1..N.
type WorkoutPayload struct {
	WorkoutName     string            `json:"workoutName"`
	Type            string            `json:"type"`
	Date            string            `json:"date"`
	TemplateID      string            `json:"templateId,omitempty"`
	DurationMinutes int               `json:"durationMinutes"`
	Exercises       []PayloadExercise `json:"exercises"`
}

// PayloadExercise is one exercise in a persistence request.
type PayloadExercise struct {
	Name        string       `json:"name"`
	RestSeconds int          `json:"restTime"`
	Sets        []PayloadSet `json:"sets"`
}

// PayloadSet is one completed set in a persistence request.
type PayloadSet struct {
	SetNumber  int     `json:"setNumber"`
	Reps       int     `json:"reps"`
	Weight     float64 `json:"weight"`
	WeightUnit string  `json:"weightUnit"`
}

// Client talks to the remote LiftLog API over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client targeting the given base URL. token, when
// non-empty, is sent as a bearer token on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateWorkout persists a finished workout and returns its id.
func (c *Client) CreateWorkout(ctx context.Context, payload WorkoutPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling workout: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/workouts", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating workout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting workout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("workout create failed (status %d): %s", resp.StatusCode, body)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding workout response: %w", err)
	}
	return out.ID, nil
}

// AuthStatus reads the authentication signal. A provider that cannot be
// reached reports loading: the caller then defers rather than guessing.
func (c *Client) AuthStatus(ctx context.Context) AuthState {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/status", nil)
	if err != nil {
		return AuthLoading
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AuthLoading
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return AuthUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return AuthLoading
	}

	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return AuthLoading
	}
	switch AuthState(out.Status) {
	case AuthAuthenticated, AuthUnauthenticated, AuthLoading:
		return AuthState(out.Status)
	default:
		return AuthLoading
	}
}

// LastStats fetches previous-performance snapshots for the given exercise
// names. Callers treat failure as "no hint available"; it is never fatal.
func (c *Client) LastStats(ctx context.Context, names []string) (map[string]session.LastWorkoutData, error) {
	if len(names) == 0 {
		return map[string]session.LastWorkoutData{}, nil
	}

	params := url.Values{}
	for _, n := range names {
		params.Add("name", n)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/exercises/last-stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating last-stats request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching last stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("last-stats request failed (status %d): %s", resp.StatusCode, body)
	}

	var out map[string]session.LastWorkoutData
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding last stats: %w", err)
	}
	return out, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
