package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/saveflow"
	"github.com/claude/liftlog/internal/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionResponse is the session document plus the deferred-save marker, so
// a client can show that the session will save itself after sign-in.
type sessionResponse struct {
	*session.Session
	PendingSave bool `json:"pending_save,omitempty"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.ctrl.Session()
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}

	resp := sessionResponse{Session: sess}
	if pending, err := s.flow.PendingSave(); err == nil {
		resp.PendingSave = pending
	} else {
		s.log.Warn("pending-save marker read failed", "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var cfg session.StartConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(cfg.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one exercise is required"})
		return
	}

	sess, err := s.ctrl.Start(cfg)
	if err != nil {
		if errors.Is(err, controller.ErrSessionActive) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	s.opResponse(w, s.ctrl.Discard())
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	s.opResponse(w, s.ctrl.Finish())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.opResponse(w, s.ctrl.Resume())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	result, err := s.flow.Save(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrNoSession):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, saveflow.ErrNotFinishing):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, saveflow.ErrNothingCompleted):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			// Transient collaborator failure: the session is back at the
			// summary and the client may retry.
			s.log.Error("save failed", "error", err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string              `json:"name"`
		RestSeconds int                 `json:"rest_seconds"`
		Sets        []session.SetConfig `json:"sets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	id, err := s.ctrl.AddExercise(body.Name, body.RestSeconds, body.Sets)
	if err != nil {
		s.opResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	exercise, ok := s.indexParam(w, r, "exercise")
	if !ok {
		return
	}
	s.opResponse(w, s.ctrl.RemoveExercise(exercise))
}

func (s *Server) handleRenameExercise(w http.ResponseWriter, r *http.Request) {
	exercise, ok := s.indexParam(w, r, "exercise")
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	// Opportunistic hint fetch; the rename proceeds without it.
	var last *session.LastWorkoutData
	if s.stats != nil && body.Name != "" {
		if stats, err := s.stats.LastStats(r.Context(), []string{body.Name}); err == nil {
			if hint, ok := stats[body.Name]; ok {
				last = &hint
			}
		} else {
			s.log.Warn("last-stats lookup failed", "exercise", body.Name, "error", err)
		}
	}

	s.opResponse(w, s.ctrl.RenameExercise(exercise, body.Name, last))
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	exercise, ok := s.indexParam(w, r, "exercise")
	if !ok {
		return
	}
	s.opResponse(w, s.ctrl.AddSet(exercise))
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exercise, set, ok := s.setParams(w, r)
	if !ok {
		return
	}
	s.opResponse(w, s.ctrl.RemoveSet(exercise, set))
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exercise, set, ok := s.setParams(w, r)
	if !ok {
		return
	}
	var body struct {
		Reps   *int     `json:"reps"`
		Weight *float64 `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.opResponse(w, s.ctrl.UpdateSet(exercise, set, body.Reps, body.Weight))
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	exercise, set, ok := s.setParams(w, r)
	if !ok {
		return
	}
	s.opResponse(w, s.ctrl.CompleteSet(exercise, set))
}

func (s *Server) handleUncompleteSet(w http.ResponseWriter, r *http.Request) {
	exercise, set, ok := s.setParams(w, r)
	if !ok {
		return
	}
	s.opResponse(w, s.ctrl.UncompleteSet(exercise, set))
}

func (s *Server) handleSkipRest(w http.ResponseWriter, r *http.Request) {
	s.opResponse(w, s.ctrl.SkipRest())
}

func (s *Server) handleExtendRest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.Seconds <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seconds must be positive"})
		return
	}
	s.opResponse(w, s.ctrl.ExtendRest(body.Seconds))
}

// opResponse renders a controller operation outcome: the fresh session on
// success, 404 when there is no session.
func (s *Server) opResponse(w http.ResponseWriter, err error) {
	if errors.Is(err, controller.ErrNoSession) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Session())
}

func (s *Server) indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name + " index"})
		return 0, false
	}
	return v, true
}

func (s *Server) setParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	exercise, ok := s.indexParam(w, r, "exercise")
	if !ok {
		return 0, 0, false
	}
	set, ok := s.indexParam(w, r, "set")
	if !ok {
		return 0, 0, false
	}
	return exercise, set, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
