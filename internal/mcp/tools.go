package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/session"
)

func sessionJSON(sess *session.Session) (string, error) {
	buf, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// --- Tool definitions ---

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Read the live workout session: status (active/resting/finishing/saving), elapsed seconds, the rest countdown if one is running, and every exercise with its sets and completion state."),
)

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a new workout session from a JSON plan. Fails when a session is already active."),
	mcp.WithString("workout_name", mcp.Required(), mcp.Description("Display name for the workout (e.g. 'Push Day')")),
	mcp.WithString("type", mcp.Description("Workout type (e.g. 'strength')")),
	mcp.WithString("exercises", mcp.Required(), mcp.Description(`JSON array of exercises: [{"name":"Bench Press","rest_seconds":90,"sets":[{"target_reps":8,"target_weight":60,"weight_unit":"kg"}]}]. Exercises without sets start with one default set.`)),
)

var toolCompleteSet = mcp.NewTool("complete_set",
	mcp.WithDescription("Mark a set completed. Advances the current-set cursor and, unless it was the last remaining set, starts the exercise's rest countdown."),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("Zero-based exercise index")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("Zero-based set index within the exercise")),
)

var toolUncompleteSet = mcp.NewTool("uncomplete_set",
	mcp.WithDescription("Clear a set's completion mark. A rest countdown the completion started keeps running."),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("Zero-based exercise index")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("Zero-based set index within the exercise")),
)

var toolUpdateSet = mcp.NewTool("update_set",
	mcp.WithDescription("Edit a set's actual reps and/or weight."),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("Zero-based exercise index")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("Zero-based set index within the exercise")),
	mcp.WithNumber("reps", mcp.Description("New actual rep count")),
	mcp.WithNumber("weight", mcp.Description("New actual weight")),
)

var toolAddSet = mcp.NewTool("add_set",
	mcp.WithDescription("Append a set to an exercise, seeded from its last set."),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("Zero-based exercise index")),
)

var toolAddExercise = mcp.NewTool("add_exercise",
	mcp.WithDescription("Append an exercise to the session. Returns the generated exercise id."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("rest_seconds", mcp.Description("Rest countdown length after each completed set; 0 disables the timer")),
)

var toolSkipRest = mcp.NewTool("skip_rest",
	mcp.WithDescription("Cancel the running rest countdown and return to active."),
)

var toolExtendRest = mcp.NewTool("extend_rest",
	mcp.WithDescription("Add seconds to the running rest countdown."),
	mcp.WithNumber("seconds", mcp.Required(), mcp.Description("Seconds to add, positive")),
)

var toolFinishSession = mcp.NewTool("finish_session",
	mcp.WithDescription("Move the session to the finish summary. The elapsed clock keeps running until the workout is saved or discarded."),
)

var toolResumeSession = mcp.NewTool("resume_session",
	mcp.WithDescription("Return from the finish summary to live logging."),
)

var toolSaveWorkout = mcp.NewTool("save_workout",
	mcp.WithDescription("Persist the finished workout. Only completed sets are saved. When the user is not signed in the save is deferred and a sign-in redirect is returned."),
)

var toolDiscardSession = mcp.NewTool("discard_session",
	mcp.WithDescription("Discard the session without saving. All logged data is lost."),
)

// --- Tool handlers ---

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := h.ctrl.Session()
	if sess == nil {
		return mcp.NewToolResultText("no active session"), nil
	}
	result, err := mcp.NewToolResultJSON(sess)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("workout_name")
	if err != nil {
		return mcp.NewToolResultError("workout_name parameter is required"), nil
	}
	raw, err := req.RequireString("exercises")
	if err != nil {
		return mcp.NewToolResultError("exercises parameter is required"), nil
	}

	var exercises []session.ExerciseConfig
	if err := json.Unmarshal([]byte(raw), &exercises); err != nil {
		return mcp.NewToolResultError("invalid exercises JSON: " + err.Error()), nil
	}
	if len(exercises) == 0 {
		return mcp.NewToolResultError("at least one exercise is required"), nil
	}

	sess, err := h.ctrl.Start(session.StartConfig{
		WorkoutName: name,
		Type:        req.GetString("type", ""),
		Exercises:   exercises,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(sess)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) completeSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, set, errResult := setArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	return h.opResult(h.ctrl.CompleteSet(exercise, set))
}

func (h *handlers) uncompleteSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, set, errResult := setArgs(req)
	if errResult != nil {
		return errResult, nil
	}
	return h.opResult(h.ctrl.UncompleteSet(exercise, set))
}

func (h *handlers) updateSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, set, errResult := setArgs(req)
	if errResult != nil {
		return errResult, nil
	}

	var reps *int
	var weight *float64
	args := req.GetArguments()
	if _, ok := args["reps"]; ok {
		r := req.GetInt("reps", 0)
		reps = &r
	}
	if _, ok := args["weight"]; ok {
		w := req.GetFloat("weight", 0)
		weight = &w
	}
	if reps == nil && weight == nil {
		return mcp.NewToolResultError("nothing to update: pass reps and/or weight"), nil
	}
	return h.opResult(h.ctrl.UpdateSet(exercise, set, reps, weight))
}

func (h *handlers) addSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireInt("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	return h.opResult(h.ctrl.AddSet(exercise))
}

func (h *handlers) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	id, err := h.ctrl.AddExercise(name, req.GetInt("rest_seconds", 0), nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(map[string]string{"id": id})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) skipRest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.opResult(h.ctrl.SkipRest())
}

func (h *handlers) extendRest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seconds, err := req.RequireInt("seconds")
	if err != nil {
		return mcp.NewToolResultError("seconds parameter is required"), nil
	}
	if seconds <= 0 {
		return mcp.NewToolResultError("seconds must be positive"), nil
	}
	return h.opResult(h.ctrl.ExtendRest(seconds))
}

func (h *handlers) finishSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.opResult(h.ctrl.Finish())
}

func (h *handlers) resumeSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.opResult(h.ctrl.Resume())
}

func (h *handlers) saveWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	saved, err := h.flow.Save(ctx)
	if err != nil {
		h.log.Error("mcp save_workout", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(saved)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) discardSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.opResult(h.ctrl.Discard())
}

// opResult renders a controller operation: the fresh session on success, an
// error result when no session exists.
func (h *handlers) opResult(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, controller.ErrNoSession) {
		return mcp.NewToolResultError("no active session"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess := h.ctrl.Session()
	if sess == nil {
		return mcp.NewToolResultText("session ended"), nil
	}
	result, jsonErr := mcp.NewToolResultJSON(sess)
	if jsonErr != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func setArgs(req mcp.CallToolRequest) (exercise, set int, errResult *mcp.CallToolResult) {
	exercise, err := req.RequireInt("exercise")
	if err != nil {
		return 0, 0, mcp.NewToolResultError("exercise parameter is required")
	}
	set, err = req.RequireInt("set")
	if err != nil {
		return 0, 0, mcp.NewToolResultError("set parameter is required")
	}
	return exercise, set, nil
}
