// Package mcp exposes the live workout session to language-model assistants
// over the Model Context Protocol: a coach can read the session, log sets,
// and drive the rest timer through the same controller the HTTP API uses.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/liftlog/internal/controller"
	"github.com/claude/liftlog/internal/saveflow"
)

// New creates an MCP server with all session tools and resources registered.
func New(ctrl *controller.Controller, flow *saveflow.Flow, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog active workout session server. Read the live session, mark sets complete, adjust the rest timer, and finish or save the workout. Exercise and set indexes are zero-based."),
	)

	h := &handlers{ctrl: ctrl, flow: flow, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolCompleteSet, Handler: h.completeSet},
		server.ServerTool{Tool: toolUncompleteSet, Handler: h.uncompleteSet},
		server.ServerTool{Tool: toolUpdateSet, Handler: h.updateSet},
		server.ServerTool{Tool: toolAddSet, Handler: h.addSet},
		server.ServerTool{Tool: toolAddExercise, Handler: h.addExercise},
		server.ServerTool{Tool: toolSkipRest, Handler: h.skipRest},
		server.ServerTool{Tool: toolExtendRest, Handler: h.extendRest},
		server.ServerTool{Tool: toolFinishSession, Handler: h.finishSession},
		server.ServerTool{Tool: toolResumeSession, Handler: h.resumeSession},
		server.ServerTool{Tool: toolSaveWorkout, Handler: h.saveWorkout},
		server.ServerTool{Tool: toolDiscardSession, Handler: h.discardSession},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ctrl *controller.Controller
	flow *saveflow.Flow
	log  *slog.Logger
}

// --- Resource definitions ---

var resCurrentSession = mcp.NewResource(
	"liftlog://session",
	"Current Session",
	mcp.WithResourceDescription("The live workout session: status, elapsed time, rest countdown, exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) currentSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sess := h.ctrl.Session()
	if sess == nil {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: "null"},
		}, nil
	}
	text, err := sessionJSON(sess)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: text},
	}, nil
}
