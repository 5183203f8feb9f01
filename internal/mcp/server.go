// Package mcp exposes finalized training data to LLM clients over the Model
// Context Protocol. Only persisted history is served; live sessions belong to
// the HTTP surface.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kaioguedesm/chronofit/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools registered.
func New(ds *storage.DB, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("ChronoFit", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("ChronoFit workout tracking server. Query workout plans, finalized training sessions, and weekly rollups. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListPlans, Handler: h.listPlans},
		server.ServerTool{Tool: toolGetPlanExercises, Handler: h.getPlanExercises},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetWeeklyStats, Handler: h.getWeeklyStats},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	ds  *storage.DB
	log *slog.Logger
}
