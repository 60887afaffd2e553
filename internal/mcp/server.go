package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("liftlog-mcp-server", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions("LiftLog training log. Query strength trainings (program days A-D: squat, bench, deadlift, push press), "+
			"per-exercise progress, personal records, aggregate stats and the exercise catalog. Tools answer in markdown unless format=json."),
	)

	h := &handlers{ds: ds, log: log, now: time.Now}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetTrainings, Handler: h.getTrainings},
		server.ServerTool{Tool: toolGetTrainingDetails, Handler: h.getTrainingDetails},
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetStats, Handler: h.getStats},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolSearchExercises, Handler: h.searchExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTrainings, Handler: h.trainings},
		server.ServerResource{Resource: resStats, Handler: h.stats},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

// --- Resource definitions ---

var resTrainings = mcp.NewResource(
	"liftlog://trainings",
	"All trainings",
	mcp.WithResourceDescription("Complete list of all stored trainings"),
	mcp.WithMIMEType("application/json"),
)

var resStats = mcp.NewResource(
	"liftlog://stats",
	"Statistics",
	mcp.WithResourceDescription("Training counts: total, lifting, cardio and sessions with health data"),
	mcp.WithMIMEType("application/json"),
)
