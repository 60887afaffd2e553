package mcp

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/extract"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/query"
	"github.com/claude/liftlog/internal/render"
	"github.com/claude/liftlog/internal/storage"
)

// Output formats accepted by every tool.
const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func withFormat() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Response format: markdown (default) or json"),
		mcp.Enum(formatMarkdown, formatJSON))
}

// --- Tool definitions ---

var toolGetTrainings = mcp.NewTool("get_trainings",
	mcp.WithDescription("Get trainings from LiftLog, newest first. Can be filtered by day (A/B/C/D), date range, or count."),
	mcp.WithString("day", mcp.Description("Filter by day: A (Squat), B (Bench), C (Deadlift), D (Push Press)"), mcp.Enum(extract.DayLabels...)),
	mcp.WithNumber("limit", mcp.Description("Maximum number of trainings to return (default: 10)")),
	mcp.WithString("from_date", mcp.Description("From date, inclusive (YYYY-MM-DD)")),
	mcp.WithString("to_date", mcp.Description("To date, inclusive (YYYY-MM-DD)")),
	withFormat(),
)

var toolGetTrainingDetails = mcp.NewTool("get_training_details",
	mcp.WithDescription("Get the details of a specific training, including all exercises and sets."),
	mcp.WithString("date", mcp.Required(), mcp.Description("Date of the training (YYYY-MM-DD)")),
	mcp.WithString("day", mcp.Description("Day of the training (A/B/C/D)")),
	withFormat(),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Show the progression of a specific exercise over time."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Back Squat', 'Bench Press', 'Conventional Deadlift', 'Push Press')")),
	mcp.WithNumber("limit", mcp.Description("Number of data points (default: 10)")),
	withFormat(),
)

var toolGetStats = mcp.NewTool("get_stats",
	mcp.WithDescription("Get overall statistics: number of trainings, current program week, sessions this week, etc."),
	withFormat(),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Get personal records (PRs) for the main lifts."),
	withFormat(),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog."),
	mcp.WithString("query", mcp.Description("Search term (name or muscle group)")),
	mcp.WithString("pattern", mcp.Description("Filter by movement pattern"), mcp.Enum(models.MovementPatterns...)),
	withFormat(),
)

// --- Tool handlers ---

func (h *handlers) getTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return h.failed("get_trainings", err), nil
	}

	rows := query.ListTrainings(records, query.ListParams{
		Day:      req.GetString("day", ""),
		FromDate: req.GetString("from_date", ""),
		ToDate:   req.GetString("to_date", ""),
		Limit:    req.GetInt("limit", 0),
	})
	return respond(req, rows, render.Trainings), nil
}

func (h *handlers) getTrainingDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil || date == "" {
		return mcp.NewToolResultError("date parameter is required"), nil
	}

	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return h.failed("get_training_details", err), nil
	}

	detail, err := query.TrainingDetails(records, query.DetailParams{Date: date, Day: req.GetString("day", "")})
	if errors.Is(err, query.ErrNotFound) {
		return mcp.NewToolResultText(render.NoTraining(date)), nil
	}
	if err != nil {
		return h.failed("get_training_details", err), nil
	}
	return respond(req, detail, render.TrainingDetail), nil
}

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil || exercise == "" {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return h.failed("get_progress", err), nil
	}

	progress, err := query.ExerciseProgress(records, query.ProgressParams{Exercise: exercise, Limit: req.GetInt("limit", 0)})
	if errors.Is(err, query.ErrNoData) {
		return mcp.NewToolResultText(render.NoProgress(exercise)), nil
	}
	if err != nil {
		return h.failed("get_progress", err), nil
	}
	return respond(req, progress, render.Progress), nil
}

func (h *handlers) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return h.failed("get_stats", err), nil
	}

	stats, err := query.ComputeStats(records, h.now())
	if errors.Is(err, query.ErrNoData) {
		return mcp.NewToolResultText(render.NoTrainings), nil
	}
	if err != nil {
		return h.failed("get_stats", err), nil
	}
	return respond(req, stats, render.Stats), nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return h.failed("get_personal_records", err), nil
	}
	return respond(req, query.PersonalRecords(records), render.PersonalRecords), nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog, err := h.ds.LoadCatalog(ctx)
	if errors.Is(err, storage.ErrCatalogUnavailable) {
		h.log.Warn("mcp search_exercises: catalog unavailable", "error", err)
		return mcp.NewToolResultError(render.CatalogUnavailable), nil
	}
	if err != nil {
		return h.failed("search_exercises", err), nil
	}

	results, err := query.SearchExercises(catalog, query.SearchParams{
		Query:   req.GetString("query", ""),
		Pattern: req.GetString("pattern", ""),
	})
	if errors.Is(err, query.ErrNoResults) {
		return mcp.NewToolResultText(render.NoExercises), nil
	}
	if err != nil {
		return h.failed("search_exercises", err), nil
	}
	return respond(req, results, render.Exercises), nil
}

// failed logs err and turns it into a tool error result.
func (h *handlers) failed(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, query.ErrInvalidArgument) {
		return mcp.NewToolResultError(err.Error())
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

// respond renders v as markdown or, with format=json, as structured JSON.
func respond[T any](req mcp.CallToolRequest, v T, markdown func(T) string) *mcp.CallToolResult {
	switch req.GetString("format", formatMarkdown) {
	case formatMarkdown, "":
		return mcp.NewToolResultText(markdown(v))
	case formatJSON:
		result, err := mcp.NewToolResultJSON(v)
		if err != nil {
			return mcp.NewToolResultError("serialization failed")
		}
		return result
	default:
		return mcp.NewToolResultError("format must be markdown or json")
	}
}
