package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/liftlog/internal/query"
)

func (h *handlers) trainings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, records)
}

func (h *handlers) stats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	records, err := h.ds.LoadTrainings(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, query.Summarize(records))
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
