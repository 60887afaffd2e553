package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusError is a non-200 response.
type statusError struct {
	path string
	code int
	body []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %d: %s", e.path, e.code, e.body)
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{path: path, code: resp.StatusCode, body: body}
	}

	return body, nil
}

func (c *HTTPClient) LoadTrainings(ctx context.Context) ([]models.TrainingRecord, error) {
	body, err := c.get(ctx, "/api/v1/export/trainings")
	if err != nil {
		return nil, err
	}

	trainings := []models.TrainingRecord{}
	if err := json.Unmarshal(body, &trainings); err != nil {
		return nil, fmt.Errorf("httpclient: decode trainings: %w", err)
	}
	if trainings == nil {
		trainings = []models.TrainingRecord{}
	}
	return trainings, nil
}

func (c *HTTPClient) LoadCatalog(ctx context.Context) (models.Catalog, error) {
	body, err := c.get(ctx, "/api/v1/export/catalog")
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusServiceUnavailable {
			return nil, fmt.Errorf("%w: %w", storage.ErrCatalogUnavailable, err)
		}
		return nil, err
	}
	return storage.ParseCatalog(body)
}
