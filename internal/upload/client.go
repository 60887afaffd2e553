package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
)

// Result mirrors the server's import response without importing the storage
// package (which would pull in pgx and other server-side dependencies).
type Result struct {
	LogID    uuid.UUID `json:"log_id"`
	Received int       `json:"received"`
	Upserted int64     `json:"upserted"`
	Removed  int64     `json:"removed"`
	Skipped  bool      `json:"skipped"`
}

// Client sends exports to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// Gzip compresses an export body for SendExport.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing export: %w", err)
	}
	return buf.Bytes(), nil
}

// SendExport POSTs a gzip-compressed export to the server's import endpoint.
// Retries up to 3 times with exponential backoff on network errors and 5xx
// responses. 4xx responses are not retried.
func (c *Client) SendExport(ctx context.Context, gzipped []byte, force bool) (*Result, error) {
	url := c.serverURL + "/api/v1/import"
	if force {
		url += "?force=true"
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		result, retry, err := c.post(ctx, url, gzipped)
		if err == nil {
			return result, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte) (*Result, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("import failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(respBody))
		return nil, resp.StatusCode >= http.StatusInternalServerError, err
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, false, fmt.Errorf("decoding import response: %w", err)
	}
	return &result, false, nil
}
