package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	mcpclient "github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/query"
	"github.com/claude/liftlog/internal/storage"
)

// fakeData is an in-memory data source.
type fakeData struct {
	trainings  []models.TrainingRecord
	catalog    models.Catalog
	loadErr    error
	catalogErr error
}

func (f *fakeData) LoadTrainings(context.Context) ([]models.TrainingRecord, error) {
	return f.trainings, f.loadErr
}

func (f *fakeData) LoadCatalog(context.Context) (models.Catalog, error) {
	return f.catalog, f.catalogErr
}

func squat(date string, week int, weight string) models.TrainingRecord {
	return models.TrainingRecord{
		Date: date, Day: "A", Lift: "Back Squat", Week: week,
		Exercises: []models.ExerciseEntry{{
			Name: "Back Squat",
			Sets: []models.SetEntry{{Weight: models.Quantity(weight), Reps: "5"}},
		}},
	}
}

func testData() *fakeData {
	return &fakeData{
		trainings: []models.TrainingRecord{
			squat("2024-01-01", 1, "100"),
			squat("2024-01-08", 2, "105"),
			{Date: "2024-01-10", IsCardio: true, CardioName: "Bike"},
		},
		catalog: models.Catalog{
			{Name: "Zercher Squat", Descriptor: models.ExerciseDescriptor{Muscles: []string{"quads"}, Pattern: "squat"}},
			{Name: "_meta"},
			{Name: "Bench Press", Descriptor: models.ExerciseDescriptor{Muscles: []string{"chest"}, Pattern: "push_horizontal"}},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, data *fakeData, imports Importer) *Server {
	t.Helper()
	s := New(Options{Data: data, Imports: imports, APIKey: "secret", Version: "test"}, quietLogger())
	s.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, testData(), nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTrainingsEndpoint(t *testing.T) {
	s := newTestServer(t, testData(), nil)

	rec := get(t, s, "/api/v1/trainings?day=A&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []query.TrainingSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-08", rows[0].Date)

	rec = get(t, s, "/api/v1/trainings?from=2024-01-02&to=2024-01-09")
	require.Equal(t, http.StatusOK, rec.Code)
	rows = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 1)

	rec = get(t, s, "/api/v1/trainings?limit=ten")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainingsMarkdown(t *testing.T) {
	rec := get(t, newTestServer(t, testData(), nil), "/api/v1/trainings?format=markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "## Trainings (3)")

	rec = get(t, newTestServer(t, testData(), nil), "/api/v1/trainings?format=xml")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusMapping(t *testing.T) {
	unavailable := testData()
	unavailable.catalogErr = fmt.Errorf("%w: open exercises.json: no such file", storage.ErrCatalogUnavailable)
	broken := &fakeData{loadErr: errors.New("disk on fire")}
	empty := &fakeData{trainings: []models.TrainingRecord{}}

	tests := []struct {
		name   string
		data   *fakeData
		target string
		want   int
	}{
		{"detail found", testData(), "/api/v1/trainings/2024-01-08", http.StatusOK},
		{"detail not found", testData(), "/api/v1/trainings/2099-01-01", http.StatusNotFound},
		{"progress found", testData(), "/api/v1/progress?exercise=Back%20Squat", http.StatusOK},
		{"progress no data", testData(), "/api/v1/progress?exercise=Front%20Squat", http.StatusNotFound},
		{"progress missing exercise", testData(), "/api/v1/progress", http.StatusBadRequest},
		{"stats", testData(), "/api/v1/stats", http.StatusOK},
		{"stats empty", empty, "/api/v1/stats", http.StatusNotFound},
		{"records", testData(), "/api/v1/records", http.StatusOK},
		{"exercises", testData(), "/api/v1/exercises?query=squat", http.StatusOK},
		{"exercises no results", testData(), "/api/v1/exercises?pattern=carry", http.StatusNotFound},
		{"catalog unavailable", unavailable, "/api/v1/exercises", http.StatusServiceUnavailable},
		{"export catalog unavailable", unavailable, "/api/v1/export/catalog", http.StatusServiceUnavailable},
		{"load failure", broken, "/api/v1/records", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.data, nil), tt.target)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want != http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestStatsUsesClock(t *testing.T) {
	rec := get(t, newTestServer(t, testData(), nil), "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats query.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 2, stats.LiftingSessions)
	assert.Equal(t, 1, stats.CardioSessions)
	assert.Equal(t, 2, stats.ThisWeek)
}

func TestSummary(t *testing.T) {
	rec := get(t, newTestServer(t, testData(), nil), "/api/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":3,"lifting":2,"cardio":1,"withHealth":0}`, rec.Body.String())
}

// TestExportCatalogKeepsOrder verifies that the catalog leaves the server in
// file order so remote clients truncate the same way.
func TestExportCatalogKeepsOrder(t *testing.T) {
	rec := get(t, newTestServer(t, testData(), nil), "/api/v1/export/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	catalog, err := storage.ParseCatalog(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "Zercher Squat", catalog[0].Name)
	assert.Equal(t, "_meta", catalog[1].Name)
	assert.Equal(t, "Bench Press", catalog[2].Name)
}

func TestExportTrainingsEmpty(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeData{}, nil), "/api/v1/export/trainings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testData(), nil)
	get(t, s, "/api/v1/trainings/2024-01-08")
	get(t, s, "/api/v1/trainings/2024-01-01")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `liftlog_http_requests_total{method="GET",route="/api/v1/trainings/{date}",status="200"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestImportRoutesDisabledWithoutStore(t *testing.T) {
	s := newTestServer(t, testData(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(`{}`))
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestImportEndpoint posts a gzipped export into SQLite, re-posts it to hit
// the same-hash skip, then reads the import log.
func TestImportEndpoint(t *testing.T) {
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "liftlog.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	s := newTestServer(t, testData(), store)
	export := `{"trainings": [{"date": "2024-01-01", "day": "A", "lift": "Back Squat"}, {"date": "2024-01-02", "isCardio": true, "cardioName": "Bike"}]}`

	post := func(key string, body []byte, gzipped bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(body))
		req.Header.Set("X-API-Key", key)
		if gzipped {
			req.Header.Set("Content-Encoding", "gzip")
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		return rec
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write([]byte(export))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rec := post("wrong", buf.Bytes(), true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = post("secret", buf.Bytes(), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result storage.ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 2, result.Received)
	assert.Equal(t, int64(2), result.Upserted)
	assert.False(t, result.Skipped)

	rec = post("secret", []byte(export), false)
	require.Equal(t, http.StatusOK, rec.Code)
	result = storage.ImportResult{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.Skipped)

	rec = post("secret", []byte(`{"trainings": 7}`), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=10", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var logs []storage.ImportLog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&logs))
	require.Len(t, logs, 2)
	assert.Equal(t, storage.ImportSkipped, logs[0].Status)
	assert.Equal(t, storage.ImportSuccess, logs[1].Status)
	assert.Equal(t, "api", logs[1].Source)

	trainings, err := store.LoadTrainings(ctx)
	require.NoError(t, err)
	assert.Len(t, trainings, 2)
}

// TestMCPOverHTTP drives the mounted streamable HTTP transport with a real
// MCP client.
func TestMCPOverHTTP(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, testData(), nil))
	defer ts.Close()

	c, err := mcpclient.NewStreamableHttpClient(ts.URL + "/mcp")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ctx := context.Background()
	initResult, err := c.Initialize(ctx, mcplib.InitializeRequest{
		Params: mcplib.InitializeParams{
			ClientInfo: mcplib.Implementation{Name: "test-client", Version: "1.0"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "liftlog-mcp-server", initResult.ServerInfo.Name)
	assert.Equal(t, "test", initResult.ServerInfo.Version)

	res, err := c.CallTool(ctx, mcplib.CallToolRequest{Params: mcplib.CallToolParams{
		Name:      "get_personal_records",
		Arguments: map[string]any{},
	}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "Back Squat")
	assert.Contains(t, text.Text, "105kg")
}
