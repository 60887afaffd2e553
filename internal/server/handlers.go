package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/query"
	"github.com/claude/liftlog/internal/render"
	"github.com/claude/liftlog/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTrainings(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rows := query.ListTrainings(records, query.ListParams{
		Day:      q.Get("day"),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
		Limit:    limit,
	})
	respond(w, r, rows, render.Trainings)
}

func (s *Server) handleTrainingDetail(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}

	detail, err := query.TrainingDetails(records, query.DetailParams{
		Date: chi.URLParam(r, "date"),
		Day:  r.URL.Query().Get("day"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, detail, render.TrainingDetail)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}

	progress, err := query.ExerciseProgress(records, query.ProgressParams{
		Exercise: r.URL.Query().Get("exercise"),
		Limit:    limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, progress, render.Progress)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}

	stats, err := query.ComputeStats(records, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, stats, render.Stats)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}
	respond(w, r, query.PersonalRecords(records), render.PersonalRecords)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.data.LoadCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	results, err := query.SearchExercises(catalog, query.SearchParams{
		Query:   q.Get("query"),
		Pattern: q.Get("pattern"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, r, results, render.Exercises)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, query.Summarize(records))
}

func (s *Server) handleExportTrainings(w http.ResponseWriter, r *http.Request) {
	records, ok := s.loadTrainings(w, r)
	if !ok {
		return
	}
	if records == nil {
		records = []models.TrainingRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleExportCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.data.LoadCatalog(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, err := storage.MarshalCatalog(catalog)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// loadTrainings writes a 500 and returns false when the source fails.
func (s *Server) loadTrainings(w http.ResponseWriter, r *http.Request) ([]models.TrainingRecord, bool) {
	records, err := s.data.LoadTrainings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return records, true
}

// writeError maps query outcomes and loading failures to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, query.ErrNotFound), errors.Is(err, query.ErrNoData), errors.Is(err, query.ErrNoResults):
		status = http.StatusNotFound
	case errors.Is(err, query.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrCatalogUnavailable):
		status = http.StatusServiceUnavailable
		s.log.Warn("catalog unavailable", "path", r.URL.Path, "error", err)
	default:
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// respond writes v as JSON, or as markdown with ?format=markdown.
func respond[T any](w http.ResponseWriter, r *http.Request, v T, markdown func(T) string) {
	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, v)
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(markdown(v)))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json or markdown"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// intParam parses an optional integer query parameter. Absent means 0.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}
