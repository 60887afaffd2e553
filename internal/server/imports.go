package server

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// maxImportBytes bounds an uploaded export after decompression.
const maxImportBytes = 64 << 20

// Importer is a database store that accepts exports over HTTP.
type Importer interface {
	Import(ctx context.Context, exp *models.Export, opts storage.ImportOptions) (*storage.ImportResult, error)
	ImportLogs(ctx context.Context, limit int) ([]storage.ImportLog, error)
}

var (
	_ Importer = (*storage.SQLiteStore)(nil)
	_ Importer = (*storage.PostgresStore)(nil)
)

// handleImport accepts a LiftLog export body, optionally gzip-encoded.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = r.Body
	if r.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid gzip body: " + err.Error()})
			return
		}
		defer zr.Close()
		body = zr
	}

	data, err := io.ReadAll(io.LimitReader(body, maxImportBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	if len(data) > maxImportBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "export too large"})
		return
	}

	exp, err := storage.ParseExport(data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid export: " + err.Error()})
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	result, err := s.imports.Import(r.Context(), exp, storage.ImportOptions{
		Source: "api",
		Hash:   storage.HashBytes(data),
		Force:  force,
	})
	if err != nil {
		s.log.Error("import error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("export imported",
		"received", result.Received,
		"upserted", result.Upserted,
		"removed", result.Removed,
		"skipped", result.Skipped,
	)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.imports.ImportLogs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
