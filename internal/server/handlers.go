package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/doctxt/internal/extract"
	"github.com/hyperjump/doctxt/internal/keyword"
	"github.com/hyperjump/doctxt/internal/storage"
)

const defaultPageSize = 50

type extractResponse struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Status   string `json:"status"`
	Text     string `json:"text"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if maxMB := s.config.Server.MaxUploadMB; maxMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(maxMB)<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "document exceeds upload limit")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	format := extract.Detect(name)
	s.logger.Debug("extract request", zap.String("filename", name), zap.String("format", string(format)), zap.Int64("size", header.Size))
	if format == extract.FormatUnsupported {
		s.respondJSON(w, http.StatusUnsupportedMediaType, extractResponse{
			Filename: name,
			Format:   string(format),
			Status:   string(extract.StatusUnsupported),
			Error:    extract.ErrUnsupportedFormat.Error(),
		})
		return
	}

	// The extension selects the extractor, so the temp file keeps it.
	tmp, err := os.CreateTemp("", "doctxt-upload-*"+filepath.Ext(name))
	if err != nil {
		s.logger.Error("extract: create temp file failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}
	defer os.Remove(tmp.Name())
	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		s.logger.Error("extract: write temp file failed", zap.Error(errors.Join(copyErr, closeErr)))
		s.respondError(w, http.StatusInternalServerError, "cannot store upload")
		return
	}

	res := s.extractor.Extract(tmp.Name())
	resp := extractResponse{
		Filename: name,
		Format:   string(res.Format),
		Status:   string(res.Status),
		Text:     res.Text,
	}
	status := http.StatusOK
	if res.Status == extract.StatusFailed {
		status = http.StatusUnprocessableEntity
		msg := res.Err.Error()
		if cause := errors.Unwrap(res.Err); cause != nil {
			msg = cause.Error()
		}
		// Causes from the archive and file layers name the temp file; report the upload name.
		resp.Error = strings.ReplaceAll(msg, tmp.Name(), name)
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "output index not enabled")
		return
	}
	q := r.URL.Query()
	query := q.Get("q")
	limit, err := s.searchLimit(q.Get("limit"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := &keyword.SearchOptions{
		TitleBoost:   s.config.Search.TitleBoost,
		FuzzyEnabled: q.Get("fuzzy") == "true",
		Highlight:    q.Get("highlight") == "true",
	}
	s.logger.Debug("search request", zap.String("query", query), zap.Int("limit", limit))
	resp, err := s.index.Search(r.Context(), query, limit, opts)
	if err != nil {
		if errors.Is(err, keyword.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, "q is required")
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) searchLimit(raw string) (int, error) {
	limit := s.config.Search.DefaultLimit
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, errors.New("limit must be a positive integer")
		}
		limit = n
	}
	if maxLimit := s.config.Search.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit, nil
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		s.respondError(w, http.StatusNotImplemented, "manifest not enabled")
		return
	}
	run, err := s.manifest.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "no runs recorded")
			return
		}
		s.logger.Error("latest run failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		s.respondError(w, http.StatusNotImplemented, "manifest not enabled")
		return
	}
	q := r.URL.Query()
	offset, err := queryInt(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(q.Get("limit"), defaultPageSize)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	ctx := r.Context()
	records, err := s.manifest.ListExtractions(ctx, offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.manifest.CountExtractions(ctx)
	if err != nil {
		s.logger.Error("count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": records,
		"total":     total,
		"offset":    offset,
		"limit":     limit,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		s.respondError(w, http.StatusNotImplemented, "manifest not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.manifest.GetExtraction(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "document not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.manifest == nil {
		s.respondError(w, http.StatusNotImplemented, "manifest not enabled")
		return
	}
	report, err := BuildStatus(r.Context(), s.manifest, s.index, s.config.Storage)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
