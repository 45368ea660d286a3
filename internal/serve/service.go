// Package serve exposes extraction over HTTP: GET /health, POST /parse and
// GET /extractions/{id}.
package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dtnitsch/llm-pdf-parser/internal/common"
	"github.com/dtnitsch/llm-pdf-parser/models"
	"github.com/dtnitsch/llm-pdf-parser/pkg/converter"
	"github.com/dtnitsch/llm-pdf-parser/pkg/db"
	"github.com/dtnitsch/llm-pdf-parser/pkg/processor"
)

// DefaultMaxBodyBytes bounds an uploaded document.
const DefaultMaxBodyBytes = 32 << 20

// Service handles extraction requests. database may be nil. SettingsHash
// is recorded with every extraction so the extract command can tell which
// stored results match its own settings.
type Service struct {
	SettingsHash string

	proc         *processor.Processor
	database     *db.DB
	logger       *slog.Logger
	maxBodyBytes int64
}

// New builds a Service.
func New(proc *processor.Processor, database *db.DB, logger *slog.Logger, maxBodyBytes int64) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Service{proc: proc, database: database, logger: logger, maxBodyBytes: maxBodyBytes}
}

// Router returns the chi router with every endpoint registered.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP registers the endpoints on r.
func (s *Service) RegisterHTTP(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Post("/parse", s.handleParse)
	r.Get("/extractions/{id}", s.handleGetExtraction)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"history": s.database != nil,
	})
}

// handleParse accepts either a raw body (format from ?format=, the
// Content-Type or the content itself) or a multipart upload in field "file"
// (format from the filename).
func (s *Service) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	data, filename, err := readUpload(r)
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, models.NewErrorResponse(err))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(errors.New("empty request body")))
		return
	}

	format, err := requestFormat(r, filename, data)
	if err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, models.NewErrorResponse(err))
		return
	}

	source := filename
	if source == "" {
		source = "upload." + string(format)
	}

	out := s.proc.Process(r.Context(), format, data, source)
	id := s.record(source, format, data, out)
	if id != "" {
		w.Header().Set("X-Extraction-ID", id)
	}

	if out.Err != nil {
		s.logger.Warn("parse.failed",
			"request_id", middleware.GetReqID(r.Context()),
			"source", source,
			"error_type", out.ErrorType,
			"error", out.Err,
		)
		writeJSON(w, statusFor(out.ErrorType), out.Response)
		return
	}

	s.logger.Info("parse.ok",
		"request_id", middleware.GetReqID(r.Context()),
		"source", source,
		"format", format,
		"elapsed_ms", out.Duration.Milliseconds(),
	)
	writeJSON(w, http.StatusOK, out.Response)
}

func (s *Service) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse(errors.New("extraction history is disabled")))
		return
	}
	e, err := s.database.GetExtraction(chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, db.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, models.NewErrorResponse(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Extraction-ID", e.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, e.ResultJSON.String)
}

func (s *Service) record(source string, format converter.Format, data []byte, out processor.Outcome) string {
	if s.database == nil {
		return ""
	}
	id, err := s.database.RecordExtraction(db.RecordInput{
		Source:       source,
		Format:       string(format),
		ContentHash:  common.ContentHash(data),
		SettingsHash: s.SettingsHash,
		Response:     out.Stored,
		Duration:     out.Duration,
	})
	if err != nil {
		s.logger.Warn("Failed to record extraction to DB", "source", source, "error", err)
		return ""
	}
	return id
}

func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read body: %w", err)
		}
		return data, "", nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload field \"file\": %w", err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	return data, filepath.Base(header.Filename), nil
}

func requestFormat(r *http.Request, filename string, data []byte) (converter.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		switch format := converter.Format(f); format {
		case converter.FormatJSON, converter.FormatMarkdown, converter.FormatHTML, converter.FormatPDF, converter.FormatText:
			return format, nil
		default:
			return "", fmt.Errorf("%w: %q", converter.ErrUnsupportedFormat, f)
		}
	}
	if filename != "" {
		return converter.Detect(filename)
	}
	return converter.Sniff(r.Header.Get("Content-Type"), data), nil
}

func statusFor(errorType string) int {
	switch errorType {
	case processor.ErrorTypeConversion, processor.ErrorTypeInput:
		return http.StatusUnprocessableEntity
	case processor.ErrorTypeCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewHTTPServer wraps handler with the server timeouts used by ServeAction.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
