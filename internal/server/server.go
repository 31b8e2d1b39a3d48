// Package server is the HTTP surface: document submission, job polling,
// result retrieval, and XLSX export.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shikshalabs/qpaper/internal/async"
	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/export"
	"github.com/shikshalabs/qpaper/internal/repository"
)

type Handler struct {
	documents repository.DocumentRepository
	jobs      repository.ExtractJobRepository
	questions repository.QuestionRepository
	exporter  *export.Service
	queue     async.Queue

	defaultStrategy string
	logger          *slog.Logger
}

func NewHandler(
	documents repository.DocumentRepository,
	jobs repository.ExtractJobRepository,
	questions repository.QuestionRepository,
	exporter *export.Service,
	queue async.Queue,
	defaultStrategy string,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		documents:       documents,
		jobs:            jobs,
		questions:       questions,
		exporter:        exporter,
		queue:           queue,
		defaultStrategy: defaultStrategy,
		logger:          logger,
	}
}

// Router builds the chi router with all routes attached.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/documents", h.handleSubmitDocument)
		r.Get("/documents/{id}/questions.xlsx", h.handleExportQuestions)
		r.Get("/jobs/{id}", h.handleGetJob)
		r.Get("/jobs/{id}/questions", h.handleListQuestions)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps application errors onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, common.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
