package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/internal/async"
	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/ocr"
	"github.com/shikshalabs/qpaper/internal/pipeline"
)

// submitDocumentRequest carries one document's layout-engine output plus
// extraction options. Strategy falls back to the server default when empty.
type submitDocumentRequest struct {
	Name     string      `json:"name"`
	Strategy string      `json:"strategy,omitempty"`
	Shards   []ocr.Shard `json:"shards"`
}

type submitDocumentResponse struct {
	Document *entity.Document   `json:"document"`
	Job      *entity.ExtractJob `json:"job"`
}

func (h *Handler) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeError(w, common.NewAppError("BAD_REQUEST", "name is required", common.ErrInvalidInput))
		return
	}
	if len(req.Shards) == 0 {
		h.writeError(w, common.NewAppError("BAD_REQUEST", "shards are required", common.ErrInvalidInput))
		return
	}

	strategyLabel := req.Strategy
	if strategyLabel == "" {
		strategyLabel = h.defaultStrategy
	}
	strategy, err := pipeline.ParseStrategy(strategyLabel)
	if err != nil {
		h.writeError(w, common.NewAppError("BAD_REQUEST", err.Error(), common.ErrInvalidInput))
		return
	}

	pageCount := 0
	for _, shard := range req.Shards {
		pageCount += len(shard.Pages)
	}

	doc, err := h.documents.Create(r.Context(), name, pageCount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	job, err := h.jobs.Create(r.Context(), doc.ID, string(strategy))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.queue.Enqueue(r.Context(), async.Job{
		JobID:       job.ID,
		Strategy:    strategy,
		Shards:      req.Shards,
		SubmittedAt: time.Now(),
		TraceID:     middleware.GetReqID(r.Context()),
	}); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("document accepted", "document_id", doc.ID, "job_id", job.ID,
		"strategy", string(strategy), "pages", pageCount)
	writeJSON(w, http.StatusAccepted, submitDocumentResponse{Document: doc, Job: job})
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	questions, err := h.questions.ListByJob(r.Context(), job.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job":       job,
		"questions": questions,
	})
}

func (h *Handler) handleExportQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := h.documents.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	job, err := h.jobs.LatestCompletedForDocument(r.Context(), doc.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data, err := h.exporter.ExportQuestionsXLSX(r.Context(), job.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name+"-questions.xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.NewAppError("BAD_REQUEST", "id must be a UUID", common.ErrInvalidInput)
	}
	return id, nil
}
