package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/constants"
)

// ExtractJob represents one extraction run over a document.
type ExtractJob struct {
	ID            uuid.UUID           `json:"id"`
	DocumentID    uuid.UUID           `json:"document_id"`
	Strategy      string              `json:"strategy"` // HEURISTIC | AI_ASSISTED
	Status        constants.JobStatus `json:"status"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    *time.Time          `json:"finished_at,omitempty"`
	ErrorMessage  *string             `json:"error_message,omitempty"`
	QuestionCount int                 `json:"question_count"`
}
