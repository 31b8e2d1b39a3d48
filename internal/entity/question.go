package entity

import (
	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/constants"
)

// SubQuestion is a lettered or roman-numeral part nested under a question,
// e.g. "(a)" or "(ii)".
type SubQuestion struct {
	Label  string `json:"label"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// Question is one extracted exam question in final display order.
//
// QuestionNumber is the number printed in the source document, resolved
// best-effort (explicit marker > leading-text extraction > sequence
// fallback). Duplicates can occur under OCR noise and are tolerated.
type Question struct {
	ID             uuid.UUID              `json:"id,omitempty"`
	JobID          uuid.UUID              `json:"job_id,omitempty"`
	QuestionNumber int                    `json:"questionNumber"`
	QuestionText   string                 `json:"questionText"`
	Answer         string                 `json:"answer"`
	SubQuestions   []SubQuestion          `json:"subQuestions,omitempty"`
	Marks          *int                   `json:"marks"`
	Type           constants.QuestionType `json:"type"`
	Difficulty     constants.Difficulty   `json:"difficulty"`
	Year           *int                   `json:"year,omitempty"`
	Confidence     float32                `json:"confidence,omitempty"`
	Page           int                    `json:"page"`
}
