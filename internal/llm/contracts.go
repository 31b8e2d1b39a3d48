// Package llm defines the contract with the external language model used by
// the AI-assisted segmenter, and the strict decoding of its responses.
package llm

import (
	"context"

	"github.com/shikshalabs/qpaper/internal/layout"
)

// SegmentRequest is one per-page segmentation call. LastQuestionNumber is
// the highest printed question number seen on earlier pages; it is prompt
// context only. The model must report the document's own numbering, not a
// per-page restart.
type SegmentRequest struct {
	Page               int
	Blocks             []layout.TextBlock
	LastQuestionNumber int
}

// PageQuestion is the normalized shape of one question returned by the
// model for a page.
type PageQuestion struct {
	QuestionNumber int     `json:"questionNumber"` // 0 when the model gave none
	QuestionText   string  `json:"questionText"`
	Answer         string  `json:"answer"`
	Marks          *int    `json:"marks"`
	Type           string  `json:"type"`
	Year           *int    `json:"year"`
	Confidence     float32 `json:"confidence"`
}

// PageSegmenter is the interface the AI extraction path depends on.
type PageSegmenter interface {
	SegmentPage(ctx context.Context, req SegmentRequest) ([]PageQuestion, error)
}
