package pipeline

import (
	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/layout"
	"github.com/shikshalabs/qpaper/internal/segment"
)

// runHeuristic executes scan -> answer processing -> classification over
// the full ordered block sequence. Blocks arrive in reading order, so the
// emitted questions are already non-decreasing in page with scan order
// preserved within a page.
func runHeuristic(blocks []layout.TextBlock) []entity.Question {
	drafts := segment.Scan(blocks)
	drafts = segment.ProcessAnswers(drafts)
	drafts = segment.ClassifyMarksAndType(drafts)

	questions := make([]entity.Question, 0, len(drafts))
	for i, d := range drafts {
		number := d.QuestionNumber
		if number == 0 {
			// sequence fallback: explicit > inferred > emission order
			number = i + 1
		}
		questions = append(questions, entity.Question{
			QuestionNumber: number,
			QuestionText:   d.QuestionText,
			Answer:         d.Answer,
			SubQuestions:   d.SubQuestions,
			Marks:          d.Marks,
			Type:           d.Type,
			Difficulty:     d.Difficulty,
			Page:           d.Page,
		})
	}
	return questions
}
