package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/shikshalabs/qpaper/constants"
	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/layout"
	"github.com/shikshalabs/qpaper/internal/llm"
	"github.com/shikshalabs/qpaper/internal/segment"
)

// aiQuestion pairs a question with whether its number was printed on the
// page or assigned as a positional fallback. Numbered items sort ahead of
// fallback-numbered ones.
type aiQuestion struct {
	entity.Question
	numbered bool
}

// runAI folds the model over pages in ascending order, carrying the highest
// printed question number forward so numbering continues across page
// boundaries instead of restarting. Any per-page failure (transport, contract
// violation) aborts the whole run; partial documents are worse than a clean
// failure the caller can retry.
func (e *Extractor) runAI(ctx context.Context, pages []layout.PageBlocks) ([]entity.Question, error) {
	var (
		collected          []aiQuestion
		lastQuestionNumber int
	)

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageQuestions, err := e.segmenter.SegmentPage(ctx, llm.SegmentRequest{
			Page:               page.Page,
			Blocks:             page.Blocks,
			LastQuestionNumber: lastQuestionNumber,
		})
		if err != nil {
			return nil, fmt.Errorf("segment page %d: %w", page.Page, err)
		}
		e.logger.Info("extract.ai.page", "page", page.Page, "questions", len(pageQuestions),
			"last_question_number", lastQuestionNumber)

		for i, pq := range pageQuestions {
			number := pq.QuestionNumber
			numbered := number > 0
			if number > lastQuestionNumber {
				lastQuestionNumber = number
			}
			if !numbered {
				// no printed number: fall back to position within the page
				number = i + 1
			}
			collected = append(collected, aiQuestion{
				Question: toQuestion(pq, number, page.Page),
				numbered: numbered,
			})
		}
	}

	return sortAIQuestions(collected), nil
}

func toQuestion(pq llm.PageQuestion, number, page int) entity.Question {
	qType := constants.CanonicalType(pq.Type)
	return entity.Question{
		QuestionNumber: number,
		QuestionText:   pq.QuestionText,
		Answer:         pq.Answer,
		Marks:          pq.Marks,
		Type:           qType,
		Difficulty:     segment.DeriveDifficulty(pq.Marks, qType),
		Year:           pq.Year,
		Confidence:     pq.Confidence,
		Page:           page,
	}
}

// sortAIQuestions orders printed-number questions by (number, page), then
// fallback-numbered ones by page. The stable sort keeps within-page model
// order for ties.
func sortAIQuestions(collected []aiQuestion) []entity.Question {
	sort.SliceStable(collected, func(i, j int) bool {
		a, b := collected[i], collected[j]
		if a.numbered != b.numbered {
			return a.numbered
		}
		if a.numbered {
			if a.QuestionNumber != b.QuestionNumber {
				return a.QuestionNumber < b.QuestionNumber
			}
			return a.Page < b.Page
		}
		return a.Page < b.Page
	})

	questions := make([]entity.Question, len(collected))
	for i, q := range collected {
		questions[i] = q.Question
	}
	return questions
}
