// Package pipeline is the extraction orchestrator: it turns raw layout
// output for one document into the final question list, through either the
// heuristic or the AI-assisted strategy.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/layout"
	"github.com/shikshalabs/qpaper/internal/llm"
	"github.com/shikshalabs/qpaper/internal/ocr"
)

// Strategy selects one of the two extraction paths. They are mutually
// exclusive per document; the caller picks, the orchestrator never blends
// their outputs.
type Strategy string

const (
	StrategyHeuristic  Strategy = "HEURISTIC"
	StrategyAIAssisted Strategy = "AI_ASSISTED"
)

// ParseStrategy maps a request/config label onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToUpper(strings.TrimSpace(s))) {
	case StrategyHeuristic:
		return StrategyHeuristic, nil
	case StrategyAIAssisted:
		return StrategyAIAssisted, nil
	}
	return "", fmt.Errorf("unknown extraction strategy %q", s)
}

// Extractor is the single entry point for one document's extraction run.
type Extractor struct {
	logger    *slog.Logger
	segmenter llm.PageSegmenter
}

// NewExtractor builds an orchestrator. The segmenter may be nil when only
// the heuristic strategy is used; selecting StrategyAIAssisted without one
// is an error at Run time.
func NewExtractor(logger *slog.Logger, segmenter llm.PageSegmenter) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, segmenter: segmenter}
}

// Run normalizes the document's layout once, dispatches the selected
// strategy, and returns questions in final display order. A run that finds
// no questions returns an empty, non-nil slice and a nil error: "no
// questions found" is a legitimate outcome, distinct from failure.
func (e *Extractor) Run(ctx context.Context, shards []ocr.Shard, strategy Strategy) ([]entity.Question, error) {
	blocks := layout.Normalize(shards)
	e.logger.Info("extract.start", "strategy", string(strategy), "blocks", len(blocks))

	if len(blocks) == 0 {
		e.logger.Info("extract.no_questions", "strategy", string(strategy), "reason", "no text blocks")
		return []entity.Question{}, nil
	}

	var (
		questions []entity.Question
		err       error
	)
	switch strategy {
	case StrategyHeuristic:
		questions = runHeuristic(blocks)
	case StrategyAIAssisted:
		if e.segmenter == nil {
			return nil, fmt.Errorf("strategy %s requires a page segmenter", strategy)
		}
		questions, err = e.runAI(ctx, layout.GroupByPage(blocks))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", strategy)
	}

	if len(questions) == 0 {
		e.logger.Info("extract.no_questions", "strategy", string(strategy))
		return []entity.Question{}, nil
	}

	e.logger.Info("extract.done", "strategy", string(strategy), "questions", len(questions))
	return questions, nil
}
