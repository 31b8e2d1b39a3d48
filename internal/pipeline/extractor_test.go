package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/qpaper/constants"
	"github.com/shikshalabs/qpaper/internal/layout"
	"github.com/shikshalabs/qpaper/internal/llm"
	"github.com/shikshalabs/qpaper/internal/ocr"
)

// fakeSegmenter replays canned per-page responses and records the requests
// it received, so tests can assert on the continuity hints.
type fakeSegmenter struct {
	responses map[int][]llm.PageQuestion
	errs      map[int]error
	requests  []llm.SegmentRequest
}

func (f *fakeSegmenter) SegmentPage(_ context.Context, req llm.SegmentRequest) ([]llm.PageQuestion, error) {
	f.requests = append(f.requests, req)
	if err := f.errs[req.Page]; err != nil {
		return nil, err
	}
	return f.responses[req.Page], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shardWithBlock(text string, y float64) ocr.Shard {
	return ocr.Shard{
		Text: text,
		Pages: []ocr.Page{{
			Paragraphs: []ocr.Element{{
				Layout: ocr.Layout{
					TextAnchor: ocr.TextAnchor{
						TextSegments: []ocr.TextSegment{{StartIndex: 0, EndIndex: int64(len(text))}},
					},
					BoundingPoly: ocr.BoundingPoly{
						NormalizedVertices: []ocr.Vertex{{X: 0.1, Y: y}},
					},
				},
			}},
		}},
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("heuristic")
	require.NoError(t, err)
	assert.Equal(t, StrategyHeuristic, s)

	s, err = ParseStrategy(" AI_ASSISTED ")
	require.NoError(t, err)
	assert.Equal(t, StrategyAIAssisted, s)

	_, err = ParseStrategy("hybrid")
	require.Error(t, err)
}

func TestRunHeuristicEndToEnd(t *testing.T) {
	e := NewExtractor(testLogger(), nil)

	shards := []ocr.Shard{shardWithBlock("1. What is air pressure? (2 marks)\nAns. Force per unit area.", 0.1)}
	questions, err := e.Run(context.Background(), shards, StrategyHeuristic)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, 1, q.QuestionNumber)
	assert.Equal(t, "What is air pressure?", q.QuestionText)
	assert.Equal(t, "Force per unit area.", q.Answer)
	require.NotNil(t, q.Marks)
	assert.Equal(t, 2, *q.Marks)
	assert.Equal(t, 1, q.Page)
}

func TestRunEmptyDocumentIsNotAnError(t *testing.T) {
	e := NewExtractor(testLogger(), nil)

	questions, err := e.Run(context.Background(), nil, StrategyHeuristic)
	require.NoError(t, err)
	require.NotNil(t, questions)
	assert.Empty(t, questions)
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	e := NewExtractor(testLogger(), nil)
	shards := []ocr.Shard{shardWithBlock("1. Question?", 0.1)}

	_, err := e.Run(context.Background(), shards, Strategy("HYBRID"))
	require.Error(t, err)
}

func TestRunAIWithoutSegmenterFails(t *testing.T) {
	e := NewExtractor(testLogger(), nil)
	shards := []ocr.Shard{shardWithBlock("1. Question?", 0.1)}

	_, err := e.Run(context.Background(), shards, StrategyAIAssisted)
	require.Error(t, err)
}

func TestHeuristicSequenceFallbackForUnnumberedDraft(t *testing.T) {
	blocks := []layout.TextBlock{
		{Page: 1, Text: "Explain the water cycle in detail with a labelled diagram."},
	}
	questions := runHeuristic(blocks)
	require.Len(t, questions, 1)
	assert.Equal(t, 1, questions[0].QuestionNumber)
}

func TestRunAICarriesNumberingAcrossPages(t *testing.T) {
	seg := &fakeSegmenter{
		responses: map[int][]llm.PageQuestion{
			1: {
				{QuestionNumber: 21, QuestionText: "Define osmosis.", Confidence: 0.9},
				{QuestionNumber: 22, QuestionText: "Define diffusion.", Confidence: 0.9},
			},
			2: {
				{QuestionNumber: 23, QuestionText: "Compare the two.", Confidence: 0.9},
			},
		},
	}
	e := NewExtractor(testLogger(), seg)

	pages := []layout.PageBlocks{
		{Page: 1, Blocks: []layout.TextBlock{{Page: 1, Text: "21. Define osmosis."}}},
		{Page: 2, Blocks: []layout.TextBlock{{Page: 2, Text: "23. Compare the two."}}},
	}
	questions, err := e.runAI(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	require.Len(t, seg.requests, 2)
	assert.Equal(t, 0, seg.requests[0].LastQuestionNumber)
	assert.Equal(t, 22, seg.requests[1].LastQuestionNumber, "highest number from page 1 carried forward")

	assert.Equal(t, []int{21, 22, 23}, []int{
		questions[0].QuestionNumber, questions[1].QuestionNumber, questions[2].QuestionNumber,
	})
}

func TestRunAIContractViolationAbortsRun(t *testing.T) {
	seg := &fakeSegmenter{
		responses: map[int][]llm.PageQuestion{
			1: {{QuestionNumber: 1, QuestionText: "Fine."}},
		},
		errs: map[int]error{
			2: fmt.Errorf("decode: %w", llm.ErrContractViolation),
		},
	}
	e := NewExtractor(testLogger(), seg)

	pages := []layout.PageBlocks{
		{Page: 1, Blocks: []layout.TextBlock{{Page: 1, Text: "1. Fine."}}},
		{Page: 2, Blocks: []layout.TextBlock{{Page: 2, Text: "garbled"}}},
	}
	_, err := e.runAI(context.Background(), pages)
	require.ErrorIs(t, err, llm.ErrContractViolation)
}

func TestRunAIStopsOnCancelledContext(t *testing.T) {
	seg := &fakeSegmenter{}
	e := NewExtractor(testLogger(), seg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []layout.PageBlocks{{Page: 1, Blocks: []layout.TextBlock{{Page: 1, Text: "1. Q"}}}}
	_, err := e.runAI(ctx, pages)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seg.requests, "no model call after cancellation")
}

func TestRunAINumberedSortBeforeNumberless(t *testing.T) {
	seg := &fakeSegmenter{
		responses: map[int][]llm.PageQuestion{
			1: {
				{QuestionNumber: 0, QuestionText: "Read the passage below."},
				{QuestionNumber: 3, QuestionText: "Third question."},
			},
			2: {
				{QuestionNumber: 1, QuestionText: "First question."},
			},
		},
	}
	e := NewExtractor(testLogger(), seg)

	pages := []layout.PageBlocks{
		{Page: 1, Blocks: []layout.TextBlock{{Page: 1, Text: "x"}}},
		{Page: 2, Blocks: []layout.TextBlock{{Page: 2, Text: "y"}}},
	}
	questions, err := e.runAI(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, "First question.", questions[0].QuestionText)
	assert.Equal(t, "Third question.", questions[1].QuestionText)
	assert.Equal(t, "Read the passage below.", questions[2].QuestionText, "numberless items sort last")
	assert.Equal(t, 1, questions[2].QuestionNumber, "positional fallback within its page")
}

func TestRunAITypeAndDifficultyDerivation(t *testing.T) {
	marks := 5
	seg := &fakeSegmenter{
		responses: map[int][]llm.PageQuestion{
			1: {{
				QuestionNumber: 1,
				QuestionText:   "Derive the lens formula.",
				Marks:          &marks,
				Type:           "long",
				Confidence:     0.85,
			}},
		},
	}
	e := NewExtractor(testLogger(), seg)

	pages := []layout.PageBlocks{{Page: 1, Blocks: []layout.TextBlock{{Page: 1, Text: "x"}}}}
	questions, err := e.runAI(context.Background(), pages)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, constants.TypeLong, q.Type)
	assert.Equal(t, constants.DifficultyHard, q.Difficulty)
	assert.InDelta(t, 0.85, float64(q.Confidence), 1e-6)
}
