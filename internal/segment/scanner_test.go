package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shikshalabs/qpaper/internal/layout"
)

func blocks(page int, texts ...string) []layout.TextBlock {
	out := make([]layout.TextBlock, len(texts))
	for i, t := range texts {
		out[i] = layout.TextBlock{Page: page, Text: t}
	}
	return out
}

func TestScanSplitsNumberedQuestions(t *testing.T) {
	drafts := Scan(blocks(1,
		"1. What is photosynthesis?",
		"Ans. The process by which plants make food.",
		"2. Define osmosis.",
		"Ans: Movement of water across a membrane.",
	))

	require.Len(t, drafts, 2)
	require.Equal(t, 1, drafts[0].QuestionNumber)
	require.Equal(t, "What is photosynthesis?", drafts[0].QuestionText)
	require.Equal(t, "The process by which plants make food.", drafts[0].Answer)
	require.Equal(t, 2, drafts[1].QuestionNumber)
	require.Equal(t, "Define osmosis.", drafts[1].QuestionText)
	require.Equal(t, "Movement of water across a membrane.", drafts[1].Answer)
}

func TestScanHandlesQPrefixMarkers(t *testing.T) {
	drafts := Scan(blocks(1, "Q3 State Ohm's law.", "q4. Define current."))

	require.Len(t, drafts, 2)
	require.Equal(t, 3, drafts[0].QuestionNumber)
	require.Equal(t, "State Ohm's law.", drafts[0].QuestionText)
	require.Equal(t, 4, drafts[1].QuestionNumber)
}

func TestScanDiscardsInstructionBlocks(t *testing.T) {
	drafts := Scan(blocks(1,
		"Answer the following questions. Time: 2 hours. Total Marks: 80",
		"1. Name the capital of France.",
		"General instructions apply to all sections.",
		"It is located on the Seine.",
	))

	require.Len(t, drafts, 1)
	require.Equal(t, "Name the capital of France. It is located on the Seine.", drafts[0].QuestionText)
}

func TestScanContinuationFollowsState(t *testing.T) {
	drafts := Scan(blocks(2,
		"5. Explain the water cycle",
		"with a labelled diagram.",
		"Ans. Water evaporates,",
		"condenses and precipitates.",
	))

	require.Len(t, drafts, 1)
	q := drafts[0]
	require.Equal(t, 5, q.QuestionNumber)
	require.Equal(t, 2, q.Page)
	require.Equal(t, "Explain the water cycle with a labelled diagram.", q.QuestionText)
	require.Equal(t, "Water evaporates, condenses and precipitates.", q.Answer)
}

func TestScanAttachesSubQuestions(t *testing.T) {
	drafts := Scan(blocks(1,
		"7. Answer both parts",
		"(a) Define velocity.",
		"(b) Define acceleration.",
		"Ans. (a) Rate of change of displacement (b) Rate of change of velocity",
	))

	require.Len(t, drafts, 1)
	q := drafts[0]
	require.Len(t, q.SubQuestions, 2)
	require.Equal(t, "a", q.SubQuestions[0].Label)
	require.Equal(t, "Define velocity.", q.SubQuestions[0].Text)
	require.Equal(t, "b", q.SubQuestions[1].Label)
}

func TestScanRomanNumeralSubQuestions(t *testing.T) {
	drafts := Scan(blocks(1,
		"8. Fill in the blanks",
		"(i) Water boils at ___.",
		"ii. Ice melts at ___.",
	))

	require.Len(t, drafts, 1)
	require.Len(t, drafts[0].SubQuestions, 2)
	require.Equal(t, "i", drafts[0].SubQuestions[0].Label)
	require.Equal(t, "ii", drafts[0].SubQuestions[1].Label)
}

func TestScanUnnumberedDocumentYieldsSingleDraft(t *testing.T) {
	drafts := Scan(blocks(1,
		"Discuss the causes of the French Revolution",
		"in your own words.",
	))

	require.Len(t, drafts, 1)
	require.Equal(t, 0, drafts[0].QuestionNumber)
	require.Equal(t, "Discuss the causes of the French Revolution in your own words.", drafts[0].QuestionText)
}

func TestScanEmptyInput(t *testing.T) {
	require.Empty(t, Scan(nil))
}

// Every block's content must land in exactly one question's body: the
// concatenation of each draft's text, sub-parts, and answer reproduces the
// input with only the marker tokens removed, so nothing is lost and nothing
// is duplicated across questions.
func TestScanAssignsEachBlockToExactlyOneQuestion(t *testing.T) {
	drafts := Scan(blocks(1,
		"1. State Newton's first law.",
		"Ans. A body remains at rest unless acted upon.",
		"2. Answer both parts",
		"(a) Define mass.",
		"(b) Define weight.",
		"Ans. (a) Quantity of matter (b) Force of gravity",
	))
	require.Len(t, drafts, 2)

	bodies := make([]string, len(drafts))
	for i, d := range drafts {
		parts := []string{d.QuestionText}
		for _, sq := range d.SubQuestions {
			parts = append(parts, sq.Text)
		}
		if d.Answer != "" {
			parts = append(parts, d.Answer)
		}
		bodies[i] = strings.Join(parts, " ")
	}

	require.Equal(t,
		"State Newton's first law. A body remains at rest unless acted upon.",
		bodies[0])
	require.Equal(t,
		"Answer both parts Define mass. Define weight. (a) Quantity of matter (b) Force of gravity",
		bodies[1])
}

func TestScanSplitsLinesWithinOneBlock(t *testing.T) {
	drafts := Scan(blocks(1, "1. What is air pressure?\nAns. Force per unit area."))

	require.Len(t, drafts, 1)
	require.Equal(t, 1, drafts[0].QuestionNumber)
	require.Equal(t, "What is air pressure?", drafts[0].QuestionText)
	require.Equal(t, "Force per unit area.", drafts[0].Answer)
}

func TestScanAnswerRegionDoesNotResumeQuestionText(t *testing.T) {
	drafts := Scan(blocks(1,
		"9. A question.",
		"Ans. first part.",
		"second part.",
	))

	require.Len(t, drafts, 1)
	require.Equal(t, "A question.", drafts[0].QuestionText)
	require.Equal(t, "first part. second part.", drafts[0].Answer)
}
