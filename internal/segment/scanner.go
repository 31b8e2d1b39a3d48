// Package segment implements the heuristic question segmenter: a
// single-pass finite-state scanner over reading-order text blocks, plus the
// answer processor and the marks/type classifier that refine its output.
package segment

import (
	"strings"

	"github.com/shikshalabs/qpaper/constants"
	"github.com/shikshalabs/qpaper/internal/entity"
	"github.com/shikshalabs/qpaper/internal/layout"
)

// DraftQuestion is a question under construction during one scan, before
// final classification. QuestionNumber is the number printed in the
// document; 0 means none was detected.
type DraftQuestion struct {
	QuestionNumber int
	QuestionText   string
	Answer         string
	SubQuestions   []entity.SubQuestion
	Marks          *int
	Type           constants.QuestionType
	Difficulty     constants.Difficulty
	Page           int
}

type scanState int

const (
	stateScanning scanState = iota // no open question
	stateQuestionBody
	stateAnswerBody
)

// Scanner folds ordered blocks of one document into draft questions. At
// most one draft is open at a time; sub-questions attach only to it.
type Scanner struct {
	state   scanState
	current *DraftQuestion
	emitted []DraftQuestion
}

func NewScanner() *Scanner {
	return &Scanner{state: stateScanning}
}

// Feed advances the state machine by one block. A block may hold several
// physical lines; markers are detected per line so an answer marker in the
// middle of a block is not missed.
func (s *Scanner) Feed(block layout.TextBlock) {
	for _, line := range strings.Split(block.Text, "\n") {
		if text := strings.TrimSpace(line); text != "" {
			s.feedLine(text, block.Page)
		}
	}
}

func (s *Scanner) feedLine(text string, page int) {
	m := classifyMarker(text)
	switch m.kind {
	case markerInstruction:
		// boilerplate is discarded regardless of state

	case markerMainQuestion:
		s.emitCurrent()
		s.current = &DraftQuestion{
			QuestionNumber: m.number,
			QuestionText:   m.rest,
			Page:           page,
		}
		s.state = stateQuestionBody

	case markerAnswerStart:
		s.ensureOpen(page)
		s.appendAnswer(m.rest)
		s.state = stateAnswerBody

	case markerSubQuestion:
		// Sub-question detection wins over plain continuation. The scan
		// state is unaffected: an answer region stays open across sub-part
		// markers inside it.
		s.ensureOpen(page)
		s.current.SubQuestions = append(s.current.SubQuestions, entity.SubQuestion{
			Label: m.label,
			Text:  m.rest,
		})

	default:
		s.ensureOpen(page)
		if s.state == stateAnswerBody {
			s.appendAnswer(text)
		} else {
			s.appendQuestionText(text)
		}
	}
}

// Flush closes the open draft, if any, and returns everything emitted.
func (s *Scanner) Flush() []DraftQuestion {
	s.emitCurrent()
	s.state = stateScanning
	return s.emitted
}

// ensureOpen opens an implicit, unnumbered draft when content arrives
// before any main-question marker. A document with no numbering at all
// therefore yields a single draft holding the whole page.
func (s *Scanner) ensureOpen(page int) {
	if s.current == nil {
		s.current = &DraftQuestion{Page: page}
		s.state = stateQuestionBody
	}
}

func (s *Scanner) emitCurrent() {
	if s.current == nil {
		return
	}
	s.current.QuestionText = strings.TrimSpace(s.current.QuestionText)
	s.current.Answer = strings.TrimSpace(s.current.Answer)
	s.emitted = append(s.emitted, *s.current)
	s.current = nil
	s.state = stateScanning
}

func (s *Scanner) appendQuestionText(text string) {
	if s.current.QuestionText == "" {
		s.current.QuestionText = text
		return
	}
	s.current.QuestionText += " " + text
}

func (s *Scanner) appendAnswer(text string) {
	if text == "" {
		return
	}
	if s.current.Answer == "" {
		s.current.Answer = text
		return
	}
	s.current.Answer += " " + text
}

// Scan is the convenience fold: feed every block, then flush.
func Scan(blocks []layout.TextBlock) []DraftQuestion {
	sc := NewScanner()
	for _, b := range blocks {
		sc.Feed(b)
	}
	return sc.Flush()
}
