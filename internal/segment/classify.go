package segment

import (
	"regexp"
	"strconv"

	"github.com/shikshalabs/qpaper/constants"
)

// marksPatterns is the ordered list tried in sequence until one matches:
// "(2m)", "(2 marks)", "[3m]", "-2m". First match wins and the matched
// span is stripped from the question text, so a second pass is a no-op.
var marksPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\((\d{1,2})\s*m\)`),
	regexp.MustCompile(`(?i)\((\d{1,2})\s*marks?\)`),
	regexp.MustCompile(`(?i)\[(\d{1,2})\s*m\]`),
	regexp.MustCompile(`(?i)-\s*(\d{1,2})\s*m\b`),
}

var (
	mcqParenOptionRe = regexp.MustCompile(`(?i)\([a-d]\)`)
	mcqUpperOptionRe = regexp.MustCompile(`\b[A-D]\.`)
	numericalRe      = regexp.MustCompile(`[0-9][0-9 ]*[+\-×x*/=]`)
)

// Length thresholds for the fallback type classification.
const (
	veryShortMaxLen = 80
	shortMaxLen     = 150
)

// ClassifyMarksAndType derives marks, question type, and difficulty for
// every draft. Difficulty is a heuristic default, advisory only.
func ClassifyMarksAndType(drafts []DraftQuestion) []DraftQuestion {
	out := make([]DraftQuestion, len(drafts))
	for i, q := range drafts {
		if marks, cleaned, ok := extractMarks(q.QuestionText); ok {
			q.Marks = &marks
			q.QuestionText = cleaned
		}
		q.Type = detectType(q)
		q.Difficulty = DeriveDifficulty(q.Marks, q.Type)
		out[i] = q
	}
	return out
}

// extractMarks tries each marks pattern in order; on the first match it
// returns the value and the question text with the matched span removed.
func extractMarks(text string) (int, string, bool) {
	for _, re := range marksPatterns {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		n, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || n < 1 {
			continue
		}
		cleaned := cleanText(text[:loc[0]] + " " + text[loc[1]:])
		return n, cleaned, true
	}
	return 0, text, false
}

func detectType(q DraftQuestion) constants.QuestionType {
	if isMCQ(q.QuestionText) {
		return constants.TypeMCQ
	}
	if numericalRe.MatchString(q.QuestionText + " " + q.Answer) {
		return constants.TypeNumerical
	}
	if len(q.SubQuestions) > 0 {
		return constants.TypeStructured
	}
	switch n := len(q.QuestionText); {
	case n < veryShortMaxLen:
		return constants.TypeVeryShort
	case n < shortMaxLen:
		return constants.TypeShort
	default:
		return constants.TypeLong
	}
}

func isMCQ(text string) bool {
	return mcqParenOptionRe.MatchString(text) || mcqUpperOptionRe.MatchString(text)
}

// DeriveDifficulty is the shared difficulty heuristic: marks dominate, then
// type. Advisory only; downstream consumers must not treat it as a scored
// assessment.
func DeriveDifficulty(marks *int, t constants.QuestionType) constants.Difficulty {
	if marks != nil {
		if *marks >= 5 {
			return constants.DifficultyHard
		}
		if *marks >= 3 {
			return constants.DifficultyMedium
		}
	}
	switch t {
	case constants.TypeNumerical:
		return constants.DifficultyMedium
	case constants.TypeVeryShort:
		return constants.DifficultyEasy
	}
	return constants.DifficultyMedium
}
