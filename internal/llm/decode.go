package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shikshalabs/qpaper/constants"
)

// ErrContractViolation marks a model response that does not satisfy the
// output contract (not JSON, or JSON without a questions array). The shape
// violation means the response cannot be trusted at all; callers must fail
// the page, never patch around it.
var ErrContractViolation = errors.New("model response violates output contract")

const defaultModelConfidence = 0.5

var (
	// "Ans." text that leaked into questionText; everything after it belongs
	// to the answer region and is dropped from the question.
	leakedAnswerRe = regexp.MustCompile(`(?i)\s+Ans\.?\s*.*$`)
	answerPrefixRe = regexp.MustCompile(`(?i)^Ans(?:wer)?\b[.:\-]?\s*`)
	leadingNumRe   = regexp.MustCompile(`^(\d+)[.):\-]\s*`)
)

// rawQuestion tolerates the loose typing models produce before we pin
// defaults down.
type rawQuestion struct {
	QuestionNumber *int     `json:"questionNumber"`
	QuestionText   string   `json:"questionText"`
	Answer         string   `json:"answer"`
	Marks          *int     `json:"marks"`
	Type           *string  `json:"type"`
	Year           *int     `json:"year"`
	Confidence     *float32 `json:"confidence"`
}

type segmentResponse struct {
	Questions *[]rawQuestion `json:"questions"`
}

// DecodeSegmentResponse parses one model response for one page. Code-fence
// markers are stripped first, then the payload must decode to an
// object with a questions array; anything else is ErrContractViolation.
// Each returned item is normalized: defaults filled, leaked answer text
// removed, and a missing questionNumber repaired from a leading number in
// the question text. Items whose number stays 0 carry no printed number;
// the caller applies the within-page index fallback after recording
// numbering continuity.
func DecodeSegmentResponse(raw string) ([]PageQuestion, error) {
	cleaned := StripCodeFences(raw)

	var resp segmentResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	if resp.Questions == nil {
		return nil, fmt.Errorf("%w: missing questions array", ErrContractViolation)
	}

	out := make([]PageQuestion, 0, len(*resp.Questions))
	for _, rq := range *resp.Questions {
		out = append(out, normalizeQuestion(rq))
	}
	return out, nil
}

// StripCodeFences removes ```json fencing a model may wrap around its
// output despite instructions.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func normalizeQuestion(rq rawQuestion) PageQuestion {
	q := PageQuestion{
		QuestionText: strings.TrimSpace(rq.QuestionText),
		Answer:       strings.TrimSpace(rq.Answer),
		Marks:        rq.Marks,
		Year:         rq.Year,
		Type:         string(constants.TypeOther),
		Confidence:   defaultModelConfidence,
	}
	if rq.Type != nil && strings.TrimSpace(*rq.Type) != "" {
		q.Type = strings.TrimSpace(*rq.Type)
	}
	if rq.Confidence != nil {
		q.Confidence = *rq.Confidence
	}

	// Trim answer text that leaked into the question, and marker prefixes
	// that leaked into the answer.
	q.QuestionText = strings.TrimSpace(leakedAnswerRe.ReplaceAllString(q.QuestionText, ""))
	q.Answer = strings.TrimSpace(answerPrefixRe.ReplaceAllString(q.Answer, ""))

	switch {
	case rq.QuestionNumber != nil && *rq.QuestionNumber > 0:
		q.QuestionNumber = *rq.QuestionNumber
		// A leading number in the text duplicating the marker is dropped.
		q.QuestionText = strings.TrimSpace(leadingNumRe.ReplaceAllString(q.QuestionText, ""))
	default:
		if m := leadingNumRe.FindStringSubmatch(q.QuestionText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				q.QuestionNumber = n
				q.QuestionText = strings.TrimSpace(leadingNumRe.ReplaceAllString(q.QuestionText, ""))
			}
		}
	}
	return q
}
