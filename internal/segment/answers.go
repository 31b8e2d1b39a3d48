package segment

import (
	"regexp"
	"strings"

	"github.com/shikshalabs/qpaper/internal/entity"
)

var (
	collapseRe   = regexp.MustCompile(`\s+`)
	dotSpaceRe   = regexp.MustCompile(`\s+\.`)
	subAnswersRe = regexp.MustCompile(`(?i)(^|\s)\(?([a-z]|[ivx]{1,3})\)?[.)]\s+`)
)

// ProcessAnswers cleans question/answer text and, when a question has
// sub-parts AND its accumulated answer carries explicit per-part labels,
// distributes the answer across the matching sub-questions. Without
// explicit labels the whole answer stays on the parent and sub-answers
// remain empty: attribution is never invented.
func ProcessAnswers(drafts []DraftQuestion) []DraftQuestion {
	out := make([]DraftQuestion, len(drafts))
	for i, q := range drafts {
		q.QuestionText = cleanText(q.QuestionText)
		q.Answer = cleanText(StripAnswerPrefix(q.Answer))

		if len(q.SubQuestions) > 0 && subAnswersRe.MatchString(q.Answer) {
			q.SubQuestions = attachSubAnswers(q.SubQuestions, q.Answer)
			q.Answer = ""
		}
		out[i] = q
	}
	return out
}

func cleanText(s string) string {
	s = collapseRe.ReplaceAllString(s, " ")
	s = dotSpaceRe.ReplaceAllString(s, ".")
	return strings.TrimSpace(s)
}

// attachSubAnswers splits the answer at each labeled marker and assigns the
// following segment to the sub-question with that label (case-insensitive).
// Labels with no matching sub-question are dropped; sub-questions with no
// matching label keep an empty answer.
func attachSubAnswers(subs []entity.SubQuestion, answer string) []entity.SubQuestion {
	byLabel := make(map[string]string)

	locs := subAnswersRe.FindAllStringSubmatchIndex(answer, -1)
	for i, loc := range locs {
		label := strings.ToLower(answer[loc[4]:loc[5]])
		segStart := loc[1] // end of the whole marker match
		segEnd := len(answer)
		if i+1 < len(locs) {
			segEnd = locs[i+1][0]
		}
		byLabel[label] = strings.TrimSpace(answer[segStart:segEnd])
	}

	out := make([]entity.SubQuestion, len(subs))
	for i, sq := range subs {
		sq.Answer = byLabel[strings.ToLower(sq.Label)]
		out[i] = sq
	}
	return out
}
