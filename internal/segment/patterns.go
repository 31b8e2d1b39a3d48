package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker classification for one block of text. Detection priority is the
// order of the kinds below: instruction beats everything, a main-question
// marker beats an answer marker, and a sub-question marker beats plain
// continuation text.
type markerKind int

const (
	markerNone markerKind = iota
	markerInstruction
	markerMainQuestion
	markerAnswerStart
	markerSubQuestion
)

type marker struct {
	kind   markerKind
	number int    // main question: printed number
	label  string // sub question: lowercased letter / roman numeral
	rest   string // text after the marker token
}

// instructionPhrases flags boilerplate lines that never belong to a
// question body. Matched case-insensitively as substrings.
var instructionPhrases = []string{
	"answer the following",
	"do as directed",
	"time:",
	"total marks",
	"instructions",
}

var (
	// "12. ...", "3) ...", "7: ...", "9- ..."
	mainQuestionRe = regexp.MustCompile(`^(\d+)[.):\-]\s*(.+)`)
	// "Q12 ...", "q3. ..."
	mainQuestionQRe = regexp.MustCompile(`(?i)^q(\d+)[.):\-]?\s*(.+)`)
	// "Ans. ...", "answer: ..."
	answerStartRe = regexp.MustCompile(`(?i)^ans(?:wer)?[.:\-]\s*(.*)`)
	// "(a) ...", "b) ...", "(ii) ...", "iv. ..."
	subQuestionRe = regexp.MustCompile(`(?i)^\(?([a-z]|[ivxl]{1,4})\)?[.)]\s*(.+)`)
)

// classifyMarker runs the ordered marker table over one trimmed block.
func classifyMarker(text string) marker {
	if isInstruction(text) {
		return marker{kind: markerInstruction}
	}
	if m := mainQuestionRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return marker{kind: markerMainQuestion, number: n, rest: m[2]}
	}
	if m := mainQuestionQRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return marker{kind: markerMainQuestion, number: n, rest: m[2]}
	}
	if m := answerStartRe.FindStringSubmatch(text); m != nil {
		return marker{kind: markerAnswerStart, rest: strings.TrimSpace(m[1])}
	}
	if m := subQuestionRe.FindStringSubmatch(text); m != nil {
		label := strings.ToLower(m[1])
		if isSubLabel(label) {
			return marker{kind: markerSubQuestion, label: label, rest: m[2]}
		}
	}
	return marker{kind: markerNone}
}

func isInstruction(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range instructionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isSubLabel accepts a single letter a-z or a short roman numeral. The
// regex already limits the character set; this rejects letter runs like
// "xl" only when they are not valid numerals.
func isSubLabel(label string) bool {
	if len(label) == 1 {
		return label[0] >= 'a' && label[0] <= 'z'
	}
	return romanValue(label) > 0
}

// romanValue parses a lowercase roman numeral, returning 0 when invalid.
// Only i, v, x, l appear in exam sub-part labels.
func romanValue(s string) int {
	values := map[byte]int{'i': 1, 'v': 5, 'x': 10, 'l': 50}
	total, prev := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		v, ok := values[s[i]]
		if !ok {
			return 0
		}
		if v < prev {
			total -= v
		} else {
			total += v
			prev = v
		}
	}
	if total <= 0 {
		return 0
	}
	return total
}

// StripAnswerPrefix removes a leading "Ans." / "Answer:" marker that
// survived segmentation.
var answerPrefixRe = regexp.MustCompile(`(?i)^ans(?:wer)?\b[.:\-]?\s*`)

func StripAnswerPrefix(s string) string {
	return strings.TrimSpace(answerPrefixRe.ReplaceAllString(strings.TrimSpace(s), ""))
}
