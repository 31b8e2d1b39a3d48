package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt is the fixed system message for page segmentation.
func BuildSystemPrompt() string {
	return "You extract structured exam questions from OCR text."
}

// BuildPagePrompt renders the user message for one page: the rules, the
// strict output contract, the numbering context, and the page text with
// line breaks preserved.
func BuildPagePrompt(req SegmentRequest) string {
	texts := make([]string, 0, len(req.Blocks))
	for _, b := range req.Blocks {
		texts = append(texts, b.Text)
	}

	var sb strings.Builder
	sb.WriteString("You are a CBSE exam paper expert.\n\n")
	sb.WriteString("Rules (VERY IMPORTANT):\n")
	sb.WriteString("- Identify questions EXACTLY as they appear\n")
	sb.WriteString("- Report each question's questionNumber as printed in the DOCUMENT, not restarted per page\n")
	sb.WriteString("- DO NOT remove sub-parts like (a), (b), (i), (ii)\n")
	sb.WriteString("- INCLUDE sub-parts inside the SAME questionText\n")
	sb.WriteString("- PRESERVE original order\n")
	sb.WriteString("- PRESERVE line breaks (\\n)\n")
	sb.WriteString("- DO NOT merge or shuffle questions\n")
	sb.WriteString("- DO NOT invent missing text\n")
	sb.WriteString("- If unsure, keep the text unchanged\n\n")
	sb.WriteString("Return STRICT JSON ONLY (no markdown, no explanation):\n\n")
	sb.WriteString(`{
  "questions": [
    {
      "questionNumber": number | null,
      "questionText": "string",
      "answer": "string",
      "marks": number | null,
      "type": "MCQ | Short | Long | Numerical | Assertion | Fill | CaseStudy | Other",
      "year": number | null,
      "confidence": number
    }
  ]
}`)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Page number: %d\n", req.Page)
	if req.LastQuestionNumber > 0 {
		fmt.Fprintf(&sb, "The last question number on the previous page was %d; numbering continues across pages.\n", req.LastQuestionNumber)
	}
	sb.WriteString("\nTEXT:\n\"\"\"\n")
	sb.WriteString(strings.Join(texts, "\n"))
	sb.WriteString("\n\"\"\"\n")
	return sb.String()
}
