package constants

import "strings"

// QuestionType is the classification assigned to an extracted question.
type QuestionType string

const (
	TypeMCQ        QuestionType = "MCQ"
	TypeVeryShort  QuestionType = "Very Short"
	TypeShort      QuestionType = "Short"
	TypeLong       QuestionType = "Long"
	TypeStructured QuestionType = "Structured"
	TypeNumerical  QuestionType = "Numerical"
	TypeAssertion  QuestionType = "Assertion"
	TypeFill       QuestionType = "Fill"
	TypeCaseStudy  QuestionType = "CaseStudy"
	TypeOther      QuestionType = "Other"
)

// QuestionTypes lists every accepted type, in the order exposed to the API.
var QuestionTypes = []QuestionType{
	TypeMCQ, TypeVeryShort, TypeShort, TypeLong, TypeStructured,
	TypeNumerical, TypeAssertion, TypeFill, TypeCaseStudy, TypeOther,
}

// CanonicalType maps a free-form label (e.g. from a model response) onto the
// enum. Unknown or empty labels collapse to TypeOther.
func CanonicalType(label string) QuestionType {
	s := strings.TrimSpace(label)
	if s == "" {
		return TypeOther
	}
	for _, t := range QuestionTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	// common spellings seen in model output
	switch strings.ToLower(strings.ReplaceAll(s, " ", "")) {
	case "multiplechoice", "mcq":
		return TypeMCQ
	case "veryshort", "vsa":
		return TypeVeryShort
	case "casestudy", "case-study":
		return TypeCaseStudy
	case "fillintheblanks", "fillintheblank", "fillups":
		return TypeFill
	case "assertionreason", "assertion-reason":
		return TypeAssertion
	}
	return TypeOther
}

// Difficulty is the advisory difficulty bucket derived by the classifier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)
