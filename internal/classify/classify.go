// Package classify decides which division a question belongs to based on
// the shape of its answer.
package classify

import "strings"

// Division is one of the two question categories within a section.
// Division 1 holds multiple-choice questions, division 2 holds
// free-response/numerical questions.
type Division int

const (
	DivisionOne Division = 1
	DivisionTwo Division = 2
)

// Override is an explicit manual division assignment on a question.
// Zero means no override.
type Override int

const (
	OverrideNone Override = 0
	OverrideOne  Override = 1
	OverrideTwo  Override = 2
)

// Classify returns the division for a question given its answer text and
// manual override. An override always wins. Otherwise the answer is
// normalized (trimmed, uppercased): exactly "A", "B", "C" or "D" is
// multiple-choice (division 1) and anything else, including an empty
// answer, is division 2. Quota accounting depends on the empty-answer
// case landing in division 2.
func Classify(answer string, override Override) Division {
	switch override {
	case OverrideOne:
		return DivisionOne
	case OverrideTwo:
		return DivisionTwo
	}
	return classifyAnswer(answer)
}

// IsChoiceAnswer reports whether the answer text alone looks like a
// multiple-choice answer (A–D after normalization).
func IsChoiceAnswer(answer string) bool {
	return classifyAnswer(answer) == DivisionOne
}

func classifyAnswer(answer string) Division {
	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case "A", "B", "C", "D":
		return DivisionOne
	}
	return DivisionTwo
}
