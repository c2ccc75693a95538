package grading

import (
	"regexp"
	"strings"
)

var fillPlaceholderPattern = regexp.MustCompile(`_+`)

// EvaluateFillBlank accepts the student answer when it equals the teacher answer,
// either directly or after stripping question text echoed on either side of it.
func EvaluateFillBlank(question, teacherAnswer, studentAnswer string) bool {
	matched, _ := fillBlank(question, teacherAnswer, studentAnswer)
	return matched
}

// fillBlank also reports whether context stripping was needed.
func fillBlank(question, teacherAnswer, studentAnswer string) (matched bool, stripped bool) {
	question = normalizeText(question)
	teacherAnswer = normalizeText(teacherAnswer)
	studentAnswer = normalizeText(studentAnswer)

	if studentAnswer == teacherAnswer {
		return true, false
	}

	left, right := splitContext(question)

	cleaned := studentAnswer
	if left != "" {
		cleaned = StripContext(cleaned, strings.Fields(left), FromStart)
	}
	if right != "" {
		cleaned = StripContext(cleaned, strings.Fields(right), FromEnd)
	}

	return cleaned == teacherAnswer, true
}

// splitContext returns the trimmed text on either side of the first blank.
// A question without a blank is all left context.
func splitContext(question string) (left, right string) {
	parts := fillPlaceholderPattern.Split(question, -1)
	if len(parts) > 0 {
		left = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		right = strings.TrimSpace(parts[1])
	}
	return left, right
}
