package grading

import (
	"fmt"
	"regexp"
	"strings"
)

var codePlaceholderPattern = regexp.MustCompile(`[_.]{2,}`)

// EvaluateCodeBlank reports whether studentCode contains the teacher's blank and
// any extra code typed around it agrees with the question's own context.
func EvaluateCodeBlank(question, teacherBlank, studentCode string) (bool, error) {
	placeholder := codePlaceholderPattern.FindString(question)
	if placeholder == "" {
		return false, fmt.Errorf("%w: code question must contain ___ or ...", ErrMalformedQuestion)
	}

	before, after, _ := strings.Cut(question, placeholder)
	before = NormalizeCode(before)
	after = NormalizeCode(after)

	blank := NormalizeCode(teacherBlank)
	student := NormalizeCode(studentCode)

	idx := strings.Index(student, blank)
	if idx == -1 {
		return false, nil
	}

	studentBefore := student[:idx]
	studentAfter := student[idx+len(blank):]

	if studentBefore != "" && !strings.HasSuffix(before, studentBefore) {
		return false, nil
	}
	if studentAfter != "" && !strings.HasPrefix(after, studentAfter) {
		return false, nil
	}

	return true, nil
}
