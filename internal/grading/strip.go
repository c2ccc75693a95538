package grading

import "strings"

// Boundary selects which end of a student answer StripContext peels.
type Boundary int

const (
	// FromStart strips echoes of the question text left of the blank.
	FromStart Boundary = iota
	// FromEnd strips echoes of the question text right of the blank.
	FromEnd
)

// StripContext removes words a student copied from the question around the blank.
//
// Windows of 1..len(contextWords) words nearest the blank are tried in turn against
// whatever text remains after the previous pass, so partial and repeated echoes are
// peeled off incrementally. The match is a plain string prefix/suffix test and the
// number of removed tokens is the window size.
func StripContext(student string, contextWords []string, boundary Boundary) string {
	tokens := strings.Fields(student)

	for i := 1; i <= len(contextWords); i++ {
		var window []string
		if boundary == FromStart {
			window = contextWords[len(contextWords)-i:]
		} else {
			window = contextWords[:i]
		}
		joined := strings.Join(window, " ")
		n := min(len(window), len(tokens))

		switch {
		case boundary == FromStart && strings.HasPrefix(student, joined):
			tokens = tokens[n:]
		case boundary == FromEnd && strings.HasSuffix(student, joined):
			tokens = tokens[:len(tokens)-n]
		}

		student = strings.TrimSpace(strings.Join(tokens, " "))
	}

	return student
}
