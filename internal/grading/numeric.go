package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EvaluateNumeric accepts the student value when it equals the teacher value
// once both are rounded to one decimal place.
func EvaluateNumeric(teacherAnswer, studentAnswer string) (bool, error) {
	teacher, err := parseNumber(teacherAnswer)
	if err != nil {
		return false, err
	}
	student, err := parseNumber(studentAnswer)
	if err != nil {
		return false, err
	}

	return roundTenths(teacher) == roundTenths(student), nil
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func roundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}
