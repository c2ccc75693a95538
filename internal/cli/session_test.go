package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/grading"
	"github.com/noah-isme/gema-grader/pkg/ai"
)

type stubClassifier struct {
	result ai.Entailment
}

func (s stubClassifier) Classify(context.Context, string) (ai.Entailment, error) {
	return s.result, nil
}

type stubEncoder struct{}

func (stubEncoder) Encode(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func lines(values ...string) string {
	return strings.Join(values, "\n") + "\n"
}

func TestRunSessionScoresEveryModality(t *testing.T) {
	grader := grading.NewGrader(grading.WithSemantic(stubClassifier{result: ai.Entailment{Label: ai.LabelContradiction, Score: 0.9}}, stubEncoder{}))
	input := lines(
		"5", "1", "1", "2", "1",
		// numeric
		"What is pi?", "3.14", "3.1",
		// code
		"x = ____", "10", "x = 10  # ten",
		// fill
		"The capital of France is ___.", "Paris", "the capital of france is paris",
		"2 + 2 = __", "4", "5",
		// semantic
		"The sky is ____", "blue", "green",
	)
	var out bytes.Buffer

	score, err := RunSession(context.Background(), grader, strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, 3, score)

	output := out.String()
	require.Contains(t, output, "Enter total number of questions: ")
	require.Contains(t, output, "\nNUMERICAL QUESTION 1\n")
	require.Contains(t, output, "Question (___ / .....): ")
	require.Contains(t, output, "Student code: ")
	require.Contains(t, output, "\nDIRECT FILL QUESTION 2\n")
	require.Contains(t, output, "\nENGLISH QUESTION 1\n")
	require.Contains(t, output, "✖ Wrong (Semantic Mismatch)")
	require.Contains(t, output, "FINAL SCORE: 3 / 5")
	require.Equal(t, 3, strings.Count(output, "✔ Correct\n"))
}

func TestRunSessionRejectsCountMismatch(t *testing.T) {
	input := lines("3", "1", "1", "0", "0")

	_, err := RunSession(context.Background(), grading.NewGrader(), strings.NewReader(input), &bytes.Buffer{})
	require.ErrorIs(t, err, ErrCountMismatch)
}

func TestRunSessionRejectsBadCounts(t *testing.T) {
	for _, input := range []string{lines("two"), lines("1", "-1"), ""} {
		_, err := RunSession(context.Background(), grading.NewGrader(), strings.NewReader(input), &bytes.Buffer{})
		require.Error(t, err)
	}
}

func TestRunSessionContinuesPastInvalidAnswers(t *testing.T) {
	input := lines(
		"2", "1", "1", "0", "0",
		"q", "1", "one",
		"print(x)", "x", "print(x)",
	)
	var out bytes.Buffer

	score, err := RunSession(context.Background(), grading.NewGrader(), strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Zero(t, score)
	require.Contains(t, out.String(), "✖ Wrong (invalid number")
	require.Contains(t, out.String(), "✖ Wrong (malformed question")
	require.Contains(t, out.String(), "FINAL SCORE: 0 / 2")
}

func TestRunSessionStopsWhenSemanticUnavailable(t *testing.T) {
	input := lines("1", "0", "0", "0", "1", "The sky is ____", "blue", "blue")

	_, err := RunSession(context.Background(), grading.NewGrader(), strings.NewReader(input), &bytes.Buffer{})
	require.True(t, errors.Is(err, grading.ErrSemanticUnavailable))
}

func TestRunSessionAcceptsFinalLineWithoutNewline(t *testing.T) {
	input := "1\n0\n0\n1\n0\nThe ___ is red\napple\napple"
	var out bytes.Buffer

	score, err := RunSession(context.Background(), grading.NewGrader(), strings.NewReader(input), &out)
	require.NoError(t, err)
	require.Equal(t, 1, score)
}
