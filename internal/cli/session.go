package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-grader/internal/grading"
)

// ErrCountMismatch is returned when per-modality counts do not add up to the total.
var ErrCountMismatch = errors.New("question count mismatch")

type sessionSection struct {
	modality      grading.Modality
	countPrompt   string
	heading       string
	questionLabel string
	teacherLabel  string
	correctText   string
	wrongText     string
}

var sessionSections = []sessionSection{
	{
		modality:      grading.ModalityNumeric,
		countPrompt:   "Number of NUMERICAL questions: ",
		heading:       "NUMERICAL QUESTION",
		questionLabel: "Question: ",
		teacherLabel:  "Teacher answer: ",
		correctText:   "✔ Correct",
		wrongText:     "✖ Wrong",
	},
	{
		modality:      grading.ModalityCode,
		countPrompt:   "Number of CODE questions: ",
		heading:       "CODE QUESTION",
		questionLabel: "Question (___ / .....): ",
		teacherLabel:  "Teacher code: ",
		correctText:   "✔ Correct",
		wrongText:     "✖ Wrong",
	},
	{
		modality:      grading.ModalityFill,
		countPrompt:   "Number of DIRECT fill questions: ",
		heading:       "DIRECT FILL QUESTION",
		questionLabel: "Question (___): ",
		teacherLabel:  "Teacher answer: ",
		correctText:   "✔ Correct",
		wrongText:     "✖ Wrong",
	},
	{
		modality:      grading.ModalitySemantic,
		countPrompt:   "Number of ENGLISH (semantic) questions: ",
		heading:       "ENGLISH QUESTION",
		questionLabel: "Question (____): ",
		teacherLabel:  "Teacher answer: ",
		correctText:   "✔ Correct (Semantic Match)",
		wrongText:     "✖ Wrong (Semantic Mismatch)",
	},
}

func newSessionCommand(factory GraderFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Grade a question paper interactively and print the final score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			grader, cleanup, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = RunSession(cmd.Context(), grader, cmd.InOrStdin(), cmd.OutOrStdout())
			return err
		},
	}
}

// RunSession collects question counts, grades every question in modality
// order and prints the final score. It returns the number of correct answers.
func RunSession(ctx context.Context, grader grading.Grader, in io.Reader, out io.Writer) (int, error) {
	reader := bufio.NewReader(in)

	total, err := promptCount(reader, out, "Enter total number of questions: ")
	if err != nil {
		return 0, err
	}

	counts := make([]int, len(sessionSections))
	sum := 0
	for i, section := range sessionSections {
		counts[i], err = promptCount(reader, out, section.countPrompt)
		if err != nil {
			return 0, err
		}
		sum += counts[i]
	}
	if sum != total {
		return 0, fmt.Errorf("%w: %d questions declared, %d by modality", ErrCountMismatch, total, sum)
	}

	score := 0
	for i, section := range sessionSections {
		for n := 0; n < counts[i]; n++ {
			correct, err := gradeInteractive(ctx, grader, section, n+1, reader, out)
			if err != nil {
				return score, err
			}
			if correct {
				score++
			}
		}
	}

	fmt.Fprintln(out, "\n==============================")
	fmt.Fprintf(out, "FINAL SCORE: %d / %d\n", score, total)
	fmt.Fprintln(out, "==============================")

	return score, nil
}

func gradeInteractive(ctx context.Context, grader grading.Grader, section sessionSection, number int, reader *bufio.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "\n%s %d\n", section.heading, number)

	question, err := promptLine(reader, out, section.questionLabel)
	if err != nil {
		return false, err
	}
	teacher, err := promptLine(reader, out, section.teacherLabel)
	if err != nil {
		return false, err
	}
	studentLabel := "Student answer: "
	if section.modality == grading.ModalityCode {
		studentLabel = "Student code: "
	}
	student, err := promptLine(reader, out, studentLabel)
	if err != nil {
		return false, err
	}

	verdict, err := grader.Grade(ctx, grading.Submission{
		Modality:      section.modality,
		Question:      question,
		TeacherAnswer: teacher,
		StudentAnswer: student,
	})
	switch {
	case errors.Is(err, grading.ErrInvalidNumber), errors.Is(err, grading.ErrMalformedQuestion):
		fmt.Fprintf(out, "%s (%v)\n", section.wrongText, err)
		return false, nil
	case err != nil:
		return false, err
	}

	if verdict.Correct {
		fmt.Fprintln(out, section.correctText)
		return true, nil
	}
	fmt.Fprintln(out, section.wrongText)
	return false, nil
}
