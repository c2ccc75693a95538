package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/grading"
)

type checkOptions struct {
	modality  string
	question  string
	teacher   string
	student   string
	threshold float64
	asJSON    bool
}

func newCheckCommand(factory GraderFactory) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Grade a single answer",
		Example: `  grader check --modality fill --question "The capital of France is ___." --teacher Paris --student "the capital of france is paris"
  grader check --modality code --question "for i in range(____):" --teacher 10 --student "for i in range(10):"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			modality, err := grading.ParseModality(opts.modality)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("threshold") && (opts.threshold <= 0 || opts.threshold > 1) {
				return fmt.Errorf("threshold must be in (0, 1], got %v", opts.threshold)
			}

			grader, cleanup, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			verdict, err := grader.Grade(cmd.Context(), grading.Submission{
				Modality:            modality,
				Question:            opts.question,
				TeacherAnswer:       opts.teacher,
				StudentAnswer:       opts.student,
				SimilarityThreshold: opts.threshold,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(dto.NewGradeResponse(verdict))
			}

			mark := "✖ Wrong"
			if verdict.Correct {
				mark = "✔ Correct"
			}
			fmt.Fprintf(out, "%s [%s]\n", mark, verdict.Stage)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.modality, "modality", "m", "", "numeric, code, fill or semantic")
	flags.StringVarP(&opts.question, "question", "q", "", "question template containing the blank")
	flags.StringVarP(&opts.teacher, "teacher", "t", "", "teacher reference answer")
	flags.StringVarP(&opts.student, "student", "s", "", "student answer")
	flags.Float64Var(&opts.threshold, "threshold", 0, "semantic similarity threshold override")
	flags.BoolVar(&opts.asJSON, "json", false, "print the verdict as JSON")
	_ = cmd.MarkFlagRequired("modality")

	return cmd
}
