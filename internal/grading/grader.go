package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/gema-grader/pkg/ai"
)

// Modality identifies how an answer is compared with its reference.
type Modality string

const (
	ModalityNumeric  Modality = "numeric"
	ModalityCode     Modality = "code"
	ModalityFill     Modality = "fill"
	ModalitySemantic Modality = "semantic"
)

// ParseModality accepts the canonical names plus a few aliases used by question banks.
func ParseModality(raw string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "numeric", "numerical", "number":
		return ModalityNumeric, nil
	case "code":
		return ModalityCode, nil
	case "fill", "direct", "fill_blank":
		return ModalityFill, nil
	case "semantic", "english", "open":
		return ModalitySemantic, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedModality, raw)
	}
}

// Stage names the step that produced a verdict. It is informational only.
type Stage string

const (
	StageNumeric       Stage = "numeric"
	StageStructural    Stage = "structural"
	StageExactMatch    Stage = "exact_match"
	StageContextStrip  Stage = "context_strip"
	StageEntailment    Stage = "entailment"
	StageContradiction Stage = "contradiction"
	StageSimilarity    Stage = "similarity"
)

// Submission is one (question, teacher answer, student answer) triple.
type Submission struct {
	Modality      Modality
	Question      string
	TeacherAnswer string
	StudentAnswer string
	// SimilarityThreshold overrides the semantic threshold when > 0.
	SimilarityThreshold float64
}

// Verdict is the outcome of grading a submission.
type Verdict struct {
	Correct    bool
	Modality   Modality
	Stage      Stage
	Label      ai.Label
	Confidence float64
	Similarity *float64
}

// Grader routes a submission to the evaluator for its modality.
type Grader interface {
	Grade(ctx context.Context, sub Submission) (Verdict, error)
}

// Option configures NewGrader.
type Option func(*options)

type options struct {
	classifier ai.Classifier
	encoder    ai.Encoder
	threshold  float64
}

// WithSemantic enables the semantic modality.
func WithSemantic(classifier ai.Classifier, encoder ai.Encoder) Option {
	return func(o *options) {
		o.classifier = classifier
		o.encoder = encoder
	}
}

// WithSimilarityThreshold sets the default semantic similarity threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(o *options) { o.threshold = threshold }
}

type defaultGrader struct {
	semantic *SemanticEvaluator
}

// NewGrader builds a Grader. Without WithSemantic, semantic submissions fail with ErrSemanticUnavailable.
func NewGrader(opts ...Option) Grader {
	cfg := &options{threshold: DefaultSimilarityThreshold}
	for _, o := range opts {
		o(cfg)
	}

	g := &defaultGrader{}
	if semantic, err := NewSemanticEvaluator(cfg.classifier, cfg.encoder, cfg.threshold); err == nil {
		g.semantic = semantic
	}
	return g
}

func (g *defaultGrader) Grade(ctx context.Context, sub Submission) (Verdict, error) {
	verdict := Verdict{Modality: sub.Modality}

	switch sub.Modality {
	case ModalityNumeric:
		correct, err := EvaluateNumeric(sub.TeacherAnswer, sub.StudentAnswer)
		if err != nil {
			return Verdict{}, err
		}
		verdict.Correct = correct
		verdict.Stage = StageNumeric

	case ModalityCode:
		correct, err := EvaluateCodeBlank(sub.Question, sub.TeacherAnswer, sub.StudentAnswer)
		if err != nil {
			return Verdict{}, err
		}
		verdict.Correct = correct
		verdict.Stage = StageStructural

	case ModalityFill:
		correct, stripped := fillBlank(sub.Question, sub.TeacherAnswer, sub.StudentAnswer)
		verdict.Correct = correct
		verdict.Stage = StageExactMatch
		if stripped {
			verdict.Stage = StageContextStrip
		}

	case ModalitySemantic:
		if g.semantic == nil {
			return Verdict{}, ErrSemanticUnavailable
		}
		result, err := g.semantic.WithThreshold(sub.SimilarityThreshold).Evaluate(ctx, sub.Question, sub.TeacherAnswer, sub.StudentAnswer)
		if err != nil {
			return Verdict{}, err
		}
		verdict.Correct = result.Accepted
		verdict.Stage = result.Stage
		verdict.Label = result.Label
		verdict.Confidence = result.Confidence
		if result.Stage == StageSimilarity {
			similarity := result.Similarity
			verdict.Similarity = &similarity
		}

	default:
		return Verdict{}, fmt.Errorf("%w: %q", ErrUnsupportedModality, sub.Modality)
	}

	return verdict, nil
}
