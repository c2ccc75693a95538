package grading

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-grader/pkg/ai"
)

const (
	// DefaultSimilarityThreshold is the minimum cosine similarity accepted by the embedding fallback.
	DefaultSimilarityThreshold = 0.65

	entailmentConfidence = 0.6
	semanticPlaceholder  = "____"
)

// SemanticVerdict explains which stage of the semantic evaluation decided.
type SemanticVerdict struct {
	Accepted   bool
	Stage      Stage
	Label      ai.Label
	Confidence float64
	Similarity float64
}

// SemanticEvaluator judges open-ended answers by meaning: a confident NLI
// decision wins, otherwise embedding similarity is compared to a threshold.
type SemanticEvaluator struct {
	classifier ai.Classifier
	encoder    ai.Encoder
	threshold  float64
	tracer     trace.Tracer
}

// NewSemanticEvaluator wires the two model collaborators. A threshold <= 0 selects the default.
func NewSemanticEvaluator(classifier ai.Classifier, encoder ai.Encoder, threshold float64) (*SemanticEvaluator, error) {
	if classifier == nil || encoder == nil {
		return nil, ErrSemanticUnavailable
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	return &SemanticEvaluator{
		classifier: classifier,
		encoder:    encoder,
		threshold:  threshold,
		tracer:     otel.Tracer("github.com/noah-isme/gema-grader/internal/grading/semantic"),
	}, nil
}

// Threshold returns the similarity threshold in use.
func (s *SemanticEvaluator) Threshold() float64 {
	return s.threshold
}

// WithThreshold returns a copy using a different similarity threshold.
func (s *SemanticEvaluator) WithThreshold(threshold float64) *SemanticEvaluator {
	if threshold <= 0 || threshold == s.threshold {
		return s
	}
	clone := *s
	clone.threshold = threshold
	return &clone
}

// Evaluate fills the question's ____ blank with each answer and compares the two sentences.
func (s *SemanticEvaluator) Evaluate(parent context.Context, question, teacherAnswer, studentAnswer string) (SemanticVerdict, error) {
	ctx, span := s.tracer.Start(parent, "grading.semantic", trace.WithAttributes(
		attribute.Float64("threshold", s.threshold),
	))
	defer span.End()

	question = normalizeText(question)
	teacherFilled := strings.ReplaceAll(question, semanticPlaceholder, normalizeText(teacherAnswer))
	studentFilled := strings.ReplaceAll(question, semanticPlaceholder, normalizeText(studentAnswer))

	nli, err := s.classifier.Classify(ctx, ai.JoinPair(teacherFilled, studentFilled))
	if err != nil {
		span.RecordError(err)
		return SemanticVerdict{}, fmt.Errorf("%w: classify: %w", ErrCollaboratorFailure, err)
	}

	verdict := SemanticVerdict{Label: nli.Label, Confidence: nli.Score}
	switch {
	case nli.Label == ai.LabelContradiction && nli.Score > entailmentConfidence:
		verdict.Stage = StageContradiction
		return verdict, nil
	case nli.Label == ai.LabelEntailment && nli.Score > entailmentConfidence:
		verdict.Stage = StageEntailment
		verdict.Accepted = true
		return verdict, nil
	}

	teacherVec, err := s.encoder.Encode(ctx, teacherFilled)
	if err != nil {
		span.RecordError(err)
		return SemanticVerdict{}, fmt.Errorf("%w: encode teacher answer: %w", ErrCollaboratorFailure, err)
	}
	studentVec, err := s.encoder.Encode(ctx, studentFilled)
	if err != nil {
		span.RecordError(err)
		return SemanticVerdict{}, fmt.Errorf("%w: encode student answer: %w", ErrCollaboratorFailure, err)
	}

	similarity, err := ai.CosineSimilarity(teacherVec, studentVec)
	if err != nil {
		span.RecordError(err)
		return SemanticVerdict{}, fmt.Errorf("%w: %w", ErrCollaboratorFailure, err)
	}

	verdict.Stage = StageSimilarity
	verdict.Similarity = similarity
	verdict.Accepted = similarity >= s.threshold
	span.SetAttributes(attribute.Float64("similarity", similarity))

	return verdict, nil
}
