package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/grading"
	"github.com/noah-isme/gema-grader/internal/middleware"
	"github.com/noah-isme/gema-grader/internal/observability"
)

const answerPreviewLength = 80

// ErrBatchItemFailed wraps the error of the first batch item that could not be graded.
var ErrBatchItemFailed = errors.New("batch item failed")

// GradingService validates grading requests, runs the grader and announces verdicts.
type GradingService interface {
	Grade(ctx context.Context, payload dto.GradeRequest) (dto.GradeResponse, error)
	GradeBatch(ctx context.Context, payload dto.GradeBatchRequest) (dto.GradeBatchResponse, error)
}

type gradingService struct {
	grader    grading.Grader
	validator *validator.Validate
	publisher VerdictPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs the grading service. A nil publisher disables verdict events.
func NewGradingService(grader grading.Grader, validate *validator.Validate, publisher VerdictPublisher, logger zerolog.Logger) GradingService {
	return &gradingService{
		grader:    grader,
		validator: validate,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, payload dto.GradeRequest) (dto.GradeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	return s.grade(ctx, payload)
}

func (s *gradingService) GradeBatch(ctx context.Context, payload dto.GradeBatchRequest) (dto.GradeBatchResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeBatchResponse{}, err
	}

	items := make([]dto.GradeResponse, 0, len(payload.Items))
	for i, item := range payload.Items {
		response, err := s.grade(ctx, item)
		if err != nil {
			return dto.GradeBatchResponse{}, fmt.Errorf("%w: item %d: %w", ErrBatchItemFailed, i, err)
		}
		items = append(items, response)
	}

	return dto.GradeBatchResponse{Items: items}, nil
}

func (s *gradingService) grade(ctx context.Context, payload dto.GradeRequest) (dto.GradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-grader/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.grade")
	defer span.End()

	modality, err := grading.ParseModality(payload.Modality)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsupported_modality")
		observability.GradingFailures().WithLabelValues("unknown", failureReason(err)).Inc()
		return dto.GradeResponse{}, err
	}
	span.SetAttributes(attribute.String("grading.modality", string(modality)))

	submission := grading.Submission{
		Modality:      modality,
		Question:      payload.Question,
		TeacherAnswer: payload.TeacherAnswer,
		StudentAnswer: payload.StudentAnswer,
	}
	if payload.SimilarityThreshold != nil {
		submission.SimilarityThreshold = *payload.SimilarityThreshold
	}

	start := s.now()
	verdict, err := s.grader.Grade(ctx, submission)
	observability.GradingLatency().WithLabelValues(string(modality)).Observe(s.now().Sub(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, failureReason(err))
		observability.GradingFailures().WithLabelValues(string(modality), failureReason(err)).Inc()
		s.logger.Debug().
			Err(err).
			Str("correlation_id", middleware.CorrelationIDFromContext(ctx)).
			Str("modality", string(modality)).
			Str("student_answer_preview", s.preview(payload.StudentAnswer)).
			Msg("submission could not be graded")
		return dto.GradeResponse{}, err
	}

	span.SetAttributes(
		attribute.Bool("grading.correct", verdict.Correct),
		attribute.String("grading.stage", string(verdict.Stage)),
	)
	observability.GradingVerdicts().WithLabelValues(string(modality), string(verdict.Stage), strconv.FormatBool(verdict.Correct)).Inc()

	s.announce(ctx, verdict)

	return dto.NewGradeResponse(verdict), nil
}

// preview renders a short, markup-free copy of an answer for log lines only.
// Graded answers are never rewritten.
func (s *gradingService) preview(answer string) string {
	cleaned := strings.Join(strings.Fields(s.sanitizer.Sanitize(answer)), " ")
	if runes := []rune(cleaned); len(runes) > answerPreviewLength {
		return string(runes[:answerPreviewLength]) + "…"
	}
	return cleaned
}

func (s *gradingService) announce(ctx context.Context, verdict grading.Verdict) {
	if s.publisher == nil {
		return
	}

	event := NewVerdictEvent(middleware.CorrelationIDFromContext(ctx), verdict, s.now())
	if err := s.publisher.PublishVerdict(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_id", event.EventID).
			Str("correlation_id", event.CorrelationID).
			Msg("failed to publish grading verdict")
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, grading.ErrUnsupportedModality):
		return "unsupported_modality"
	case errors.Is(err, grading.ErrMalformedQuestion):
		return "malformed_question"
	case errors.Is(err, grading.ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, grading.ErrSemanticUnavailable):
		return "semantic_unavailable"
	case errors.Is(err, grading.ErrCollaboratorFailure):
		return "collaborator_failure"
	default:
		return "internal"
	}
}
