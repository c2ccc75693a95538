package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader/internal/dto"
	"github.com/noah-isme/gema-grader/internal/grading"
	"github.com/noah-isme/gema-grader/internal/service"
	"github.com/noah-isme/gema-grader/internal/utils"
)

// GradingHandler exposes the answer grading endpoints.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Post("/", h.grade)
	router.Post("/batch", h.gradeBatch)
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	verdict, err := h.service.Grade(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "answer graded", verdict)
}

func (h *GradingHandler) gradeBatch(c *fiber.Ctx) error {
	var payload dto.GradeBatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	verdicts, err := h.service.GradeBatch(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, verdicts, "answers graded", fiber.Map{"items": len(verdicts.Items)})
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, grading.ErrMalformedQuestion), errors.Is(err, grading.ErrInvalidNumber):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, grading.ErrUnsupportedModality):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, grading.ErrSemanticUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "semantic grading is not configured")
	case errors.Is(err, grading.ErrCollaboratorFailure):
		requestLogger(h.logger, c).Error().Err(err).Msg("model collaborator failed")
		return utils.SendError(c, fiber.StatusBadGateway, "model collaborator failed")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to grade answer")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to grade answer")
	}
}
