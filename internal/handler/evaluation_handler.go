package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
	"github.com/twistedwarden/esmv2-sub001/internal/utils"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

// EvaluationHandler exposes interview evaluation recording and retrieval.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register wires evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.record)
	router.Get("/schedule/:scheduleId", h.getBySchedule)
}

func (h *EvaluationHandler) record(c *fiber.Ctx) error {
	var payload dto.EvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Record(c.Context(), payload, actorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScoreOutOfRange),
			errors.Is(err, service.ErrInvalidRecommendation),
			errors.Is(err, service.ErrInvalidResult),
			isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEvaluationExists):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, service.ErrScheduleNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "schedule not found")
		case isUpstreamError(err):
			requestLogger(h.logger, c).Warn().Err(err).Msg("upstream directory error")
			return utils.SendError(c, upstreamStatus(err), err.Error())
		case errors.Is(err, directory.ErrApplicationNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "application not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to record evaluation")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record evaluation")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation recorded", response)
}

func (h *EvaluationHandler) getBySchedule(c *fiber.Ctx) error {
	scheduleID, err := parseUintParam(c, "scheduleId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	response, err := h.service.GetBySchedule(c.Context(), scheduleID)
	if err != nil {
		if errors.Is(err, service.ErrEvaluationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load evaluation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load evaluation")
	}

	return utils.SendSuccess(c, "evaluation retrieved", response)
}
