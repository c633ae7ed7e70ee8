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

// EndorsementHandler exposes the endorsement review screen and decisions.
type EndorsementHandler struct {
	service service.EndorsementService
	logger  zerolog.Logger
}

// NewEndorsementHandler constructs an endorsement handler.
func NewEndorsementHandler(service service.EndorsementService, logger zerolog.Logger) *EndorsementHandler {
	return &EndorsementHandler{
		service: service,
		logger:  logger.With().Str("component", "endorsement_handler").Logger(),
	}
}

// Register wires endorsement routes.
func (h *EndorsementHandler) Register(router fiber.Router) {
	router.Get("/review", h.review)
	router.Get("/applications/:id", h.classify)
	router.Post("/bulk", h.bulkEndorse)
	router.Post("/applications/:id/endorse", h.endorse)
	router.Post("/applications/:id/reject", h.reject)
}

func (h *EndorsementHandler) review(c *fiber.Ctx) error {
	items, err := h.service.Review(c.Context())
	if err != nil {
		return h.sendEndorsementError(c, err, "failed to build endorsement review")
	}

	return utils.SendSuccess(c, "endorsement review retrieved", items)
}

func (h *EndorsementHandler) classify(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	item, err := h.service.Classify(c.Context(), id)
	if err != nil {
		return h.sendEndorsementError(c, err, "failed to classify application")
	}

	return utils.SendSuccess(c, "application classified", item)
}

func (h *EndorsementHandler) bulkEndorse(c *fiber.Ctx) error {
	var payload dto.BulkEndorseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.BulkEndorse(c.Context(), payload, actorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrEmptyCohort) {
			return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return h.sendEndorsementError(c, err, "failed to bulk endorse applications")
	}

	return utils.SendSuccess(c, "bulk endorsement processed", result)
}

func (h *EndorsementHandler) endorse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.EndorseRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Endorse(c.Context(), id, payload, actorFromContext(c)); err != nil {
		return h.sendEndorsementError(c, err, "failed to endorse application")
	}

	return utils.SendSuccess(c, "application endorsed", nil)
}

func (h *EndorsementHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application id")
	}

	var payload dto.RejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.service.Reject(c.Context(), id, payload, actorFromContext(c)); err != nil {
		if errors.Is(err, service.ErrEmptyReason) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.sendEndorsementError(c, err, "failed to reject application")
	}

	return utils.SendSuccess(c, "application rejected", nil)
}

func (h *EndorsementHandler) sendEndorsementError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, directory.ErrApplicationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "application not found")
	case isUpstreamError(err):
		requestLogger(h.logger, c).Warn().Err(err).Msg("upstream directory error")
		return utils.SendError(c, upstreamStatus(err), err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
