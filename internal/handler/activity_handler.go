package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
	"github.com/twistedwarden/esmv2-sub001/internal/utils"
)

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	entityID, err := parseQueryUint(c, "entity_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity_id")
	}
	page, err := parseQueryInt(c, "page")
	if err != nil || page < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil || pageSize < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	request := dto.ActivityListRequest{
		EntityType: c.Query("entity_type"),
		EntityID:   entityID,
		Page:       page,
		PageSize:   pageSize,
	}

	response, err := h.service.List(c.Context(), request)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity entries")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity entries")
	}

	return utils.SendSuccess(c, "activity entries retrieved", response)
}
