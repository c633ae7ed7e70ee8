package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/service"
	"github.com/twistedwarden/esmv2-sub001/internal/utils"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

// InterviewerHandler serves the interviewer roster and free-slot lookups.
type InterviewerHandler struct {
	staff           directory.StaffDirectory
	slots           service.SlotService
	defaultDuration int
	logger          zerolog.Logger
}

// NewInterviewerHandler constructs an interviewer handler.
func NewInterviewerHandler(staff directory.StaffDirectory, slots service.SlotService, defaultDuration int, logger zerolog.Logger) *InterviewerHandler {
	if defaultDuration <= 0 {
		defaultDuration = 30
	}

	return &InterviewerHandler{
		staff:           staff,
		slots:           slots,
		defaultDuration: defaultDuration,
		logger:          logger.With().Str("component", "interviewer_handler").Logger(),
	}
}

// Register wires interviewer routes.
func (h *InterviewerHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id/next-slot", h.nextSlot)
}

func (h *InterviewerHandler) list(c *fiber.Ctx) error {
	interviewers, err := h.staff.ListInterviewers(c.Context())
	if err != nil {
		if isUpstreamError(err) {
			requestLogger(h.logger, c).Warn().Err(err).Msg("upstream staff directory error")
			return utils.SendError(c, upstreamStatus(err), err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list interviewers")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list interviewers")
	}

	return utils.SendSuccess(c, "interviewers retrieved", interviewers)
}

func (h *InterviewerHandler) nextSlot(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid interviewer id")
	}

	date := c.Query("date")
	if date == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "date is required")
	}

	duration, err := parseQueryInt(c, "duration_minutes")
	if err != nil || duration < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid duration_minutes")
	}
	if duration == 0 {
		duration = h.defaultDuration
	}

	slot, err := h.slots.FindNextAvailable(c.Context(), id, date, duration)
	if err != nil {
		if errors.Is(err, service.ErrNoAvailability) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to find next slot")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to find next slot")
	}

	return utils.SendSuccess(c, "next available slot found", slot.Response())
}
