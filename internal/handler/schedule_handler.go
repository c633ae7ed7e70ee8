package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
	"github.com/twistedwarden/esmv2-sub001/internal/utils"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
)

// ScheduleHandler exposes the interview schedule lifecycle over HTTP.
type ScheduleHandler struct {
	service service.ScheduleService
	logger  zerolog.Logger
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(service service.ScheduleService, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		logger:  logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register wires schedule routes.
func (h *ScheduleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/bulk", h.bulkCreate)
	router.Post("/pending", h.createPending)
	router.Get("/:id", h.get)
	router.Post("/:id/complete", h.complete)
	router.Post("/:id/cancel", h.cancel)
	router.Post("/:id/no-show", h.noShow)
	router.Post("/:id/reschedule", h.reschedule)
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	interviewerID, err := parseQueryUint(c, "interviewer_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid interviewer_id")
	}
	applicationID, err := parseQueryUint(c, "application_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid application_id")
	}

	filter := repository.ScheduleFilter{
		InterviewerID: interviewerID,
		ApplicationID: applicationID,
		Date:          c.Query("date"),
		Status:        c.Query("status"),
	}

	schedules, err := h.service.List(c.Context(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list schedules")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list schedules")
	}

	return utils.SendSuccess(c, "schedules retrieved", schedules)
}

func (h *ScheduleHandler) create(c *fiber.Ctx) error {
	var payload dto.ScheduleCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Schedule(c.Context(), payload, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to create schedule")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview scheduled", response)
}

func (h *ScheduleHandler) bulkCreate(c *fiber.Ctx) error {
	var payload dto.BulkScheduleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.BulkSchedule(c.Context(), payload, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to bulk schedule interviews")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interviews scheduled", result)
}

func (h *ScheduleHandler) createPending(c *fiber.Ctx) error {
	var payload struct {
		ApplicationID uint `json:"application_id"`
	}
	if err := c.BodyParser(&payload); err != nil || payload.ApplicationID == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.CreatePending(c.Context(), payload.ApplicationID, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to create pending schedule")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "pending schedule created", response)
}

func (h *ScheduleHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	response, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.sendScheduleError(c, err, "failed to load schedule")
	}

	return utils.SendSuccess(c, "schedule retrieved", response)
}

func (h *ScheduleHandler) complete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	var payload struct {
		Result string `json:"result"`
		Notes  string `json:"notes"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Complete(c.Context(), id, payload.Result, payload.Notes, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to complete schedule")
	}

	return utils.SendSuccess(c, "interview completed", response)
}

func (h *ScheduleHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	var payload dto.CancelRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Cancel(c.Context(), id, payload.Reason, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to cancel schedule")
	}

	return utils.SendSuccess(c, "interview cancelled", response)
}

func (h *ScheduleHandler) noShow(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	var payload dto.NoShowRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.MarkNoShow(c.Context(), id, payload.Notes, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to mark no-show")
	}

	return utils.SendSuccess(c, "no-show recorded", response)
}

func (h *ScheduleHandler) reschedule(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid schedule id")
	}

	var payload dto.RescheduleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Reschedule(c.Context(), id, payload, actorFromContext(c))
	if err != nil {
		return h.sendScheduleError(c, err, "failed to reschedule interview")
	}

	return utils.SendSuccess(c, "interview rescheduled", response)
}

// sendScheduleError maps domain errors onto HTTP statuses. Conflicts keep
// their structured detail so clients can render the colliding interval.
func (h *ScheduleHandler) sendScheduleError(c *fiber.Ctx, err error, fallback string) error {
	var conflictErr *service.ConflictError
	var bulkErr *service.BulkConflictError

	switch {
	case errors.As(err, &conflictErr):
		return sendConflict(c, conflictErr.Error(), conflictResponses(conflictErr.Conflicts))
	case errors.As(err, &bulkErr):
		return sendConflict(c, bulkErr.Error(), fiber.Map{
			"slot_index":     bulkErr.SlotIndex,
			"application_id": bulkErr.ApplicationID,
			"conflicts":      conflictResponses(bulkErr.Conflicts),
		})
	case errors.Is(err, service.ErrScheduleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "schedule not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrIneligibleApplication):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidResult):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrApplicationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "application not found")
	case isUpstreamError(err):
		requestLogger(h.logger, c).Warn().Err(err).Msg("upstream directory error")
		return utils.SendError(c, upstreamStatus(err), err.Error())
	case isValidationError(err), isTimeInputError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func sendConflict(c *fiber.Ctx, message string, detail interface{}) error {
	return c.Status(fiber.StatusConflict).JSON(utils.APIResponse{
		Success: false,
		Data:    detail,
		Message: message,
	})
}

func conflictResponses(conflicts []service.Conflict) []dto.ConflictResponse {
	responses := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, conflict := range conflicts {
		responses = append(responses, conflict.Response())
	}
	return responses
}
