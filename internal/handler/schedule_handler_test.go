package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/handler"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
)

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type mockScheduleService struct {
	scheduleResp dto.ScheduleResponse
	scheduleErr  error
	bulkResp     dto.BulkScheduleResult
	bulkErr      error
	lastPayload  dto.ScheduleCreateRequest
	lastActor    service.Actor
	cancelCalls  int
}

func (m *mockScheduleService) CreatePending(_ context.Context, applicationID uint, actor service.Actor) (dto.ScheduleResponse, error) {
	m.lastActor = actor
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) Schedule(_ context.Context, payload dto.ScheduleCreateRequest, actor service.Actor) (dto.ScheduleResponse, error) {
	m.lastPayload = payload
	m.lastActor = actor
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) BulkSchedule(_ context.Context, payload dto.BulkScheduleRequest, actor service.Actor) (dto.BulkScheduleResult, error) {
	m.lastActor = actor
	return m.bulkResp, m.bulkErr
}

func (m *mockScheduleService) Complete(_ context.Context, scheduleID uint, result, notes string, actor service.Actor) (dto.ScheduleResponse, error) {
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) Cancel(_ context.Context, scheduleID uint, reason string, actor service.Actor) (dto.ScheduleResponse, error) {
	m.cancelCalls++
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) MarkNoShow(_ context.Context, scheduleID uint, notes string, actor service.Actor) (dto.ScheduleResponse, error) {
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) Reschedule(_ context.Context, scheduleID uint, payload dto.RescheduleRequest, actor service.Actor) (dto.ScheduleResponse, error) {
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) Get(_ context.Context, scheduleID uint) (dto.ScheduleResponse, error) {
	return m.scheduleResp, m.scheduleErr
}

func (m *mockScheduleService) List(_ context.Context, filter repository.ScheduleFilter) ([]dto.ScheduleResponse, error) {
	return []dto.ScheduleResponse{m.scheduleResp}, m.scheduleErr
}

func newScheduleApp(svc service.ScheduleService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/schedules", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "coordinator")
		return c.Next()
	})
	handler.NewScheduleHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestScheduleHandler_CreateSuccess(t *testing.T) {
	svc := &mockScheduleService{scheduleResp: dto.ScheduleResponse{ID: 1, Status: "scheduled", StartTime: "09:00"}}
	app := newScheduleApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schedules", dto.ScheduleCreateRequest{
		ApplicationID: 1,
		InterviewerID: 7,
		Date:          "2026-03-02",
		StartTime:     "09:00",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                 `json:"success"`
		Data    dto.ScheduleResponse `json:"data"`
		Message string               `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, uint(1), response.Data.ID)
	require.Equal(t, uint(42), svc.lastActor.ID)
	require.Equal(t, "coordinator", svc.lastActor.Role)
}

func TestScheduleHandler_ConflictCarriesDetail(t *testing.T) {
	svc := &mockScheduleService{scheduleErr: &service.ConflictError{Conflicts: []service.Conflict{{
		ScheduleID:   9,
		OwnerName:    "Dr. Reyes",
		DisplayStart: "9:00 AM",
		DisplayEnd:   "9:30 AM",
	}}}}
	app := newScheduleApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schedules", dto.ScheduleCreateRequest{
		ApplicationID: 1,
		InterviewerID: 7,
		Date:          "2026-03-02",
		StartTime:     "09:15",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    []dto.ConflictResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Len(t, response.Data, 1)
	require.Equal(t, "Dr. Reyes", response.Data[0].OwnerName)
	require.Contains(t, response.Message, "9:00 AM")
}

func TestScheduleHandler_BulkConflict(t *testing.T) {
	svc := &mockScheduleService{bulkErr: &service.BulkConflictError{
		SlotIndex:     2,
		ApplicationID: 31,
		Conflicts:     []service.Conflict{{ScheduleID: 4, OwnerName: "Dr. Cruz"}},
	}}
	app := newScheduleApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schedules/bulk", dto.BulkScheduleRequest{
		ApplicationIDs: []uint{30, 31, 32},
		InterviewerID:  7,
		Date:           "2026-03-02",
		StartTime:      "09:00",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var response struct {
		Data struct {
			SlotIndex     int  `json:"slot_index"`
			ApplicationID uint `json:"application_id"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 2, response.Data.SlotIndex)
	require.Equal(t, uint(31), response.Data.ApplicationID)
}

func TestScheduleHandler_NotFound(t *testing.T) {
	svc := &mockScheduleService{scheduleErr: service.ErrScheduleNotFound}
	app := newScheduleApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/99", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestScheduleHandler_IneligibleApplication(t *testing.T) {
	svc := &mockScheduleService{scheduleErr: service.ErrIneligibleApplication}
	app := newScheduleApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schedules", dto.ScheduleCreateRequest{
		ApplicationID: 1,
		InterviewerID: 7,
		Date:          "2026-03-02",
		StartTime:     "09:00",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestScheduleHandler_InvalidIDRejected(t *testing.T) {
	svc := &mockScheduleService{}
	app := newScheduleApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/schedules/abc/cancel", dto.CancelRequest{})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.cancelCalls)
}
