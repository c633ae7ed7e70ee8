package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/handler"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/service"
)

type mockEndorsementService struct {
	reviewItems []dto.EndorsementReviewItem
	bulkResult  dto.BulkEndorseResult
	bulkErr     error
	rejectErr   error
	lastBulk    dto.BulkEndorseRequest
}

func (m *mockEndorsementService) Review(_ context.Context) ([]dto.EndorsementReviewItem, error) {
	return m.reviewItems, nil
}

func (m *mockEndorsementService) Classify(_ context.Context, applicationID uint) (dto.EndorsementReviewItem, error) {
	if len(m.reviewItems) > 0 {
		return m.reviewItems[0], nil
	}
	return dto.EndorsementReviewItem{}, nil
}

func (m *mockEndorsementService) BulkEndorse(_ context.Context, payload dto.BulkEndorseRequest, _ service.Actor) (dto.BulkEndorseResult, error) {
	m.lastBulk = payload
	return m.bulkResult, m.bulkErr
}

func (m *mockEndorsementService) Endorse(_ context.Context, applicationID uint, _ dto.EndorseRequest, _ service.Actor) error {
	return nil
}

func (m *mockEndorsementService) Reject(_ context.Context, applicationID uint, payload dto.RejectRequest, _ service.Actor) error {
	return m.rejectErr
}

func newEndorsementApp(svc service.EndorsementService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/endorsements", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "coordinator")
		return c.Next()
	})
	handler.NewEndorsementHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestEndorsementHandler_Review(t *testing.T) {
	svc := &mockEndorsementService{reviewItems: []dto.EndorsementReviewItem{
		{ApplicationID: 1, ApplicantName: "Ana Santos", State: models.EndorsementStateReady},
		{ApplicationID: 2, ApplicantName: "Ben Cruz", State: models.EndorsementStateConditional},
	}}
	app := newEndorsementApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/endorsements/review", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                        `json:"success"`
		Data    []dto.EndorsementReviewItem `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data, 2)
	require.Equal(t, models.EndorsementStateReady, response.Data[0].State)
}

func TestEndorsementHandler_BulkEndorse(t *testing.T) {
	svc := &mockEndorsementService{bulkResult: dto.BulkEndorseResult{EndorsedCount: 2, TotalProcessed: 2}}
	app := newEndorsementApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/endorsements/bulk", dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1, 3},
		Cohort:         "ready",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.BulkEndorseResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 2, response.Data.EndorsedCount)
	require.Equal(t, "ready", svc.lastBulk.Cohort)
}

func TestEndorsementHandler_EmptyCohort(t *testing.T) {
	svc := &mockEndorsementService{bulkErr: service.ErrEmptyCohort}
	app := newEndorsementApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/endorsements/bulk", dto.BulkEndorseRequest{
		ApplicationIDs: []uint{1},
		Cohort:         "ready",
	})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestEndorsementHandler_RejectRequiresReason(t *testing.T) {
	svc := &mockEndorsementService{rejectErr: service.ErrEmptyReason}
	app := newEndorsementApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/endorsements/applications/1/reject", dto.RejectRequest{})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
