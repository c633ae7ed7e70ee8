package dto

import (
	"time"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/pkg/wallclock"
)

// ScheduleCreateRequest describes the payload for booking a single interview.
type ScheduleCreateRequest struct {
	ApplicationID   uint   `json:"application_id" validate:"required"`
	InterviewerID   uint   `json:"interviewer_id" validate:"required"`
	InterviewerName string `json:"interviewer_name" validate:"omitempty,max=255"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	MeetingLink     string `json:"meeting_link" validate:"omitempty,max=512"`
	Notes           string `json:"notes"`
}

// BulkScheduleRequest books consecutive slots for many applications against
// one interviewer's calendar on one date.
type BulkScheduleRequest struct {
	ApplicationIDs  []uint `json:"application_ids" validate:"required,min=1,dive,required"`
	InterviewerID   uint   `json:"interviewer_id" validate:"required"`
	InterviewerName string `json:"interviewer_name" validate:"omitempty,max=255"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	GapMinutes      int    `json:"gap_minutes" validate:"omitempty,gte=0,lte=240"`
	MeetingLink     string `json:"meeting_link" validate:"omitempty,max=512"`
}

// RescheduleRequest moves an existing booking to a new date and time.
type RescheduleRequest struct {
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	MeetingLink     string `json:"meeting_link" validate:"omitempty,max=512"`
	Reason          string `json:"reason"`
}

// CancelRequest carries the reason for cancelling a booking.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// NoShowRequest annotates a no-show completion.
type NoShowRequest struct {
	Notes string `json:"notes"`
}

// ConflictResponse describes one colliding booking in user-renderable form.
type ConflictResponse struct {
	ScheduleID   uint   `json:"schedule_id"`
	OwnerName    string `json:"owner_name"`
	DisplayStart string `json:"display_start"`
	DisplayEnd   string `json:"display_end"`
}

// TimeSlotResponse is a computed, not-yet-committed candidate interval.
type TimeSlotResponse struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	DisplayStart string `json:"display_start"`
	DisplayEnd   string `json:"display_end"`
}

// BulkScheduleFailure reports one application whose upstream status update
// failed after its schedule was committed.
type BulkScheduleFailure struct {
	ApplicationID uint   `json:"application_id"`
	Reason        string `json:"reason"`
}

// BulkScheduleResult reports the outcome of a bulk scheduling request.
type BulkScheduleResult struct {
	Schedules            []ScheduleResponse    `json:"schedules"`
	StatusUpdateFailures []BulkScheduleFailure `json:"status_update_failures,omitempty"`
}

// ScheduleResponse is the serialized representation returned to API clients.
type ScheduleResponse struct {
	ID              uint      `json:"id"`
	ApplicationID   uint      `json:"application_id"`
	InterviewerID   uint      `json:"interviewer_id"`
	InterviewerName string    `json:"interviewer_name"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DisplayStart    string    `json:"display_start"`
	DisplayEnd      string    `json:"display_end"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	MeetingLink     string    `json:"meeting_link"`
	Result          string    `json:"result,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewScheduleResponse converts a model into a DTO. Pending placeholders have
// no assigned time and render empty clock fields.
func NewScheduleResponse(model models.InterviewSchedule) ScheduleResponse {
	response := ScheduleResponse{
		ID:              model.ID,
		ApplicationID:   model.ApplicationID,
		InterviewerID:   model.InterviewerID,
		InterviewerName: model.InterviewerName,
		Date:            model.Date,
		DurationMinutes: model.DurationMinutes,
		Status:          model.Status,
		MeetingLink:     model.MeetingLink,
		Result:          model.Result,
		Notes:           model.Notes,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Status != models.ScheduleStatusPending {
		if start, err := wallclock.ToClockString(model.StartMinutes); err == nil {
			response.StartTime = start
		}
		if end, err := wallclock.ToClockString(model.EndMinutes() % wallclock.MinutesPerDay); err == nil {
			response.EndTime = end
		}
		response.DisplayStart = wallclock.DisplayMinutes(model.StartMinutes)
		response.DisplayEnd = wallclock.DisplayMinutes(model.EndMinutes())
	}

	return response
}

// NewScheduleResponseSlice converts a slice of models into DTOs.
func NewScheduleResponseSlice(schedules []models.InterviewSchedule) []ScheduleResponse {
	responses := make([]ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, NewScheduleResponse(schedule))
	}

	return responses
}
