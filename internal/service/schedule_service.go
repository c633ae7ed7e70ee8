package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/models"
	"github.com/twistedwarden/esmv2-sub001/internal/observability"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/pkg/directory"
	"github.com/twistedwarden/esmv2-sub001/pkg/wallclock"
)

// ScheduleService drives the interview schedule lifecycle: pending →
// scheduled → completed/cancelled, plus rescheduling and bulk booking.
type ScheduleService interface {
	CreatePending(ctx context.Context, applicationID uint, actor Actor) (dto.ScheduleResponse, error)
	Schedule(ctx context.Context, payload dto.ScheduleCreateRequest, actor Actor) (dto.ScheduleResponse, error)
	BulkSchedule(ctx context.Context, payload dto.BulkScheduleRequest, actor Actor) (dto.BulkScheduleResult, error)
	Complete(ctx context.Context, scheduleID uint, result, notes string, actor Actor) (dto.ScheduleResponse, error)
	Cancel(ctx context.Context, scheduleID uint, reason string, actor Actor) (dto.ScheduleResponse, error)
	MarkNoShow(ctx context.Context, scheduleID uint, notes string, actor Actor) (dto.ScheduleResponse, error)
	Reschedule(ctx context.Context, scheduleID uint, payload dto.RescheduleRequest, actor Actor) (dto.ScheduleResponse, error)
	Get(ctx context.Context, scheduleID uint) (dto.ScheduleResponse, error)
	List(ctx context.Context, filter repository.ScheduleFilter) ([]dto.ScheduleResponse, error)
}

type scheduleService struct {
	schedules       repository.ScheduleRepository
	availability    AvailabilityService
	applications    directory.ApplicationDirectory
	activity        ActivityRecorder
	outcomes        OutcomePublisher
	validator       *validator.Validate
	sanitizer       *bluemonday.Policy
	logger          zerolog.Logger
	locks           *keyedMutex
	defaultDuration int
}

// NewScheduleService builds the schedule lifecycle service.
func NewScheduleService(
	schedules repository.ScheduleRepository,
	availability AvailabilityService,
	applications directory.ApplicationDirectory,
	activity ActivityRecorder,
	outcomes OutcomePublisher,
	validate *validator.Validate,
	defaultDuration int,
	logger zerolog.Logger,
) ScheduleService {
	if defaultDuration <= 0 {
		defaultDuration = 30
	}

	return &scheduleService{
		schedules:       schedules,
		availability:    availability,
		applications:    applications,
		activity:        activity,
		outcomes:        outcomes,
		validator:       validate,
		sanitizer:       bluemonday.StrictPolicy(),
		logger:          logger.With().Str("component", "schedule_service").Logger(),
		locks:           newKeyedMutex(),
		defaultDuration: defaultDuration,
	}
}

// CreatePending creates a placeholder for an eligible application that has no
// assigned time yet.
func (s *scheduleService) CreatePending(ctx context.Context, applicationID uint, actor Actor) (dto.ScheduleResponse, error) {
	application, err := s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if application.Status != directory.ApplicationStatusDocumentsReviewed {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: application %d has status %q", ErrIneligibleApplication, applicationID, application.Status)
	}

	schedule := models.InterviewSchedule{
		ApplicationID:   applicationID,
		DurationMinutes: s.defaultDuration,
		Status:          models.ScheduleStatusPending,
	}
	if err := s.schedules.Create(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.recordActivity(ctx, actor, "schedule.create_pending", schedule.ID, map[string]interface{}{
		"application_id": applicationID,
	})

	return dto.NewScheduleResponse(schedule), nil
}

// Schedule books one interview. The conflict check and the write are
// serialized per (interviewer, date) so concurrent bookings cannot slip an
// undetected overlap in between.
func (s *scheduleService) Schedule(ctx context.Context, payload dto.ScheduleCreateRequest, actor Actor) (dto.ScheduleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	startMinutes, err := wallclock.ToMinutes(payload.StartTime)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	duration := payload.DurationMinutes
	if duration <= 0 {
		duration = s.defaultDuration
	}
	if startMinutes+duration > wallclock.MinutesPerDay {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: interview starting at %s crosses midnight", wallclock.ErrInvalidRange, payload.StartTime)
	}

	application, err := s.applications.GetApplication(ctx, payload.ApplicationID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if application.Status != directory.ApplicationStatusDocumentsReviewed {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: application %d has status %q", ErrIneligibleApplication, payload.ApplicationID, application.Status)
	}

	unlock := s.locks.Lock(calendarKey(payload.InterviewerID, payload.Date))
	defer unlock()

	conflicts, err := s.availability.FindConflicts(ctx, payload.InterviewerID, payload.Date, startMinutes, duration, 0)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if len(conflicts) > 0 {
		observability.SchedulingConflicts().WithLabelValues("schedule").Inc()
		s.publishConflict(ctx, payload.ApplicationID, payload.InterviewerID, conflicts)
		return dto.ScheduleResponse{}, &ConflictError{Conflicts: conflicts}
	}

	schedule := models.InterviewSchedule{
		ApplicationID:   payload.ApplicationID,
		InterviewerID:   payload.InterviewerID,
		InterviewerName: payload.InterviewerName,
		Date:            payload.Date,
		StartMinutes:    startMinutes,
		DurationMinutes: duration,
		Status:          models.ScheduleStatusScheduled,
		MeetingLink:     payload.MeetingLink,
		Notes:           s.sanitize(payload.Notes),
	}
	if err := s.schedules.Create(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := s.applications.UpdateApplicationStatus(ctx, payload.ApplicationID, directory.ApplicationStatusInterviewScheduled); err != nil {
		// Undo the booking so the caller never observes a half-applied state.
		schedule.Status = models.ScheduleStatusCancelled
		if undoErr := s.schedules.Update(ctx, &schedule); undoErr != nil {
			s.logger.Error().Err(undoErr).Uint("schedule_id", schedule.ID).Msg("failed to undo booking after upstream failure")
		}
		return dto.ScheduleResponse{}, err
	}

	observability.SchedulesBooked().WithLabelValues("schedule").Inc()
	s.recordActivity(ctx, actor, "schedule.book", schedule.ID, map[string]interface{}{
		"application_id": payload.ApplicationID,
		"interviewer_id": payload.InterviewerID,
		"date":           payload.Date,
		"start_time":     payload.StartTime,
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeScheduled,
		ScheduleID:    schedule.ID,
		ApplicationID: schedule.ApplicationID,
		InterviewerID: schedule.InterviewerID,
		Message:       fmt.Sprintf("interview scheduled on %s at %s", schedule.Date, wallclock.DisplayMinutes(schedule.StartMinutes)),
	})

	return dto.NewScheduleResponse(schedule), nil
}

// BulkSchedule allocates consecutive slots for many applications on one
// interviewer's calendar and commits them all-or-nothing. Every slot is
// re-checked against availability because pre-existing bookings may lie
// between consecutive slots.
func (s *scheduleService) BulkSchedule(ctx context.Context, payload dto.BulkScheduleRequest, actor Actor) (dto.BulkScheduleResult, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkScheduleResult{}, err
	}

	duration := payload.DurationMinutes
	if duration <= 0 {
		duration = s.defaultDuration
	}

	slots, err := AllocateConsecutive(payload.StartTime, duration, payload.GapMinutes, len(payload.ApplicationIDs))
	if err != nil {
		return dto.BulkScheduleResult{}, err
	}

	applications := make([]directory.Application, 0, len(payload.ApplicationIDs))
	for _, applicationID := range payload.ApplicationIDs {
		application, err := s.applications.GetApplication(ctx, applicationID)
		if err != nil {
			return dto.BulkScheduleResult{}, fmt.Errorf("application %d: %w", applicationID, err)
		}
		if application.Status != directory.ApplicationStatusDocumentsReviewed {
			return dto.BulkScheduleResult{}, fmt.Errorf("%w: application %d has status %q", ErrIneligibleApplication, applicationID, application.Status)
		}
		applications = append(applications, application)
	}

	unlock := s.locks.Lock(calendarKey(payload.InterviewerID, payload.Date))
	defer unlock()

	for i, slot := range slots {
		conflicts, err := s.availability.FindConflicts(ctx, payload.InterviewerID, payload.Date, slot.StartMinutes, duration, 0)
		if err != nil {
			return dto.BulkScheduleResult{}, err
		}
		if len(conflicts) > 0 {
			observability.SchedulingConflicts().WithLabelValues("bulk_schedule").Inc()
			s.publishConflict(ctx, payload.ApplicationIDs[i], payload.InterviewerID, conflicts)
			return dto.BulkScheduleResult{}, &BulkConflictError{
				SlotIndex:     i,
				ApplicationID: payload.ApplicationIDs[i],
				Conflicts:     conflicts,
			}
		}
	}

	schedules := make([]*models.InterviewSchedule, 0, len(slots))
	for i, slot := range slots {
		schedules = append(schedules, &models.InterviewSchedule{
			ApplicationID:   payload.ApplicationIDs[i],
			InterviewerID:   payload.InterviewerID,
			InterviewerName: payload.InterviewerName,
			Date:            payload.Date,
			StartMinutes:    slot.StartMinutes,
			DurationMinutes: duration,
			Status:          models.ScheduleStatusScheduled,
			MeetingLink:     payload.MeetingLink,
		})
	}

	if err := s.schedules.CreateBatch(ctx, schedules); err != nil {
		return dto.BulkScheduleResult{}, err
	}

	result := dto.BulkScheduleResult{Schedules: make([]dto.ScheduleResponse, 0, len(schedules))}
	for _, schedule := range schedules {
		if err := s.applications.UpdateApplicationStatus(ctx, schedule.ApplicationID, directory.ApplicationStatusInterviewScheduled); err != nil {
			s.logger.Warn().Err(err).Uint("application_id", schedule.ApplicationID).Msg("upstream status update failed after bulk booking")
			result.StatusUpdateFailures = append(result.StatusUpdateFailures, dto.BulkScheduleFailure{
				ApplicationID: schedule.ApplicationID,
				Reason:        err.Error(),
			})
		}
		result.Schedules = append(result.Schedules, dto.NewScheduleResponse(*schedule))
	}

	observability.SchedulesBooked().WithLabelValues("bulk_schedule").Add(float64(len(schedules)))
	s.recordActivity(ctx, actor, "schedule.bulk_book", 0, map[string]interface{}{
		"interviewer_id": payload.InterviewerID,
		"date":           payload.Date,
		"count":          len(schedules),
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeBulkResult,
		InterviewerID: payload.InterviewerID,
		Message:       fmt.Sprintf("%d interviews scheduled on %s", len(schedules), payload.Date),
		Details: map[string]interface{}{
			"scheduled":              len(schedules),
			"status_update_failures": len(result.StatusUpdateFailures),
		},
	})

	return result, nil
}

// Complete finishes a scheduled interview with a result and advances the
// owning application to interview_completed.
func (s *scheduleService) Complete(ctx context.Context, scheduleID uint, result, notes string, actor Actor) (dto.ScheduleResponse, error) {
	switch result {
	case models.ResultPassed, models.ResultFailed, models.ResultNeedsFollowup:
	default:
		return dto.ScheduleResponse{}, fmt.Errorf("%w: %q", ErrInvalidResult, result)
	}

	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if schedule.Status != models.ScheduleStatusScheduled {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: cannot complete a %s schedule", ErrInvalidTransition, schedule.Status)
	}

	previous := schedule
	schedule.Status = models.ScheduleStatusCompleted
	schedule.Result = result
	if notes != "" {
		schedule.Notes = appendNote(schedule.Notes, s.sanitize(notes))
	}
	if err := s.schedules.Update(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	if err := s.applications.UpdateApplicationStatus(ctx, schedule.ApplicationID, directory.ApplicationStatusInterviewCompleted); err != nil {
		// Put the row back so completion can be retried once the directory
		// recovers.
		if undoErr := s.schedules.Update(ctx, &previous); undoErr != nil {
			s.logger.Error().Err(undoErr).Uint("schedule_id", schedule.ID).Msg("failed to undo completion after upstream failure")
		}
		return dto.ScheduleResponse{}, err
	}

	s.recordActivity(ctx, actor, "schedule.complete", schedule.ID, map[string]interface{}{
		"application_id": schedule.ApplicationID,
		"result":         result,
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeCompleted,
		ScheduleID:    schedule.ID,
		ApplicationID: schedule.ApplicationID,
		InterviewerID: schedule.InterviewerID,
		Message:       fmt.Sprintf("interview completed with result %s", result),
	})

	return dto.NewScheduleResponse(schedule), nil
}

// Cancel marks a pending or scheduled booking cancelled. Cancelling an
// already-cancelled schedule is a no-op, not an error.
func (s *scheduleService) Cancel(ctx context.Context, scheduleID uint, reason string, actor Actor) (dto.ScheduleResponse, error) {
	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	if schedule.Status == models.ScheduleStatusCancelled {
		return dto.NewScheduleResponse(schedule), nil
	}
	if schedule.Status == models.ScheduleStatusCompleted {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: cannot cancel a completed schedule", ErrInvalidTransition)
	}

	schedule.Status = models.ScheduleStatusCancelled
	if reason != "" {
		schedule.Notes = appendNote(schedule.Notes, "cancelled: "+s.sanitize(reason))
	}
	if err := s.schedules.Update(ctx, &schedule); err != nil {
		return dto.ScheduleResponse{}, err
	}

	// The application stays eligible for re-scheduling; its status is
	// deliberately left untouched.
	s.recordActivity(ctx, actor, "schedule.cancel", schedule.ID, map[string]interface{}{
		"application_id": schedule.ApplicationID,
		"reason":         reason,
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeCancelled,
		ScheduleID:    schedule.ID,
		ApplicationID: schedule.ApplicationID,
		InterviewerID: schedule.InterviewerID,
		Message:       "interview cancelled",
	})

	return dto.NewScheduleResponse(schedule), nil
}

// MarkNoShow completes the schedule as failed with a no-show annotation; it
// is not a distinct terminal state.
func (s *scheduleService) MarkNoShow(ctx context.Context, scheduleID uint, notes string, actor Actor) (dto.ScheduleResponse, error) {
	annotation := "no-show"
	if strings.TrimSpace(notes) != "" {
		annotation = "no-show: " + notes
	}

	return s.Complete(ctx, scheduleID, models.ResultFailed, annotation, actor)
}

// Reschedule cancels the original booking and creates its replacement in one
// transaction, so one application never carries two live records.
func (s *scheduleService) Reschedule(ctx context.Context, scheduleID uint, payload dto.RescheduleRequest, actor Actor) (dto.ScheduleResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScheduleResponse{}, err
	}

	startMinutes, err := wallclock.ToMinutes(payload.StartTime)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	original, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if original.IsTerminal() {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: cannot reschedule a %s schedule", ErrInvalidTransition, original.Status)
	}

	duration := payload.DurationMinutes
	if duration <= 0 {
		duration = original.DurationMinutes
	}
	if startMinutes+duration > wallclock.MinutesPerDay {
		return dto.ScheduleResponse{}, fmt.Errorf("%w: interview starting at %s crosses midnight", wallclock.ErrInvalidRange, payload.StartTime)
	}
	meetingLink := payload.MeetingLink
	if meetingLink == "" {
		meetingLink = original.MeetingLink
	}

	unlock := s.locks.Lock(calendarKey(original.InterviewerID, payload.Date))
	defer unlock()

	conflicts, err := s.availability.FindConflicts(ctx, original.InterviewerID, payload.Date, startMinutes, duration, original.ID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if len(conflicts) > 0 {
		observability.SchedulingConflicts().WithLabelValues("reschedule").Inc()
		s.publishConflict(ctx, original.ApplicationID, original.InterviewerID, conflicts)
		return dto.ScheduleResponse{}, &ConflictError{Conflicts: conflicts}
	}

	original.Status = models.ScheduleStatusCancelled
	if payload.Reason != "" {
		original.Notes = appendNote(original.Notes, "rescheduled: "+s.sanitize(payload.Reason))
	}

	replacement := models.InterviewSchedule{
		ApplicationID:   original.ApplicationID,
		InterviewerID:   original.InterviewerID,
		InterviewerName: original.InterviewerName,
		Date:            payload.Date,
		StartMinutes:    startMinutes,
		DurationMinutes: duration,
		Status:          models.ScheduleStatusScheduled,
		MeetingLink:     meetingLink,
	}
	if err := s.schedules.Replace(ctx, &original, &replacement); err != nil {
		return dto.ScheduleResponse{}, err
	}

	s.recordActivity(ctx, actor, "schedule.reschedule", replacement.ID, map[string]interface{}{
		"application_id":       replacement.ApplicationID,
		"previous_schedule_id": original.ID,
		"date":                 payload.Date,
		"start_time":           payload.StartTime,
	})
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeRescheduled,
		ScheduleID:    replacement.ID,
		ApplicationID: replacement.ApplicationID,
		InterviewerID: replacement.InterviewerID,
		Message:       fmt.Sprintf("interview moved to %s at %s", replacement.Date, wallclock.DisplayMinutes(replacement.StartMinutes)),
	})

	return dto.NewScheduleResponse(replacement), nil
}

func (s *scheduleService) Get(ctx context.Context, scheduleID uint) (dto.ScheduleResponse, error) {
	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	return dto.NewScheduleResponse(schedule), nil
}

func (s *scheduleService) List(ctx context.Context, filter repository.ScheduleFilter) ([]dto.ScheduleResponse, error) {
	schedules, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewScheduleResponseSlice(schedules), nil
}

func (s *scheduleService) getSchedule(ctx context.Context, scheduleID uint) (models.InterviewSchedule, error) {
	schedule, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.InterviewSchedule{}, ErrScheduleNotFound
		}
		return models.InterviewSchedule{}, err
	}

	return schedule, nil
}

func (s *scheduleService) sanitize(value string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(value))
}

func (s *scheduleService) recordActivity(ctx context.Context, actor Actor, action string, scheduleID uint, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}

	entry := ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: models.EntityTypeSchedule,
		Metadata:   metadata,
	}
	if scheduleID != 0 {
		entry.EntityID = &scheduleID
	}

	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record activity entry")
	}
}

func (s *scheduleService) publishConflict(ctx context.Context, applicationID, interviewerID uint, conflicts []Conflict) {
	s.outcomes.Publish(ctx, dto.OutcomeEvent{
		Type:          dto.OutcomeConflict,
		ApplicationID: applicationID,
		InterviewerID: interviewerID,
		Message:       (&ConflictError{Conflicts: conflicts}).Error(),
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	if note == "" {
		return existing
	}
	return existing + "\n" + note
}
