package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/internal/repository"
	"github.com/twistedwarden/esmv2-sub001/pkg/wallclock"
)

// Conflict describes one existing booking that collides with a candidate
// interval, with display-formatted boundaries for user-facing messages.
type Conflict struct {
	ScheduleID    uint
	InterviewerID uint
	OwnerName     string
	StartMinutes  int
	EndMinutes    int
	DisplayStart  string
	DisplayEnd    string
}

// Response converts the conflict into its API representation.
func (c Conflict) Response() dto.ConflictResponse {
	return dto.ConflictResponse{
		ScheduleID:   c.ScheduleID,
		OwnerName:    c.OwnerName,
		DisplayStart: c.DisplayStart,
		DisplayEnd:   c.DisplayEnd,
	}
}

// AvailabilityService reports overlap conflicts on an interviewer's calendar.
// Detection keys on the interviewer id; display names are labels and distinct
// interviewers can share one.
type AvailabilityService interface {
	FindConflicts(ctx context.Context, interviewerID uint, date string, startMinutes, durationMinutes int, excludeScheduleID uint) ([]Conflict, error)
}

type availabilityService struct {
	schedules repository.ScheduleRepository
	logger    zerolog.Logger
}

// NewAvailabilityService builds the read-only conflict checker.
func NewAvailabilityService(schedules repository.ScheduleRepository, logger zerolog.Logger) AvailabilityService {
	return &availabilityService{
		schedules: schedules,
		logger:    logger.With().Str("component", "availability_service").Logger(),
	}
}

// FindConflicts scans non-cancelled bookings for the interviewer and date and
// returns those overlapping the half-open candidate interval. Intervals that
// only touch at an endpoint are not conflicts.
func (s *availabilityService) FindConflicts(ctx context.Context, interviewerID uint, date string, startMinutes, durationMinutes int, excludeScheduleID uint) ([]Conflict, error) {
	existing, err := s.schedules.ListActiveByInterviewerAndDate(ctx, interviewerID, date)
	if err != nil {
		return nil, err
	}

	candidateEnd := startMinutes + durationMinutes

	var conflicts []Conflict
	for _, booked := range existing {
		if booked.ID == excludeScheduleID {
			continue
		}
		if !booked.Overlaps(startMinutes, candidateEnd) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			ScheduleID:    booked.ID,
			InterviewerID: booked.InterviewerID,
			OwnerName:     booked.InterviewerName,
			StartMinutes:  booked.StartMinutes,
			EndMinutes:    booked.EndMinutes(),
			DisplayStart:  wallclock.DisplayMinutes(booked.StartMinutes),
			DisplayEnd:    wallclock.DisplayMinutes(booked.EndMinutes()),
		})
	}

	return conflicts, nil
}
