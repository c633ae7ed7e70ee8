package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/twistedwarden/esmv2-sub001/internal/dto"
	"github.com/twistedwarden/esmv2-sub001/pkg/wallclock"
)

// TimeSlot is a computed, not-yet-committed candidate interval.
type TimeSlot struct {
	StartMinutes int
	EndMinutes   int
	DisplayStart string
	DisplayEnd   string
}

// Response converts the slot into its API representation.
func (t TimeSlot) Response() dto.TimeSlotResponse {
	start, _ := wallclock.ToClockString(t.StartMinutes % wallclock.MinutesPerDay)
	end, _ := wallclock.ToClockString(t.EndMinutes % wallclock.MinutesPerDay)

	return dto.TimeSlotResponse{
		StartTime:    start,
		EndTime:      end,
		DisplayStart: t.DisplayStart,
		DisplayEnd:   t.DisplayEnd,
	}
}

func newTimeSlot(startMinutes, durationMinutes int) TimeSlot {
	end := startMinutes + durationMinutes
	return TimeSlot{
		StartMinutes: startMinutes,
		EndMinutes:   end,
		DisplayStart: wallclock.DisplayMinutes(startMinutes),
		DisplayEnd:   wallclock.DisplayMinutes(end),
	}
}

// AllocateConsecutive deterministically produces count sequential slots: slot
// zero starts at startTime and each following slot starts gapMinutes after
// the previous slot ends. It has no conflict awareness; callers must validate
// the sequence against the availability checker before committing it.
func AllocateConsecutive(startTime string, durationMinutes, gapMinutes, count int) ([]TimeSlot, error) {
	if count <= 0 {
		return nil, fmt.Errorf("slot count must be positive, got %d", count)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}
	if gapMinutes < 0 {
		return nil, fmt.Errorf("slot gap must not be negative, got %d", gapMinutes)
	}

	start, err := wallclock.ToMinutes(startTime)
	if err != nil {
		return nil, err
	}

	lastEnd := start + count*durationMinutes + (count-1)*gapMinutes
	if lastEnd > wallclock.MinutesPerDay {
		return nil, fmt.Errorf("%w: %d slots starting at %s cross midnight", wallclock.ErrInvalidRange, count, startTime)
	}

	slots := make([]TimeSlot, 0, count)
	for i := 0; i < count; i++ {
		slot := newTimeSlot(start, durationMinutes)
		slots = append(slots, slot)
		start = slot.EndMinutes + gapMinutes
	}

	return slots, nil
}

// SlotWindow bounds the next-available scan.
type SlotWindow struct {
	WorkStart   string
	WorkEnd     string
	Granularity int
}

// SlotService finds free interview slots inside a working-hours window.
type SlotService interface {
	FindNextAvailable(ctx context.Context, interviewerID uint, date string, durationMinutes int) (TimeSlot, error)
}

type slotService struct {
	availability AvailabilityService
	window       SlotWindow
	logger       zerolog.Logger
}

// NewSlotService builds the slot finder. Zero-valued window fields fall back
// to an 08:00-17:00 day scanned in 30-minute steps.
func NewSlotService(availability AvailabilityService, window SlotWindow, logger zerolog.Logger) SlotService {
	if window.WorkStart == "" {
		window.WorkStart = "08:00"
	}
	if window.WorkEnd == "" {
		window.WorkEnd = "17:00"
	}
	if window.Granularity <= 0 {
		window.Granularity = 30
	}

	return &slotService{
		availability: availability,
		window:       window,
		logger:       logger.With().Str("component", "slot_service").Logger(),
	}
}

// FindNextAvailable scans candidate start times in granularity steps from the
// window start and returns the first conflict-free slot that still ends
// inside the window.
func (s *slotService) FindNextAvailable(ctx context.Context, interviewerID uint, date string, durationMinutes int) (TimeSlot, error) {
	if durationMinutes <= 0 {
		return TimeSlot{}, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}

	windowStart, err := wallclock.ToMinutes(s.window.WorkStart)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("invalid work window start: %w", err)
	}
	windowEnd, err := wallclock.ToMinutes(s.window.WorkEnd)
	if err != nil {
		return TimeSlot{}, fmt.Errorf("invalid work window end: %w", err)
	}

	for start := windowStart; start+durationMinutes <= windowEnd; start += s.window.Granularity {
		conflicts, err := s.availability.FindConflicts(ctx, interviewerID, date, start, durationMinutes, 0)
		if err != nil {
			return TimeSlot{}, err
		}
		if len(conflicts) == 0 {
			return newTimeSlot(start, durationMinutes), nil
		}
	}

	s.logger.Debug().
		Uint("interviewer_id", interviewerID).
		Str("date", date).
		Int("duration_minutes", durationMinutes).
		Msg("working hours exhausted without a free slot")

	return TimeSlot{}, ErrNoAvailability
}
