package service

import (
	"errors"
	"fmt"
)

// ErrScheduleNotFound indicates the requested schedule does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrEvaluationNotFound indicates no evaluation exists for the schedule.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ErrEvaluationExists indicates an evaluation was already recorded; they are
// immutable once submitted.
var ErrEvaluationExists = errors.New("evaluation already recorded for this schedule")

// ErrIneligibleApplication indicates the application has not had its
// documents reviewed and cannot be scheduled.
var ErrIneligibleApplication = errors.New("application is not eligible for interview scheduling")

// ErrInvalidTransition indicates a lifecycle operation from a state that does
// not permit it.
var ErrInvalidTransition = errors.New("invalid schedule state transition")

// ErrScoreOutOfRange indicates a dimension score outside 1..5.
var ErrScoreOutOfRange = errors.New("evaluation score out of range")

// ErrInvalidRecommendation indicates an unknown overall recommendation.
var ErrInvalidRecommendation = errors.New("invalid overall recommendation")

// ErrInvalidResult indicates an unknown interview result value.
var ErrInvalidResult = errors.New("invalid interview result")

// ErrEmptyCohort indicates cohort filtering left nothing to endorse.
var ErrEmptyCohort = errors.New("no applications match the requested cohort")

// ErrNoAvailability indicates the working-hours window holds no free slot.
var ErrNoAvailability = errors.New("no available slot within working hours")

// ErrEmptyReason indicates a rejection without a reason.
var ErrEmptyReason = errors.New("rejection reason is required")

// ConflictError reports time-overlap collisions on an interviewer's calendar.
// It always carries enough detail to render a precise user-facing message.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "scheduling conflict"
	}

	first := e.Conflicts[0]
	return fmt.Sprintf("scheduling conflict with %d existing booking(s), first: %s from %s to %s",
		len(e.Conflicts), first.OwnerName, first.DisplayStart, first.DisplayEnd)
}

// BulkConflictError rejects an entire batch because one of its computed slots
// collides with an existing booking. Nothing from the batch is committed.
type BulkConflictError struct {
	SlotIndex     int
	ApplicationID uint
	Conflicts     []Conflict
}

func (e *BulkConflictError) Error() string {
	return fmt.Sprintf("bulk scheduling conflict at slot %d (application %d): %s",
		e.SlotIndex, e.ApplicationID, (&ConflictError{Conflicts: e.Conflicts}).Error())
}
