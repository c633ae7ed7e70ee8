package models

import "time"

// InterviewSchedule is one interview booking for one application with one
// interviewer at a fixed date and time. Times are minute-of-day offsets; Date
// is a plain "2006-01-02" calendar day so that conflict queries compare exact
// days without timezone drift.
type InterviewSchedule struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ApplicationID   uint      `gorm:"not null;index" json:"application_id"`
	InterviewerID   uint      `gorm:"not null;index:idx_interviewer_date" json:"interviewer_id"`
	InterviewerName string    `gorm:"size:255" json:"interviewer_name"`
	Date            string    `gorm:"size:10;not null;index:idx_interviewer_date" json:"date"`
	StartMinutes    int       `gorm:"not null" json:"start_minutes"`
	DurationMinutes int       `gorm:"not null;default:30" json:"duration_minutes"`
	Status          string    `gorm:"size:32;not null" json:"status"`
	MeetingLink     string    `gorm:"size:512" json:"meeting_link"`
	Result          string    `gorm:"size:32" json:"result"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

const (
	// ScheduleStatusPending indicates an eligible application with no assigned time yet.
	ScheduleStatusPending = "pending"
	// ScheduleStatusScheduled indicates interviewer, date and time have been assigned.
	ScheduleStatusScheduled = "scheduled"
	// ScheduleStatusCompleted indicates the interview happened and carries a result.
	ScheduleStatusCompleted = "completed"
	// ScheduleStatusCancelled indicates the booking was cancelled or superseded.
	ScheduleStatusCancelled = "cancelled"
	// ScheduleStatusRescheduled labels a booking replaced by a newer one.
	ScheduleStatusRescheduled = "rescheduled"
)

const (
	// ResultPassed marks an interview the candidate passed.
	ResultPassed = "passed"
	// ResultFailed marks an interview the candidate failed or missed.
	ResultFailed = "failed"
	// ResultNeedsFollowup marks an interview that needs another round.
	ResultNeedsFollowup = "needs_followup"
)

// EndMinutes returns the exclusive end of the booked interval.
func (s InterviewSchedule) EndMinutes() int {
	return s.StartMinutes + s.DurationMinutes
}

// Overlaps reports whether two half-open minute intervals intersect.
// Intervals that merely touch at an endpoint do not overlap.
func (s InterviewSchedule) Overlaps(startMinutes, endMinutes int) bool {
	return startMinutes < s.EndMinutes() && s.StartMinutes < endMinutes
}

// IsTerminal reports whether the schedule can no longer transition.
func (s InterviewSchedule) IsTerminal() bool {
	return s.Status == ScheduleStatusCompleted || s.Status == ScheduleStatusCancelled
}

// BlocksCalendar reports whether the schedule occupies its interviewer's
// calendar for conflict purposes.
func (s InterviewSchedule) BlocksCalendar() bool {
	return s.Status != ScheduleStatusCancelled
}
