package dto

import "time"

// Outcome event types emitted by the scheduling core.
const (
	OutcomeScheduled   = "scheduled"
	OutcomeRescheduled = "rescheduled"
	OutcomeConflict    = "conflict"
	OutcomeCompleted   = "completed"
	OutcomeCancelled   = "cancelled"
	OutcomeBulkResult  = "bulk-result"
)

// OutcomeEvent is a structured, fire-and-forget notification about a
// scheduling or endorsement outcome. Delivery and formatting belong to the
// consuming collaborator.
type OutcomeEvent struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	ScheduleID    uint                   `json:"schedule_id,omitempty"`
	ApplicationID uint                   `json:"application_id,omitempty"`
	InterviewerID uint                   `json:"interviewer_id,omitempty"`
	Message       string                 `json:"message"`
	Details       map[string]interface{} `json:"details,omitempty"`
	EmittedAt     time.Time              `json:"emitted_at"`
}
