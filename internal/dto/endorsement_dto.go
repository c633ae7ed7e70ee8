package dto

import (
	"time"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
)

// EndorsementReviewItem is one row on the endorsement review screen: an
// application joined with its evaluation outcome and derived classification.
type EndorsementReviewItem struct {
	ApplicationID     uint                    `json:"application_id"`
	ApplicantName     string                  `json:"applicant_name"`
	ApplicationStatus string                  `json:"application_status"`
	State             models.EndorsementState `json:"state"`
	Recommendation    string                  `json:"recommendation,omitempty"`
	ScheduleID        uint                    `json:"schedule_id,omitempty"`
	EvaluatedAt       *time.Time              `json:"evaluated_at,omitempty"`
}

// BulkEndorseRequest submits a selection of applications as one cohort.
type BulkEndorseRequest struct {
	ApplicationIDs []uint `json:"application_ids" validate:"required,min=1,dive,required"`
	Cohort         string `json:"cohort" validate:"required,oneof=ready conditional all"`
	Note           string `json:"note"`
}

// BulkEndorseFailure reports one application that could not be endorsed.
type BulkEndorseFailure struct {
	ApplicationID uint   `json:"application_id"`
	Reason        string `json:"reason"`
}

// BulkEndorseResult reports the outcome of a bulk endorsement. Applications
// excluded by cohort filtering are not counted as processed or failed.
type BulkEndorseResult struct {
	EndorsedCount  int                  `json:"endorsed_count"`
	TotalProcessed int                  `json:"total_processed"`
	Failures       []BulkEndorseFailure `json:"failures,omitempty"`
}

// EndorseRequest endorses a single application.
type EndorseRequest struct {
	Note string `json:"note"`
}

// RejectRequest rejects a single application; the reason is mandatory.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}
