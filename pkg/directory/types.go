// Package directory provides typed HTTP clients for the external application
// and staff directories the scheduling core collaborates with. Payloads are
// modeled as explicit structs; responses that do not match the expected shape
// are rejected rather than passed through.
package directory

import (
	"context"
	"errors"
	"time"
)

// Application is the directory's record of a scholarship application. The
// directory owns the record; this service only reads it and advances its
// status.
type Application struct {
	ID            uint       `json:"id"`
	ApplicantName string     `json:"applicant_name"`
	Status        string     `json:"status"`
	EndorsedAt    *time.Time `json:"endorsed_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Interviewer is a staff directory entry. ID is the authoritative identity
// key; DisplayName is a human label and distinct interviewers can share one.
type Interviewer struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
}

// Application statuses owned by the external directory.
const (
	ApplicationStatusDocumentsReviewed  = "documents_reviewed"
	ApplicationStatusInterviewScheduled = "interview_scheduled"
	ApplicationStatusInterviewCompleted = "interview_completed"
	ApplicationStatusEndorsedToSSC      = "endorsed_to_ssc"
	ApplicationStatusRejected           = "rejected"
)

// ErrUpstreamTimeout indicates a directory call exceeded its deadline. The
// caller may retry; this package never retries on its own.
var ErrUpstreamTimeout = errors.New("upstream directory timeout")

// ErrUpstreamFailure indicates the directory answered with an error or an
// unparseable payload.
var ErrUpstreamFailure = errors.New("upstream directory failure")

// ErrApplicationNotFound indicates the directory has no such application.
var ErrApplicationNotFound = errors.New("application not found")

// ApplicationDirectory exposes the application records owned by the external
// scholarship system.
type ApplicationDirectory interface {
	ListApplications(ctx context.Context, status string) ([]Application, error)
	GetApplication(ctx context.Context, id uint) (Application, error)
	UpdateApplicationStatus(ctx context.Context, id uint, status string) error
}

// StaffDirectory lists the interviewers eligible for assignment.
type StaffDirectory interface {
	ListInterviewers(ctx context.Context) ([]Interviewer, error)
}
