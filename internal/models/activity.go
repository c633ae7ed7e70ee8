package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable scheduling and endorsement actions so every
// lifecycle transition can be traced back to a staff member.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}

const (
	// EntityTypeSchedule tags audit entries about interview schedules.
	EntityTypeSchedule = "interview_schedule"
	// EntityTypeEvaluation tags audit entries about interview evaluations.
	EntityTypeEvaluation = "interview_evaluation"
	// EntityTypeApplication tags audit entries about scholarship applications.
	EntityTypeApplication = "application"
)
