package dto

import (
	"time"

	"github.com/twistedwarden/esmv2-sub001/internal/models"
)

// ActivityListRequest filters the audit trail.
type ActivityListRequest struct {
	EntityType string `json:"entity_type" validate:"omitempty,oneof=interview_schedule interview_evaluation application"`
	EntityID   uint   `json:"entity_id"`
	Page       int    `json:"page" validate:"omitempty,gte=1"`
	PageSize   int    `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ActivityResponse is one audit-trail entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse is a paginated audit-trail listing.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int64              `json:"total"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   map[string]interface{}(model.Metadata),
		CreatedAt:  model.CreatedAt,
	}
}
