package dto

import (
	"time"

	"github.com/leaps-program/leaps-api/internal/models"
)

// AuditListRequest filters the audit trail listing.
type AuditListRequest struct {
	ActorID    *uint  `query:"actor_id"`
	Action     string `query:"action" validate:"omitempty,max=64"`
	EntityType string `query:"entity_type" validate:"omitempty,max=64"`
	Page       int    `query:"page" validate:"omitempty,gte=0"`
	PageSize   int    `query:"page_size" validate:"omitempty,gte=0,lte=100"`
}

// AuditEntryResponse is one audit trail record.
type AuditEntryResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// AuditListResponse wraps a paginated audit listing.
type AuditListResponse struct {
	Items []AuditEntryResponse `json:"items"`
	Total int64                `json:"total"`
}

// NewAuditEntryResponse converts the model into its API representation.
func NewAuditEntryResponse(entry models.AuditLog) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   entry.Metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
