package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit trail action names.
const (
	AuditActionApproveSubmission   = "APPROVE_SUBMISSION"
	AuditActionRejectSubmission    = "REJECT_SUBMISSION"
	AuditActionAdjustPoints        = "ADJUST_POINTS"
	AuditActionProcessWebhookEvent = "PROCESS_WEBHOOK_EVENT"
)

// AuditLog is an append-only record of "actor did action to target", written
// alongside every state-changing operation. Never mutated.
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
