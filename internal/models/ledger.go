package models

import (
	"time"

	"gorm.io/datatypes"
)

// PointsSource records which path produced a ledger entry.
type PointsSource string

const (
	PointsSourceManual  PointsSource = "MANUAL"
	PointsSourceWebhook PointsSource = "WEBHOOK"
	PointsSourceForm    PointsSource = "FORM"
)

// ExternalSourceAdminApproval marks ledger entries produced by a reviewer
// approving a submission. Paired with "submission_<id>" as the event id it
// forms the idempotency key for the manual crediting path.
const ExternalSourceAdminApproval = "admin_approval"

// PointsLedgerEntry is an immutable fact: this user received (or lost) Delta
// points for this activity, from this source, at this time. Entries are never
// updated or deleted; corrections are offsetting inserts. A user's total is
// always derived by summing deltas.
//
// The (external_source, external_event_id) pair is unique when both are
// present. The database rejecting the second of two racing inserts is the
// concurrency-control mechanism for idempotent crediting.
type PointsLedgerEntry struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;index:idx_ledger_user_activity,priority:1" json:"user_id"`
	ActivityCode    ActivityCode      `gorm:"size:16;not null;index:idx_ledger_user_activity,priority:2" json:"activity_code"`
	Delta           int               `gorm:"not null" json:"delta"`
	Source          PointsSource      `gorm:"size:16;not null" json:"source"`
	ExternalSource  *string           `gorm:"size:64;uniqueIndex:ux_ledger_external_event,priority:1" json:"external_source"`
	ExternalEventID *string           `gorm:"size:191;uniqueIndex:ux_ledger_external_event,priority:2" json:"external_event_id"`
	OccurredAt      time.Time         `gorm:"not null" json:"occurred_at"`
	Metadata        datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt       time.Time         `json:"created_at"`
}
