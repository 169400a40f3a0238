package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventStatus is the lifecycle state of a stored inbound LMS event.
type WebhookEventStatus string

const (
	// WebhookEventReceived is the initial state of every stored delivery.
	WebhookEventReceived WebhookEventStatus = "received"
	// WebhookEventProcessed means the event produced a ledger credit.
	WebhookEventProcessed WebhookEventStatus = "processed"
	// WebhookEventDuplicate means the credit already existed; no side effects.
	WebhookEventDuplicate WebhookEventStatus = "duplicate"
	// WebhookEventQueuedUnmatched means no user could be resolved yet; a later
	// reprocess may succeed once account linkage exists.
	WebhookEventQueuedUnmatched WebhookEventStatus = "queued_unmatched"
	// WebhookEventRejectedIneligible means the resolved user may not earn credit.
	WebhookEventRejectedIneligible WebhookEventStatus = "rejected_ineligible"
	// WebhookEventIgnored means the tag is not on the recognised allow-list.
	WebhookEventIgnored WebhookEventStatus = "ignored"
)

// WebhookEvent tracks one raw inbound course-completion delivery. The pairing
// of (event_id, tag) dedups raw deliveries independently of the ledger's
// idempotency key, because an event can be reprocessed. Status is the only
// field that transitions; rows are never deleted.
type WebhookEvent struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	EventID     string             `gorm:"size:191;not null;uniqueIndex:ux_webhook_events_event_tag,priority:1" json:"event_id"`
	Tag         string             `gorm:"size:191;not null;uniqueIndex:ux_webhook_events_event_tag,priority:2" json:"tag"`
	ContactID   string             `gorm:"size:64" json:"contact_id"`
	Email       string             `gorm:"size:255" json:"email"`
	UserID      *uint              `gorm:"index" json:"user_id"`
	Status      WebhookEventStatus `gorm:"size:32;not null;index" json:"status"`
	RawPayload  datatypes.JSONMap  `gorm:"type:json" json:"raw_payload"`
	ProcessedAt *time.Time         `json:"processed_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
