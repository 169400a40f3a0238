package dto

import (
	"time"

	"github.com/leaps-program/leaps-api/internal/models"
)

// WebhookEventRequest is the normalised inbound LMS payload.
type WebhookEventRequest struct {
	EventID   string                 `json:"event_id" validate:"required,max=191"`
	Tag       string                 `json:"tag" validate:"required,max=191"`
	ContactID string                 `json:"contact_id" validate:"omitempty,max=64"`
	Email     string                 `json:"email" validate:"omitempty,email"`
	Raw       map[string]interface{} `json:"raw"`
}

// WebhookEventResult reports the terminal status of one pipeline run.
type WebhookEventResult struct {
	EventID uint   `json:"event_id"`
	Status  string `json:"status"`
}

// WebhookEventListRequest filters the stored event listing.
type WebhookEventListRequest struct {
	Status   *string `query:"status" validate:"omitempty,oneof=received processed duplicate queued_unmatched rejected_ineligible ignored"`
	Page     int     `query:"page" validate:"omitempty,gte=0"`
	PageSize int     `query:"page_size" validate:"omitempty,gte=0,lte=100"`
}

// WebhookEventResponse is the API representation of a stored delivery.
type WebhookEventResponse struct {
	ID          uint                   `json:"id"`
	EventID     string                 `json:"event_id"`
	Tag         string                 `json:"tag"`
	ContactID   string                 `json:"contact_id,omitempty"`
	Email       string                 `json:"email,omitempty"`
	UserID      *uint                  `json:"user_id"`
	Status      string                 `json:"status"`
	RawPayload  map[string]interface{} `json:"raw_payload,omitempty"`
	ProcessedAt *time.Time             `json:"processed_at"`
	CreatedAt   time.Time              `json:"created_at"`
}

// WebhookEventListResponse wraps a paginated event listing.
type WebhookEventListResponse struct {
	Items []WebhookEventResponse `json:"items"`
	Total int64                  `json:"total"`
}

// NewWebhookEventResponse converts the model into its API representation.
func NewWebhookEventResponse(event models.WebhookEvent) WebhookEventResponse {
	return WebhookEventResponse{
		ID:          event.ID,
		EventID:     event.EventID,
		Tag:         event.Tag,
		ContactID:   event.ContactID,
		Email:       event.Email,
		UserID:      event.UserID,
		Status:      string(event.Status),
		RawPayload:  event.RawPayload,
		ProcessedAt: event.ProcessedAt,
		CreatedAt:   event.CreatedAt,
	}
}
