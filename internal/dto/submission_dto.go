package dto

import (
	"time"

	"github.com/leaps-program/leaps-api/internal/models"
)

// SubmissionCreateRequest describes the payload for creating a submission.
type SubmissionCreateRequest struct {
	ActivityCode string                 `json:"activity_code" validate:"required,oneof=LEARN EXPLORE AMPLIFY PRESENT SHINE"`
	Payload      map[string]interface{} `json:"payload" validate:"required"`
	Visibility   string                 `json:"visibility" validate:"omitempty,oneof=public private"`
}

// SubmissionListRequest describes query string filters for listing submissions.
type SubmissionListRequest struct {
	UserID       *uint   `query:"user_id"`
	ActivityCode *string `query:"activity_code" validate:"omitempty,oneof=LEARN EXPLORE AMPLIFY PRESENT SHINE"`
	Status       *string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Page         int     `query:"page" validate:"omitempty,gte=0"`
	PageSize     int     `query:"page_size" validate:"omitempty,gte=0,lte=100"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint                   `json:"id"`
	UserID       uint                   `json:"user_id"`
	ActivityCode string                 `json:"activity_code"`
	Status       string                 `json:"status"`
	Visibility   string                 `json:"visibility"`
	Payload      map[string]interface{} `json:"payload"`
	ReviewerID   *uint                  `json:"reviewer_id"`
	ReviewNote   string                 `json:"review_note,omitempty"`
	ReviewedAt   *time.Time             `json:"reviewed_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// SubmissionListResponse wraps a paginated submission listing.
type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int64                `json:"total"`
}

// NewSubmissionResponse converts the model into its API representation.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           submission.ID,
		UserID:       submission.UserID,
		ActivityCode: string(submission.ActivityCode),
		Status:       submission.Status,
		Visibility:   submission.Visibility,
		Payload:      submission.Payload,
		ReviewerID:   submission.ReviewerID,
		ReviewNote:   submission.ReviewNote,
		ReviewedAt:   submission.ReviewedAt,
		CreatedAt:    submission.CreatedAt,
		UpdatedAt:    submission.UpdatedAt,
	}
}

// ActivityResponse describes one stage of the program.
type ActivityResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	DefaultPoints int    `json:"default_points"`
}
