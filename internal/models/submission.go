package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one piece of evidence for one activity by one user.
type Submission struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	UserID       uint              `gorm:"not null;index:idx_submissions_user_activity,priority:1" json:"user_id"`
	ActivityCode ActivityCode      `gorm:"size:16;not null;index:idx_submissions_user_activity,priority:2" json:"activity_code"`
	Status       string            `gorm:"size:16;not null;index" json:"status"`
	Visibility   string            `gorm:"size:16;not null;default:public" json:"visibility"`
	Payload      datatypes.JSONMap `gorm:"type:json" json:"payload"`
	ReviewerID   *uint             `json:"reviewer_id"`
	ReviewNote   string            `gorm:"type:text" json:"review_note"`
	ReviewedAt   *time.Time        `json:"reviewed_at"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

const (
	// SubmissionStatusPending indicates the evidence awaits a reviewer decision.
	SubmissionStatusPending = "pending"
	// SubmissionStatusApproved is terminal; the submission has been credited
	// or acknowledged.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected is terminal; no ledger effect.
	SubmissionStatusRejected = "rejected"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// IsTerminal reports whether the submission has reached a final review outcome.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}
