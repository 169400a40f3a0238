package models

import "time"

// Role identifies what a user is allowed to do within the program.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleReviewer    Role = "reviewer"
	RoleAdmin       Role = "admin"
	RoleSuperadmin  Role = "superadmin"
)

// User is a program participant or a member of the review staff. Users are
// created on first sign-in and never hard-deleted; the audit trail references
// them by id.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Role         Role      `gorm:"size:32;not null;default:participant" json:"role"`
	Ineligible   bool      `gorm:"not null;default:false" json:"ineligible"`
	LMSContactID *string   `gorm:"size:64;index" json:"lms_contact_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanEarnPoints reports whether the user may submit evidence or receive
// ledger credit. Student-type accounts are flagged ineligible.
func (u User) CanEarnPoints() bool {
	return !u.Ineligible
}

// IsReviewStaff reports whether the user may act on pending submissions.
func (u User) IsReviewStaff() bool {
	return u.Role.IsReviewStaff()
}

// IsReviewStaff reports whether the role may act on pending submissions.
func (r Role) IsReviewStaff() bool {
	switch r {
	case RoleReviewer, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}
