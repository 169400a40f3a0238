package models

import "time"

// Badge is a threshold unlock on a user's total points.
type Badge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	MinPoints int       `gorm:"not null" json:"min_points"`
	CreatedAt time.Time `json:"created_at"`
}

// UserBadge records an earned badge. The (user_id, badge_id) unique index
// makes awarding idempotent.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_user_badges_user_badge,priority:1" json:"user_id"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:ux_user_badges_user_badge,priority:2" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// DefaultBadges returns the badge catalogue seeded at boot.
func DefaultBadges() []Badge {
	return []Badge{
		{Slug: "rising-star", Name: "Rising Star", MinPoints: 50},
		{Slug: "trailblazer", Name: "Trailblazer", MinPoints: 150},
		{Slug: "luminary", Name: "Luminary", MinPoints: 300},
	}
}
