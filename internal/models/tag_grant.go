package models

import "time"

// TagGrant is a narrow dedup guard scoped to (user, tag): it prevents
// awarding the same named course-completion credit twice even when the
// upstream event id differs across redeliveries.
type TagGrant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_tag_grants_user_tag,priority:1" json:"user_id"`
	Tag       string    `gorm:"size:191;not null;uniqueIndex:ux_tag_grants_user_tag,priority:2" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
