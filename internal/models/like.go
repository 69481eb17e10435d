package models

import "time"

// Like target kinds. A like points at either a post or a comment.
const (
	TargetTypePost    = "post"
	TargetTypeComment = "comment"
)

// ValidTargetType reports whether t names a likeable entity kind.
func ValidTargetType(t string) bool {
	return t == TargetTypePost || t == TargetTypeComment
}

// Like represents a user's like on a post or a comment.
// The combination of UserID, TargetType and TargetID must be unique; the
// database constraint is what makes the concurrent like toggle safe.
// Likes are hard-deleted, so the computed counters never see stale rows.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_target" json:"user_id"`
	TargetType string    `gorm:"not null;uniqueIndex:idx_user_target" json:"target_type"`
	TargetID   uint      `gorm:"not null;uniqueIndex:idx_user_target" json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
