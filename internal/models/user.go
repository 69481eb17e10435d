// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the Quorum application.
// Password holds the bcrypt digest, never the plaintext.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	IsAdmin   bool           `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// ProfileStats holds the aggregated activity counters shown on a user profile.
// All three values are computed by count queries at read time.
type ProfileStats struct {
	TotalPosts      int64 `json:"total_posts"`
	TotalComments   int64 `json:"total_comments"`
	TotalLikesGiven int64 `json:"total_likes"`
}
