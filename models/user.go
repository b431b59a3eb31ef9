package models

import (
	"time"
)

// User is the local engagement record for a user (denormalized for performance).
// Identity lives in the profile service; this row is created lazily on first
// activity. Points only ever go up; streak fields are owned by the streak engine.
type User struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service

	Points           int64      `gorm:"default:0" json:"points"`
	CurrentStreak    int        `gorm:"default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"default:0" json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	Timestamps
}
