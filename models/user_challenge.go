package models

import (
	"time"
)

type UserChallengeStatus string

const (
	UserChallengeAccepted  UserChallengeStatus = "accepted"
	UserChallengeCompleted UserChallengeStatus = "completed"
	UserChallengeFailed    UserChallengeStatus = "failed"
)

// UserChallenge tracks one user's engagement with one challenge.
//
// Invariants:
//   - at most one row per (user_id, challenge_id), enforced by the unique
//     composite index, not by application-level check-then-create
//   - CompletedAt is non-nil iff Verified iff Status == completed
//   - PointsEarned > 0 implies Verified
type UserChallenge struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"index;uniqueIndex:idx_user_challenge;not null" json:"user_id"`
	ChallengeID string `gorm:"uniqueIndex:idx_user_challenge;not null" json:"challenge_id"`

	Status   UserChallengeStatus `gorm:"type:varchar(16);index;default:'accepted'" json:"status"`
	Verified bool                `gorm:"default:false" json:"verified"`

	// Verification fields, overwritten by every completion attempt.
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	VerifiedBy   string     `gorm:"type:varchar(16)" json:"verified_by,omitempty"` // always "AI" when set
	AIConfidence float64    `gorm:"default:0" json:"ai_confidence"`
	AIReasoning  string     `gorm:"type:text" json:"ai_reasoning,omitempty"`

	PointsEarned    int  `gorm:"default:0" json:"points_earned"`
	CountsForStreak bool `gorm:"default:true" json:"counts_for_streak"` // copied from the challenge at accept time

	AcceptedAt  time.Time  `gorm:"not null" json:"accepted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	PhotoURL string    `gorm:"type:text" json:"photo_url,omitempty"`
	Location *GeoPoint `gorm:"serializer:json;type:jsonb" json:"location,omitempty"`

	// Cached from the catalog at accept time so completion can degrade
	// gracefully if the catalog row disappears.
	ChallengeTitle  string `json:"challenge_title,omitempty"`
	ChallengePoints int    `json:"challenge_points,omitempty"`

	Timestamps
}
