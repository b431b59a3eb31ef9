package models

import (
	"time"
)

type ChallengeCategory string

const (
	CategoryFitness     ChallengeCategory = "fitness"
	CategoryCreativity  ChallengeCategory = "creativity"
	CategorySocial      ChallengeCategory = "social"
	CategoryAdventure   ChallengeCategory = "adventure"
	CategoryMindfulness ChallengeCategory = "mindfulness"
	CategoryFood        ChallengeCategory = "food"
	CategoryLearning    ChallengeCategory = "learning"
)

type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// Challenge is a catalog entry. Immutable once referenced by completions
// except for the accept/completion counters and admin edits.
type Challenge struct {
	ID          string              `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Slug        string              `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string              `gorm:"not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	Category    ChallengeCategory   `gorm:"type:varchar(32);index;not null" json:"category"`
	Difficulty  ChallengeDifficulty `gorm:"type:varchar(16);default:'easy'" json:"difficulty"`
	Points      int                 `gorm:"default:0" json:"points"`
	IsDaily     bool                `gorm:"index;default:false" json:"is_daily"`

	// Location gating (optional). RadiusMeters of 0 means no radius check.
	RequiresLocation bool    `gorm:"default:false" json:"requires_location"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
	RadiusMeters     float64 `json:"radius_meters,omitempty"`

	// Global counters, bumped via atomic increments only. Never read-modify-write.
	TotalAccepts     int64 `gorm:"default:0" json:"total_accepts"`
	TotalCompletions int64 `gorm:"default:0" json:"total_completions"`

	Timestamps
}

// GeoPoint is the one location shape accepted at the storage boundary.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
