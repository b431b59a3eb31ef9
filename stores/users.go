package stores

import (
	"context"
	"time"

	"challenge-streak-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserStore owns the local engagement record. Points are monotonic; streak
// fields are written only by the streak engine via SetStreak.
type UserStore interface {
	// Get returns the user's engagement record, creating it on first activity.
	Get(ctx context.Context, externalUserID string) (*models.User, error)
	IncrementPoints(ctx context.Context, externalUserID string, delta int64) error
	SetStreak(ctx context.Context, externalUserID string, current, longest int, lastActivity *time.Time) error
}

type userStore struct {
	DB *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{DB: db}
}

func (s *userStore) Get(ctx context.Context, externalUserID string) (*models.User, error) {
	// Insert-if-absent, then read. Same shape as relationship creation so two
	// concurrent first activities cannot create two rows.
	u := models.User{ID: uuid.NewString(), ExternalUserID: externalUserID}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoNothing: true,
		}).
		Create(&u).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "external_user_id = ?", externalUserID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) IncrementPoints(ctx context.Context, externalUserID string, delta int64) error {
	if delta <= 0 {
		// Points only go up. Zero awards are a no-op, negative ones a bug.
		return nil
	}
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("external_user_id = ?", externalUserID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}

func (s *userStore) SetStreak(ctx context.Context, externalUserID string, current, longest int, lastActivity *time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).
		Where("external_user_id = ?", externalUserID).
		Updates(map[string]any{
			"current_streak":     current,
			"longest_streak":     longest,
			"last_activity_date": lastActivity,
		}).Error
}
