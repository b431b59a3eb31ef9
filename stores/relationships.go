package stores

import (
	"context"
	"errors"

	"challenge-streak-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipStore persists the per-user per-challenge relationship.
// Uniqueness of (user_id, challenge_id) is enforced here, not by callers.
type RelationshipStore interface {
	// Find returns (nil, nil) when no relationship exists.
	Find(ctx context.Context, userID, challengeID string) (*models.UserChallenge, error)
	// CreateIfAbsent atomically inserts the relationship unless one already
	// exists for the same (user, challenge). It returns the persisted row and
	// whether this call created it. Two concurrent accepts cannot both win.
	CreateIfAbsent(ctx context.Context, uc *models.UserChallenge) (*models.UserChallenge, bool, error)
	Update(ctx context.Context, id string, patch map[string]any) (*models.UserChallenge, error)
	ListByUser(ctx context.Context, userID string, status *models.UserChallengeStatus) ([]models.UserChallenge, error)
}

type relationshipStore struct {
	DB *gorm.DB
}

func NewRelationshipStore(db *gorm.DB) RelationshipStore {
	return &relationshipStore{DB: db}
}

func (s *relationshipStore) Find(ctx context.Context, userID, challengeID string) (*models.UserChallenge, error) {
	var uc models.UserChallenge
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&uc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

func (s *relationshipStore) CreateIfAbsent(ctx context.Context, uc *models.UserChallenge) (*models.UserChallenge, bool, error) {
	if uc.ID == "" {
		uc.ID = uuid.NewString()
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoNothing: true,
		}).
		Create(uc)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return uc, true, nil
	}

	// Lost the race (or row pre-existed): return the winner's row unchanged.
	existing, err := s.Find(ctx, uc.UserID, uc.ChallengeID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, ErrNotFound
	}
	return existing, false, nil
}

func (s *relationshipStore) Update(ctx context.Context, id string, patch map[string]any) (*models.UserChallenge, error) {
	res := s.DB.WithContext(ctx).Model(&models.UserChallenge{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var uc models.UserChallenge
	if err := s.DB.WithContext(ctx).First(&uc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &uc, nil
}

func (s *relationshipStore) ListByUser(ctx context.Context, userID string, status *models.UserChallengeStatus) ([]models.UserChallenge, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var ucs []models.UserChallenge
	err := q.Order("accepted_at DESC").Find(&ucs).Error
	return ucs, err
}
