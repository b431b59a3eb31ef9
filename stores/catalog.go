package stores

import (
	"context"
	"errors"
	"math"

	"challenge-streak-system/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogFilter narrows List results. Zero values mean "no filter".
type CatalogFilter struct {
	Category   models.ChallengeCategory
	Difficulty models.ChallengeDifficulty
	DailyOnly  bool
	Limit      int
	Offset     int
}

// CatalogStore owns the challenge catalog. Counter bumps are atomic at the
// storage boundary; never read-modify-write in application code.
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*models.Challenge, error)
	GetBySlug(ctx context.Context, s string) (*models.Challenge, error)
	List(ctx context.Context, filter CatalogFilter) ([]models.Challenge, error)
	ListNearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]models.Challenge, error)
	Seed(ctx context.Context, challenges []models.Challenge) error
	IncrementAccepts(ctx context.Context, id string) error
	IncrementCompletions(ctx context.Context, id string) error
}

type catalogStore struct {
	DB *gorm.DB
}

func NewCatalogStore(db *gorm.DB) CatalogStore {
	return &catalogStore{DB: db}
}

func (s *catalogStore) GetByID(ctx context.Context, id string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (s *catalogStore) GetBySlug(ctx context.Context, sl string) (*models.Challenge, error) {
	var ch models.Challenge
	if err := s.DB.WithContext(ctx).First(&ch, "slug = ?", sl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

func (s *catalogStore) List(ctx context.Context, filter CatalogFilter) ([]models.Challenge, error) {
	q := s.DB.WithContext(ctx).Model(&models.Challenge{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}
	if filter.DailyOnly {
		q = q.Where("is_daily = ?", true)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var challenges []models.Challenge
	err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&challenges).Error
	return challenges, err
}

// ListNearby is a linear scan with a Haversine distance filter. The catalog is
// small; no geospatial index.
func (s *catalogStore) ListNearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]models.Challenge, error) {
	var located []models.Challenge
	if err := s.DB.WithContext(ctx).
		Where("requires_location = ?", true).
		Find(&located).Error; err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	nearby := make([]models.Challenge, 0)
	for _, ch := range located {
		if haversineKM(lat, lng, ch.Latitude, ch.Longitude) <= radiusKM {
			nearby = append(nearby, ch)
			if len(nearby) == limit {
				break
			}
		}
	}
	return nearby, nil
}

// Seed inserts catalog entries, slugging titles and skipping ones already
// present. Safe to run on every boot.
func (s *catalogStore) Seed(ctx context.Context, challenges []models.Challenge) error {
	for i := range challenges {
		if challenges[i].Slug == "" {
			challenges[i].Slug = slug.Make(challenges[i].Title)
		}
	}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(&challenges).Error
}

func (s *catalogStore) IncrementAccepts(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ?", id).
		UpdateColumn("total_accepts", gorm.Expr("total_accepts + 1")).Error
}

func (s *catalogStore) IncrementCompletions(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&models.Challenge{}).
		Where("id = ?", id).
		UpdateColumn("total_completions", gorm.Expr("total_completions + 1")).Error
}

const earthRadiusKM = 6371.0

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
