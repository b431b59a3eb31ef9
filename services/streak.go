package services

import (
	"context"
	"errors"
	"log"
	"time"

	"challenge-streak-system/models"
	"challenge-streak-system/stores"

	"golang.org/x/sync/errgroup"
)

// StreakService derives the current/longest consecutive-day streak from
// verified daily completions. It recomputes from full history on every call
// rather than trusting stored counters; the stored values are corrected
// whenever they drift.
type StreakService struct {
	Relationships stores.RelationshipStore
	Catalog       stores.CatalogStore
	Users         stores.UserStore
	Notifications *NotificationService

	// now is swappable for calendar-window tests.
	now func() time.Time
}

func NewStreakService(relationships stores.RelationshipStore, catalog stores.CatalogStore, users stores.UserStore, notifications *NotificationService) *StreakService {
	return &StreakService{
		Relationships: relationships,
		Catalog:       catalog,
		Users:         users,
		Notifications: notifications,
		now:           time.Now,
	}
}

// StreakSnapshot is the persisted outcome of a recomputation.
type StreakSnapshot struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// Recompute rebuilds the user's streak from verified daily completions and
// persists the result. Weekly and one-time challenges never affect streaks.
func (s *StreakService) Recompute(ctx context.Context, userID string) (*StreakSnapshot, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.verifiedDailyCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	yesterday := today.AddDate(0, 0, -1)

	completedToday := false
	completedYesterday := false
	for _, completedAt := range completions {
		day := startOfDay(completedAt)
		if day.Equal(today) {
			completedToday = true
		}
		if day.Equal(yesterday) {
			completedYesterday = true
		}
	}

	// A user with no recorded activity gets no credit from stored state;
	// whatever currentStreak says, it cannot be trusted yet.
	previous := user.CurrentStreak
	if user.LastActivityDate == nil {
		previous = 0
	}

	var current int
	switch {
	case completedToday && completedYesterday:
		current = previous + 1
	case completedToday:
		current = 1
	case completedYesterday:
		current = previous // grace: yesterday's streak is not broken until midnight
	default:
		current = 0
	}

	longest := user.LongestStreak
	if current > longest {
		longest = current
	}

	lastActivity := user.LastActivityDate
	if completedToday {
		lastActivity = &today
	}

	if err := s.Users.SetStreak(ctx, userID, current, longest, lastActivity); err != nil {
		return nil, err
	}

	if current > user.CurrentStreak && s.Notifications != nil {
		s.Notifications.StreakChanged(ctx, userID, user.CurrentStreak, current)
	}

	return &StreakSnapshot{CurrentStreak: current, LongestStreak: longest, LastActivityDate: lastActivity}, nil
}

// Snapshot returns the stored streak without recomputing.
func (s *StreakService) Snapshot(ctx context.Context, userID string) (*StreakSnapshot, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StreakSnapshot{
		CurrentStreak:    user.CurrentStreak,
		LongestStreak:    user.LongestStreak,
		LastActivityDate: user.LastActivityDate,
	}, nil
}

// verifiedDailyCompletions returns the CompletedAt timestamps of the user's
// verified completions of daily challenges. The per-relationship "is the
// challenge daily" lookups are independent and issued concurrently.
func (s *StreakService) verifiedDailyCompletions(ctx context.Context, userID string) ([]time.Time, error) {
	completed := models.UserChallengeCompleted
	rels, err := s.Relationships.ListByUser(ctx, userID, &completed)
	if err != nil {
		return nil, err
	}

	verified := rels[:0]
	for _, rel := range rels {
		if rel.Verified && rel.CompletedAt != nil {
			verified = append(verified, rel)
		}
	}

	daily := make([]bool, len(verified))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range verified {
		i, rel := i, rel
		g.Go(func() error {
			ch, err := s.Catalog.GetByID(gctx, rel.ChallengeID)
			if err != nil {
				if !errors.Is(err, stores.ErrNotFound) {
					log.Printf("⚠️  [STREAK] catalog lookup failed for %s, using cached flag: %v", rel.ChallengeID, err)
				}
				// Catalog row gone, trust the flag copied at accept time.
				daily[i] = rel.CountsForStreak
				return nil
			}
			daily[i] = ch.IsDaily
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var completions []time.Time
	for i, rel := range verified {
		if daily[i] {
			completions = append(completions, *rel.CompletedAt)
		}
	}
	return completions, nil
}

// startOfDay truncates to local midnight, the calendar-day boundary for all
// streak arithmetic.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
