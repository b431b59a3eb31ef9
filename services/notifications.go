package services

import (
	"context"
	"fmt"
	"log"

	"challenge-streak-system/models"
	"challenge-streak-system/stores"
)

// NotificationService turns streak changes into notification rows. Creation is
// best-effort: a failure here never fails or rolls back the completion or
// streak update that triggered it.
type NotificationService struct {
	Store stores.NotificationStore
}

func NewNotificationService(store stores.NotificationStore) *NotificationService {
	return &NotificationService{Store: store}
}

// isMilestone: streak 30 gets its own monthly milestone; otherwise every
// multiple of 7 (7, 14, 21, ...).
func isMilestone(streak int) bool {
	return streak == 30 || (streak > 0 && streak%7 == 0)
}

// StreakChanged fires a milestone notification when the new streak lands on a
// milestone, or a generic update for any other increase.
func (s *NotificationService) StreakChanged(ctx context.Context, userID string, previous, current int) {
	if current <= previous {
		return
	}

	n := &models.Notification{
		UserID:   userID,
		Type:     models.NotificationStreakUpdate,
		Title:    "Streak extended!",
		Body:     fmt.Sprintf("You're on a %d-day streak. Keep it going!", current),
		Data:     map[string]any{"current_streak": current, "previous_streak": previous},
		Priority: models.PriorityNormal,
	}
	if isMilestone(current) {
		n.Type = models.NotificationStreakMilestone
		n.Title = fmt.Sprintf("🔥 %d-day streak!", current)
		n.Body = fmt.Sprintf("You've completed a daily challenge %d days in a row.", current)
		n.Priority = models.PriorityHigh
	}

	if err := s.Store.Create(ctx, n); err != nil {
		log.Printf("⚠️  [NOTIFY] failed to create %s for %s: %v", n.Type, userID, err)
	}
}

// SendStreakReminder nudges a user with their current streak. Invoked on
// demand (or by the reminder worker), never by streak recomputation itself.
func (s *NotificationService) SendStreakReminder(ctx context.Context, userID string, currentStreak int) error {
	body := "Complete a daily challenge to start a streak."
	if currentStreak > 0 {
		body = fmt.Sprintf("Your %d-day streak ends at midnight. Complete a daily challenge to keep it alive!", currentStreak)
	}
	return s.Store.Create(ctx, &models.Notification{
		UserID:   userID,
		Type:     models.NotificationStreakReminder,
		Title:    "Don't lose your streak",
		Body:     body,
		Data:     map[string]any{"current_streak": currentStreak},
		Priority: models.PriorityNormal,
	})
}
