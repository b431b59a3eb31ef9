package services

import (
	"context"
	"testing"
	"time"

	"challenge-streak-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type streakFixture struct {
	svc           *StreakService
	catalog       *fakeCatalog
	relationships *fakeRelationships
	users         *fakeUsers
	notifications *fakeNotifications
	now           time.Time
}

func newStreakFixture(t *testing.T) *streakFixture {
	t.Helper()
	catalog := newFakeCatalog()
	relationships := newFakeRelationships()
	users := newFakeUsers()
	notifications := newFakeNotifications()

	svc := NewStreakService(relationships, catalog, users, NewNotificationService(notifications))
	// Fixed mid-day reference so day arithmetic is unambiguous.
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)
	svc.now = func() time.Time { return now }

	return &streakFixture{
		svc:           svc,
		catalog:       catalog,
		relationships: relationships,
		users:         users,
		notifications: notifications,
		now:           now,
	}
}

// addCompletion records a verified (unless stated otherwise) completion of a
// challenge at the given time.
func (f *streakFixture) addCompletion(userID string, daily, verified bool, completedAt time.Time) {
	ch := &models.Challenge{
		ID:      uuid.NewString(),
		Title:   "challenge",
		Points:  10,
		IsDaily: daily,
	}
	f.catalog.challenges[ch.ID] = ch

	status := models.UserChallengeCompleted
	if !verified {
		status = models.UserChallengeAccepted
	}
	uc := &models.UserChallenge{
		ID:              uuid.NewString(),
		UserID:          userID,
		ChallengeID:     ch.ID,
		Status:          status,
		Verified:        verified,
		CountsForStreak: daily,
		AcceptedAt:      completedAt.Add(-time.Hour),
	}
	if verified {
		uc.CompletedAt = &completedAt
	}
	f.relationships.byPair[pairKey(userID, ch.ID)] = uc
}

func (f *streakFixture) setUser(userID string, current, longest int, lastActivity *time.Time) {
	f.users.byID[userID] = &models.User{
		ID:               uuid.NewString(),
		ExternalUserID:   userID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: lastActivity,
	}
}

func TestStreakNoCompletions(t *testing.T) {
	f := newStreakFixture(t)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 0, snap.LongestStreak)
	assert.Empty(t, f.notifications.created)
}

func TestStreakFirstDailyCompletionStartsAtOne(t *testing.T) {
	f := newStreakFixture(t)
	f.addCompletion("user-1", true, true, f.now)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStreak)
	assert.Equal(t, 1, snap.LongestStreak)
	assert.NotNil(t, snap.LastActivityDate)
}

func TestStreakConsecutiveDays(t *testing.T) {
	f := newStreakFixture(t)
	yesterday := f.now.AddDate(0, 0, -1)
	f.addCompletion("user-1", true, true, yesterday)
	f.addCompletion("user-1", true, true, f.now)

	// Stored state reflects yesterday's recompute.
	lastActivity := startOfDayFor(yesterday)
	f.setUser("user-1", 1, 1, &lastActivity)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, snap.CurrentStreak)
	assert.Equal(t, 2, snap.LongestStreak)
}

func TestStreakGraceWhenOnlyYesterdayCompleted(t *testing.T) {
	f := newStreakFixture(t)
	yesterday := f.now.AddDate(0, 0, -1)
	f.addCompletion("user-1", true, true, yesterday)

	lastActivity := startOfDayFor(yesterday)
	f.setUser("user-1", 3, 5, &lastActivity)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	// Not yet broken: midnight hasn't passed without activity.
	assert.Equal(t, 3, snap.CurrentStreak)
	assert.Equal(t, 5, snap.LongestStreak)
	assert.Empty(t, f.notifications.created) // no increase, no notification
}

func TestStreakBrokenAfterSkippedDay(t *testing.T) {
	f := newStreakFixture(t)
	twoDaysAgo := f.now.AddDate(0, 0, -2)
	f.addCompletion("user-1", true, true, twoDaysAgo)

	lastActivity := startOfDayFor(twoDaysAgo)
	f.setUser("user-1", 2, 2, &lastActivity)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 2, snap.LongestStreak) // longest survives the break
}

func TestStreakIgnoresNonDailyChallenges(t *testing.T) {
	f := newStreakFixture(t)
	// A weekly challenge completed today and yesterday, verified both times.
	f.addCompletion("user-1", false, true, f.now.AddDate(0, 0, -1))
	f.addCompletion("user-1", false, true, f.now)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStreak)
}

func TestStreakIgnoresUnverifiedCompletions(t *testing.T) {
	f := newStreakFixture(t)
	f.addCompletion("user-1", true, false, f.now)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStreak)
}

func TestStreakDistrustsStoredStateWithoutActivityDate(t *testing.T) {
	f := newStreakFixture(t)
	yesterday := f.now.AddDate(0, 0, -1)
	f.addCompletion("user-1", true, true, yesterday)

	// Drifted stored streak but no recorded activity date: the stored value
	// cannot be trusted, so the grace row resolves to zero.
	f.setUser("user-1", 4, 4, nil)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentStreak)
}

func TestStreakFallsBackToCachedFlagWhenCatalogMissing(t *testing.T) {
	f := newStreakFixture(t)
	f.addCompletion("user-1", true, true, f.now)

	// Wipe the catalog; the cached CountsForStreak flag must carry the day.
	f.catalog.challenges = map[string]*models.Challenge{}

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStreak)
}

func TestStreakMilestoneNotification(t *testing.T) {
	f := newStreakFixture(t)
	yesterday := f.now.AddDate(0, 0, -1)
	f.addCompletion("user-1", true, true, yesterday)
	f.addCompletion("user-1", true, true, f.now)

	lastActivity := startOfDayFor(yesterday)
	f.setUser("user-1", 6, 6, &lastActivity)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 7, snap.CurrentStreak)

	assert.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationStreakMilestone, f.notifications.created[0].Type)
	assert.Equal(t, models.PriorityHigh, f.notifications.created[0].Priority)
}

func TestStreakGenericUpdateNotification(t *testing.T) {
	f := newStreakFixture(t)
	f.addCompletion("user-1", true, true, f.now)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStreak)

	assert.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationStreakUpdate, f.notifications.created[0].Type)
}

func TestStreakNotificationFailureDoesNotFailRecompute(t *testing.T) {
	f := newStreakFixture(t)
	f.notifications.createErr = assert.AnError
	f.addCompletion("user-1", true, true, f.now)

	snap, err := f.svc.Recompute(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentStreak)

	// The streak update itself persisted despite the notification failure.
	user, _ := f.users.Get(context.Background(), "user-1")
	assert.Equal(t, 1, user.CurrentStreak)
}

func startOfDayFor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
