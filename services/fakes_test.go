package services

import (
	"context"
	"fmt"
	"time"

	"challenge-streak-system/ai"
	"challenge-streak-system/models"
	"challenge-streak-system/stores"

	"github.com/google/uuid"
)

// In-memory fakes for the store interfaces. They honor the same contracts as
// the GORM implementations (NotFound signaling, insert-if-absent, atomic-ish
// counters) without a database.

var (
	_ stores.CatalogStore      = (*fakeCatalog)(nil)
	_ stores.RelationshipStore = (*fakeRelationships)(nil)
	_ stores.UserStore         = (*fakeUsers)(nil)
	_ stores.NotificationStore = (*fakeNotifications)(nil)
	_ PhotoVerifier            = (*fakeVerifier)(nil)
)

type fakeCatalog struct {
	challenges      map[string]*models.Challenge
	acceptBumps     map[string]int
	completionBumps map[string]int
}

func newFakeCatalog(challenges ...*models.Challenge) *fakeCatalog {
	c := &fakeCatalog{
		challenges:      make(map[string]*models.Challenge),
		acceptBumps:     make(map[string]int),
		completionBumps: make(map[string]int),
	}
	for _, ch := range challenges {
		if ch.ID == "" {
			ch.ID = uuid.NewString()
		}
		c.challenges[ch.ID] = ch
	}
	return c
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (*models.Challenge, error) {
	ch, ok := c.challenges[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	copied := *ch
	return &copied, nil
}

func (c *fakeCatalog) GetBySlug(_ context.Context, s string) (*models.Challenge, error) {
	for _, ch := range c.challenges {
		if ch.Slug == s {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (c *fakeCatalog) List(_ context.Context, _ stores.CatalogFilter) ([]models.Challenge, error) {
	var out []models.Challenge
	for _, ch := range c.challenges {
		out = append(out, *ch)
	}
	return out, nil
}

func (c *fakeCatalog) ListNearby(_ context.Context, _, _, _ float64, _ int) ([]models.Challenge, error) {
	return nil, nil
}

func (c *fakeCatalog) Seed(_ context.Context, _ []models.Challenge) error { return nil }

func (c *fakeCatalog) IncrementAccepts(_ context.Context, id string) error {
	c.acceptBumps[id]++
	return nil
}

func (c *fakeCatalog) IncrementCompletions(_ context.Context, id string) error {
	c.completionBumps[id]++
	return nil
}

type fakeRelationships struct {
	byPair map[string]*models.UserChallenge
}

func newFakeRelationships() *fakeRelationships {
	return &fakeRelationships{byPair: make(map[string]*models.UserChallenge)}
}

func pairKey(userID, challengeID string) string {
	return userID + "|" + challengeID
}

func (r *fakeRelationships) Find(_ context.Context, userID, challengeID string) (*models.UserChallenge, error) {
	uc, ok := r.byPair[pairKey(userID, challengeID)]
	if !ok {
		return nil, nil
	}
	copied := *uc
	return &copied, nil
}

func (r *fakeRelationships) CreateIfAbsent(_ context.Context, uc *models.UserChallenge) (*models.UserChallenge, bool, error) {
	key := pairKey(uc.UserID, uc.ChallengeID)
	if existing, ok := r.byPair[key]; ok {
		copied := *existing
		return &copied, false, nil
	}
	if uc.ID == "" {
		uc.ID = uuid.NewString()
	}
	stored := *uc
	r.byPair[key] = &stored
	copied := stored
	return &copied, true, nil
}

func (r *fakeRelationships) Update(_ context.Context, id string, patch map[string]any) (*models.UserChallenge, error) {
	for _, uc := range r.byPair {
		if uc.ID != id {
			continue
		}
		applyPatch(uc, patch)
		copied := *uc
		return &copied, nil
	}
	return nil, stores.ErrNotFound
}

func (r *fakeRelationships) ListByUser(_ context.Context, userID string, status *models.UserChallengeStatus) ([]models.UserChallenge, error) {
	var out []models.UserChallenge
	for _, uc := range r.byPair {
		if uc.UserID != userID {
			continue
		}
		if status != nil && uc.Status != *status {
			continue
		}
		out = append(out, *uc)
	}
	return out, nil
}

func applyPatch(uc *models.UserChallenge, patch map[string]any) {
	for k, v := range patch {
		switch k {
		case "status":
			uc.Status = v.(models.UserChallengeStatus)
		case "verified":
			uc.Verified = v.(bool)
		case "verified_by":
			uc.VerifiedBy = v.(string)
		case "verified_at":
			uc.VerifiedAt = timePtr(v)
		case "completed_at":
			uc.CompletedAt = timePtr(v)
		case "ai_confidence":
			uc.AIConfidence = v.(float64)
		case "ai_reasoning":
			uc.AIReasoning = v.(string)
		case "points_earned":
			uc.PointsEarned = v.(int)
		case "photo_url":
			uc.PhotoURL = v.(string)
		case "location":
			if loc, ok := v.(*models.GeoPoint); ok {
				uc.Location = loc
			}
		default:
			panic(fmt.Sprintf("fakeRelationships: unhandled patch key %q", k))
		}
	}
}

func timePtr(v any) *time.Time {
	if v == nil {
		return nil
	}
	return v.(*time.Time)
}

type fakeUsers struct {
	byID map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[string]*models.User)}
}

func (u *fakeUsers) Get(_ context.Context, externalUserID string) (*models.User, error) {
	user, ok := u.byID[externalUserID]
	if !ok {
		user = &models.User{ID: uuid.NewString(), ExternalUserID: externalUserID}
		u.byID[externalUserID] = user
	}
	copied := *user
	return &copied, nil
}

func (u *fakeUsers) IncrementPoints(_ context.Context, externalUserID string, delta int64) error {
	if delta <= 0 {
		return nil
	}
	user, ok := u.byID[externalUserID]
	if !ok {
		user = &models.User{ID: uuid.NewString(), ExternalUserID: externalUserID}
		u.byID[externalUserID] = user
	}
	user.Points += delta
	return nil
}

func (u *fakeUsers) SetStreak(_ context.Context, externalUserID string, current, longest int, lastActivity *time.Time) error {
	user, ok := u.byID[externalUserID]
	if !ok {
		user = &models.User{ID: uuid.NewString(), ExternalUserID: externalUserID}
		u.byID[externalUserID] = user
	}
	user.CurrentStreak = current
	user.LongestStreak = longest
	user.LastActivityDate = lastActivity
	return nil
}

type fakeNotifications struct {
	created   []models.Notification
	createErr error
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{}
}

func (n *fakeNotifications) Create(_ context.Context, notification *models.Notification) error {
	if n.createErr != nil {
		return n.createErr
	}
	n.created = append(n.created, *notification)
	return nil
}

func (n *fakeNotifications) ListByUser(_ context.Context, userID string, unreadOnly bool, _ int) ([]models.Notification, error) {
	var out []models.Notification
	for _, notification := range n.created {
		if notification.UserID != userID {
			continue
		}
		if unreadOnly && notification.Read {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (n *fakeNotifications) Counts(_ context.Context, userID string) (int64, int64, error) {
	var total, unread int64
	for _, notification := range n.created {
		if notification.UserID != userID {
			continue
		}
		total++
		if !notification.Read {
			unread++
		}
	}
	return total, unread, nil
}

func (n *fakeNotifications) MarkRead(_ context.Context, _, _ string) error { return nil }

func (n *fakeNotifications) MarkAllRead(_ context.Context, _ string) (int64, error) { return 0, nil }

// fakeVerifier returns scripted results and records what it was asked.
type fakeVerifier struct {
	result    ai.Result
	calls     int
	lastInfo  ai.ChallengeInfo
	lastPhoto string
}

func (v *fakeVerifier) Verify(_ context.Context, ch ai.ChallengeInfo, photoURL string, _ *models.GeoPoint) ai.Result {
	v.calls++
	v.lastInfo = ch
	v.lastPhoto = photoURL
	return v.result
}

func verifiedResult(confidence float64) ai.Result {
	return ai.Result{Verdict: ai.VerdictVerified, Verified: true, Confidence: confidence, Reasoning: "looks right"}
}

func rejectedResult(reason string) ai.Result {
	return ai.Result{Verdict: ai.VerdictNotVerified, Verified: false, Confidence: 0.2, Reasoning: reason}
}
