package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"challenge-streak-system/ai"
	"challenge-streak-system/models"
	"challenge-streak-system/stores"
)

// PhotoVerifier renders a verdict for a completion photo. It never errors;
// failures collapse into a fail-closed Result.
type PhotoVerifier interface {
	Verify(ctx context.Context, ch ai.ChallengeInfo, photoURL string, loc *models.GeoPoint) ai.Result
}

// ChallengeService orchestrates the accept/complete state machine:
// NONE → ACCEPTED → COMPLETED, with COMPLETED reachable only through a
// verified photo. An unverified attempt leaves the relationship ACCEPTED.
type ChallengeService struct {
	Catalog       stores.CatalogStore
	Relationships stores.RelationshipStore
	Users         stores.UserStore
	Verifier      PhotoVerifier
	Streaks       *StreakService
}

func NewChallengeService(catalog stores.CatalogStore, relationships stores.RelationshipStore, users stores.UserStore, verifier PhotoVerifier, streaks *StreakService) *ChallengeService {
	return &ChallengeService{
		Catalog:       catalog,
		Relationships: relationships,
		Users:         users,
		Verifier:      verifier,
		Streaks:       streaks,
	}
}

type AcceptResult struct {
	Relationship    *models.UserChallenge `json:"relationship"`
	Challenge       *models.Challenge     `json:"challenge"`
	AlreadyAccepted bool                  `json:"already_accepted"`
}

type CompleteResult struct {
	Relationship *models.UserChallenge `json:"relationship"`
	Challenge    *models.Challenge     `json:"challenge"`
	PointsEarned int                   `json:"points_earned"`
	Verification ai.Result             `json:"verification"`
}

// Accept is idempotent: a second call for the same (user, challenge) returns
// the existing relationship unchanged with AlreadyAccepted set.
func (s *ChallengeService) Accept(ctx context.Context, userID, challengeID string) (*AcceptResult, error) {
	ch, err := s.Catalog.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("challenge %s: %w", challengeID, ErrNotFound)
		}
		return nil, err
	}

	uc := &models.UserChallenge{
		UserID:          userID,
		ChallengeID:     ch.ID,
		Status:          models.UserChallengeAccepted,
		CountsForStreak: ch.IsDaily,
		AcceptedAt:      time.Now(),
		ChallengeTitle:  ch.Title,
		ChallengePoints: ch.Points,
	}

	rel, created, err := s.Relationships.CreateIfAbsent(ctx, uc)
	if err != nil {
		return nil, err
	}

	if created {
		if err := s.Catalog.IncrementAccepts(ctx, ch.ID); err != nil {
			log.Printf("⚠️  [CHALLENGE] accept counter bump failed for %s: %v", ch.ID, err)
		}
	}

	return &AcceptResult{Relationship: rel, Challenge: ch, AlreadyAccepted: !created}, nil
}

// Complete runs a verification attempt. It may be called repeatedly while the
// relationship is still ACCEPTED; each attempt re-runs verification and
// overwrites the verification fields. Once a verified completion exists,
// further attempts are rejected with ErrConflict.
//
// The returned result carries the verification triple regardless of outcome;
// callers must inspect Verification.Verified, not just the absence of an error.
func (s *ChallengeService) Complete(ctx context.Context, userID, challengeID, photoURL string, loc *models.GeoPoint) (*CompleteResult, error) {
	if photoURL == "" {
		return nil, fmt.Errorf("a photo is required to complete a challenge: %w", ErrValidation)
	}

	rel, err := s.Relationships.Find(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, fmt.Errorf("challenge not accepted: %w", ErrNotFound)
	}
	if rel.Status == models.UserChallengeCompleted && rel.Verified {
		return nil, fmt.Errorf("challenge already completed: %w", ErrConflict)
	}

	ch := s.resolveChallenge(ctx, rel)

	verification := s.Verifier.Verify(ctx, ai.ChallengeInfo{
		Title:       ch.Title,
		Description: ch.Description,
		Category:    string(ch.Category),
	}, photoURL, loc)

	now := time.Now()
	pointsEarned := 0
	patch := map[string]any{
		"verified":      verification.Verified,
		"verified_by":   "AI",
		"ai_confidence": verification.Confidence,
		"ai_reasoning":  verification.Reasoning,
		"photo_url":     photoURL,
		"location":      loc,
	}
	if verification.Verified {
		pointsEarned = ch.Points
		patch["status"] = models.UserChallengeCompleted
		patch["verified_at"] = &now
		patch["completed_at"] = &now
		patch["points_earned"] = pointsEarned
	} else {
		// Retryable: stays accepted, no points, no completion timestamp.
		patch["status"] = models.UserChallengeAccepted
		patch["verified_at"] = nil
		patch["completed_at"] = nil
		patch["points_earned"] = 0
	}

	updated, err := s.Relationships.Update(ctx, rel.ID, patch)
	if err != nil {
		return nil, err
	}

	if verification.Verified {
		// Side effects after the primary transition. None of these roll back
		// the completion; failures are a reconciliation concern.
		if err := s.Users.IncrementPoints(ctx, userID, int64(pointsEarned)); err != nil {
			log.Printf("❌ [CHALLENGE] point credit failed for %s (+%d): %v", userID, pointsEarned, err)
		}
		if s.Streaks != nil {
			if _, err := s.Streaks.Recompute(ctx, userID); err != nil {
				log.Printf("⚠️  [CHALLENGE] streak recompute failed for %s: %v", userID, err)
			}
		}
		if err := s.Catalog.IncrementCompletions(ctx, rel.ChallengeID); err != nil {
			log.Printf("⚠️  [CHALLENGE] completion counter bump failed for %s: %v", rel.ChallengeID, err)
		}
		log.Printf("✅ [CHALLENGE] %s verified %q (+%d pts, confidence %.2f)", userID, ch.Title, pointsEarned, verification.Confidence)
	} else {
		log.Printf("🚫 [CHALLENGE] %s not verified for %q: %s", userID, ch.Title, verification.Reasoning)
	}

	return &CompleteResult{
		Relationship: updated,
		Challenge:    ch,
		PointsEarned: pointsEarned,
		Verification: verification,
	}, nil
}

// resolveChallenge degrades gracefully: a missing catalog row at completion
// time is reconstructed from the fields cached on the relationship instead of
// failing the whole operation.
func (s *ChallengeService) resolveChallenge(ctx context.Context, rel *models.UserChallenge) *models.Challenge {
	ch, err := s.Catalog.GetByID(ctx, rel.ChallengeID)
	if err == nil {
		return ch
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("⚠️  [CHALLENGE] catalog lookup failed for %s, using cached fields: %v", rel.ChallengeID, err)
	} else {
		log.Printf("⚠️  [CHALLENGE] catalog entry %s missing, using cached fields", rel.ChallengeID)
	}
	return &models.Challenge{
		ID:      rel.ChallengeID,
		Title:   rel.ChallengeTitle,
		Points:  rel.ChallengePoints,
		IsDaily: rel.CountsForStreak,
	}
}

// ListForUser returns the user's relationships, optionally filtered by status.
func (s *ChallengeService) ListForUser(ctx context.Context, userID string, status *models.UserChallengeStatus) ([]models.UserChallenge, error) {
	return s.Relationships.ListByUser(ctx, userID, status)
}
