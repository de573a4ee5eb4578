// internal/ghosting/service.go

package ghosting

import (
	"context"
	"log"
	"time"
)

type Service interface {
	// DetectAndRecordGhosting runs one bounded detector batch. Returns the
	// number of ghosting events recorded.
	DetectAndRecordGhosting(ctx context.Context) (int, error)

	// CalculateTrustSignals recomputes the badge flags for one user.
	CalculateTrustSignals(ctx context.Context, userID int64) error

	// RecalculateRecent refreshes trust signals for the most recently
	// updated response patterns. Returns the number refreshed.
	RecalculateRecent(ctx context.Context) (int, error)

	// RecordGracefulClosure credits an explicit conversation close.
	RecordGracefulClosure(ctx context.Context, userID int64) error

	GetResponsePattern(ctx context.Context, userID int64) (*ResponsePattern, error)
	GetTrustSignals(ctx context.Context, userID int64) (*TrustSignals, error)
}

type service struct {
	repo          Repository
	ghostingAfter time.Duration
	detectorBatch int
	trustBatch    int
}

func NewService(repo Repository, ghostingAfter time.Duration, detectorBatchSize, trustBatchSize int) Service {
	return &service{
		repo:          repo,
		ghostingAfter: ghostingAfter,
		detectorBatch: detectorBatchSize,
		trustBatch:    trustBatchSize,
	}
}

// DetectAndRecordGhosting scans for conversations lapsed past the ghosting
// threshold and charges the silent party. Each conversation is one
// transaction: the status flip and the pattern update land together or not at
// all, and the status guard makes repeat or overlapping runs skip rows that
// were already counted.
func (s *service) DetectAndRecordGhosting(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.ghostingAfter)

	lapsed, err := s.repo.FindLapsedConversations(ctx, cutoff, s.detectorBatch)
	if err != nil {
		return 0, err
	}

	recorded := 0
	for _, conv := range lapsed {
		claimed, err := s.repo.RecordGhosting(ctx, conv.ConversationID, conv.SilentUserID)
		if err != nil {
			log.Printf("Failed to record ghosting for conversation %d: %v", conv.ConversationID, err)
			continue
		}
		if claimed {
			recorded++
			RecordGhostingEvent()
		}
	}

	if recorded > 0 {
		log.Printf("Ghosting detector recorded %d event(s) from %d candidate(s)", recorded, len(lapsed))
	}

	return recorded, nil
}

func (s *service) CalculateTrustSignals(ctx context.Context, userID int64) error {
	pattern, err := s.repo.GetResponsePattern(ctx, userID)
	if err != nil {
		if err == ErrNoPattern {
			// No behavioral history yet; derive from a clean slate.
			pattern = &ResponsePattern{UserID: userID, VisibilityScore: 1.0}
		} else {
			return err
		}
	}

	facts, err := s.repo.GetAccountFacts(ctx, userID)
	if err != nil {
		return err
	}

	signals := DeriveTrustSignals(pattern, facts, time.Now())
	if err := s.repo.UpsertTrustSignals(ctx, signals); err != nil {
		return err
	}

	RecordTrustRecalculation()
	return nil
}

// RecalculateRecent keeps signal staleness bounded: only the patterns most
// recently touched by the detector or a closure are refreshed, not the whole
// user base.
func (s *service) RecalculateRecent(ctx context.Context) (int, error) {
	patterns, err := s.repo.RecentPatterns(ctx, s.trustBatch)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, pattern := range patterns {
		if err := s.CalculateTrustSignals(ctx, pattern.UserID); err != nil {
			log.Printf("Failed to recalculate trust signals for user %d: %v", pattern.UserID, err)
			continue
		}
		updated++
	}

	return updated, nil
}

func (s *service) RecordGracefulClosure(ctx context.Context, userID int64) error {
	return s.repo.RecordGracefulClosure(ctx, userID)
}

func (s *service) GetResponsePattern(ctx context.Context, userID int64) (*ResponsePattern, error) {
	pattern, err := s.repo.GetResponsePattern(ctx, userID)
	if err == ErrNoPattern {
		return &ResponsePattern{UserID: userID, VisibilityScore: 1.0}, nil
	}
	return pattern, err
}

func (s *service) GetTrustSignals(ctx context.Context, userID int64) (*TrustSignals, error) {
	return s.repo.GetTrustSignals(ctx, userID)
}
