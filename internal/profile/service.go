// internal/profile/service.go

package profile

import (
	"context"
	"fmt"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/policy"
)

// PauseBlockedError is returned when a pause attempt is rejected because the
// user still has open conversations to wrap up.
type PauseBlockedError struct {
	ActiveConversationCount int
}

func (e *PauseBlockedError) Error() string {
	return fmt.Sprintf("cannot pause with %d active conversation(s)", e.ActiveConversationCount)
}

// TrustReader is the slice of the ghosting package used to decorate public
// profile views with badges.
type TrustReader interface {
	GetTrustSignals(ctx context.Context, userID int64) (*ghosting.TrustSignals, error)
}

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)

	// PauseDating hides the user from discovery. Fails closed: if the
	// eligibility check cannot complete, the pause is refused.
	PauseDating(ctx context.Context, userID int64, reason string) (*PauseResponse, error)
	ResumeDating(ctx context.Context, userID int64) (*PauseResponse, error)

	Discover(ctx context.Context, viewerID int64, limit, offset int) ([]*DiscoverProfile, error)
}

type service struct {
	repo   Repository
	policy policy.Service
	trust  TrustReader
}

func NewService(repo Repository, policyService policy.Service, trust TrustReader) Service {
	return &service{repo: repo, policy: policyService, trust: trust}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	public := &PublicProfile{Profile: *profile}

	// Badges are decoration; a signals outage should not hide the profile.
	if s.trust != nil {
		if signals, err := s.trust.GetTrustSignals(ctx, userID); err == nil {
			public.TrustSignals = signals
		}
	}

	return public, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

func (s *service) PauseDating(ctx context.Context, userID int64, reason string) (*PauseResponse, error) {
	check, err := s.policy.CanPauseDating(ctx, userID)
	if err != nil {
		// No silent pause on a failed check: leaving conversations hanging
		// is exactly what the pause gate exists to prevent.
		return nil, fmt.Errorf("failed to verify pause eligibility: %w", err)
	}
	if !check.CanPause {
		return nil, &PauseBlockedError{ActiveConversationCount: check.ActiveConversationCount}
	}

	if err := s.repo.SetPaused(ctx, userID, reason); err != nil {
		return nil, err
	}

	RecordPause()

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PauseResponse{IsPaused: profile.IsPaused, PausedAt: profile.PausedAt}, nil
}

func (s *service) ResumeDating(ctx context.Context, userID int64) (*PauseResponse, error) {
	if err := s.repo.SetResumed(ctx, userID); err != nil {
		return nil, err
	}

	RecordResume()

	return &PauseResponse{IsPaused: false}, nil
}

func (s *service) Discover(ctx context.Context, viewerID int64, limit, offset int) ([]*DiscoverProfile, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.Discover(ctx, viewerID, limit, offset)
}
