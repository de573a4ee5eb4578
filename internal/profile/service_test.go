package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/policy"
)

type fakeRepository struct {
	Repository

	paused    []int64
	resumed   []int64
	pausedErr error
	profile   *Profile
}

func (f *fakeRepository) SetPaused(ctx context.Context, userID int64, reason string) error {
	if f.pausedErr != nil {
		return f.pausedErr
	}
	f.paused = append(f.paused, userID)
	return nil
}

func (f *fakeRepository) SetResumed(ctx context.Context, userID int64) error {
	f.resumed = append(f.resumed, userID)
	return nil
}

func (f *fakeRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	if f.profile == nil {
		return nil, ErrProfileNotFound
	}
	return f.profile, nil
}

type fakeTrust struct {
	signals *ghosting.TrustSignals
	err     error
}

func (f *fakeTrust) GetTrustSignals(ctx context.Context, userID int64) (*ghosting.TrustSignals, error) {
	return f.signals, f.err
}

type fakePolicy struct {
	policy.Service
	check *policy.PauseCheck
	err   error
}

func (f *fakePolicy) CanPauseDating(ctx context.Context, userID int64) (*policy.PauseCheck, error) {
	return f.check, f.err
}

func TestPauseDating(t *testing.T) {
	t.Run("pauses when no conversations are open", func(t *testing.T) {
		repo := &fakeRepository{profile: &Profile{UserID: 1, IsPaused: true}}
		svc := NewService(repo, &fakePolicy{check: &policy.PauseCheck{CanPause: true}}, nil)

		resp, err := svc.PauseDating(context.Background(), 1, "need_a_break")
		require.NoError(t, err)
		assert.True(t, resp.IsPaused)
		assert.Equal(t, []int64{1}, repo.paused)
	})

	t.Run("open conversations block the pause", func(t *testing.T) {
		repo := &fakeRepository{}
		svc := NewService(repo, &fakePolicy{
			check: &policy.PauseCheck{CanPause: false, ActiveConversationCount: 2},
		}, nil)

		_, err := svc.PauseDating(context.Background(), 1, "need_a_break")
		require.Error(t, err)

		var blocked *PauseBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Equal(t, 2, blocked.ActiveConversationCount)
		assert.Empty(t, repo.paused)
	})

	t.Run("failed eligibility check refuses the pause", func(t *testing.T) {
		repo := &fakeRepository{}
		svc := NewService(repo, &fakePolicy{err: errors.New("policy store unreachable")}, nil)

		_, err := svc.PauseDating(context.Background(), 1, "need_a_break")
		require.Error(t, err)
		assert.Empty(t, repo.paused, "pause must not proceed on a failed check")
	})
}

func TestGetPublicProfile(t *testing.T) {
	t.Run("attaches trust badges when available", func(t *testing.T) {
		repo := &fakeRepository{profile: &Profile{UserID: 7, DisplayName: "Ada"}}
		trust := &fakeTrust{signals: &ghosting.TrustSignals{UserID: 7, ShowsUpConsistently: true}}
		svc := NewService(repo, &fakePolicy{}, trust)

		public, err := svc.GetPublicProfile(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Ada", public.DisplayName)
		require.NotNil(t, public.TrustSignals)
		assert.True(t, public.TrustSignals.ShowsUpConsistently)
	})

	t.Run("signals outage still returns the profile", func(t *testing.T) {
		repo := &fakeRepository{profile: &Profile{UserID: 7}}
		trust := &fakeTrust{err: errors.New("signals store down")}
		svc := NewService(repo, &fakePolicy{}, trust)

		public, err := svc.GetPublicProfile(context.Background(), 7)
		require.NoError(t, err)
		assert.Nil(t, public.TrustSignals)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, &fakePolicy{}, nil)

		_, err := svc.GetPublicProfile(context.Background(), 99)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestResumeDating(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, &fakePolicy{}, nil)

	resp, err := svc.ResumeDating(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, resp.IsPaused)
	assert.Equal(t, []int64{4}, repo.resumed)
}
