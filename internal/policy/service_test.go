package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	activeCountFn func(ctx context.Context, userID int64, recency time.Duration) (int, error)
}

func (f *fakeRepository) ActiveConversationCount(ctx context.Context, userID int64, recency time.Duration) (int, error) {
	return f.activeCountFn(ctx, userID, recency)
}

func newTestService(count int, err error) Service {
	repo := &fakeRepository{
		activeCountFn: func(ctx context.Context, userID int64, recency time.Duration) (int, error) {
			return count, err
		},
	}
	return NewService(repo, MaxActiveConversations, DefaultRecencyWindow)
}

func TestCanStartNewConversation(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		allowed bool
	}{
		{"no conversations", 0, true},
		{"below limit", 2, true},
		{"at limit", 3, false},
		{"above limit", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.count, nil)

			allowed, err := svc.CanStartNewConversation(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestCanStartNewConversationRepositoryError(t *testing.T) {
	svc := newTestService(0, errors.New("connection refused"))

	allowed, err := svc.CanStartNewConversation(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, allowed)
}

func TestCanPauseDating(t *testing.T) {
	t.Run("no active conversations", func(t *testing.T) {
		svc := newTestService(0, nil)

		check, err := svc.CanPauseDating(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, check.CanPause)
		assert.Equal(t, 0, check.ActiveConversationCount)
	})

	t.Run("open conversations block pause", func(t *testing.T) {
		svc := newTestService(2, nil)

		check, err := svc.CanPauseDating(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, check.CanPause)
		assert.Equal(t, 2, check.ActiveConversationCount)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		svc := newTestService(0, errors.New("timeout"))

		check, err := svc.CanPauseDating(context.Background(), 1)
		require.Error(t, err)
		assert.Nil(t, check)
	})
}

func TestLimitStatus(t *testing.T) {
	t.Run("below limit", func(t *testing.T) {
		svc := newTestService(1, nil)

		status, err := svc.LimitStatus(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 1, status.ActiveCount)
		assert.Equal(t, 3, status.MaxConversations)
		assert.Equal(t, 2, status.RemainingSlots)
		assert.True(t, status.CanStartNew)
	})

	t.Run("at limit", func(t *testing.T) {
		svc := newTestService(3, nil)

		status, err := svc.LimitStatus(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 0, status.RemainingSlots)
		assert.False(t, status.CanStartNew)
	})

	t.Run("over limit clamps remaining to zero", func(t *testing.T) {
		svc := newTestService(5, nil)

		status, err := svc.LimitStatus(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 0, status.RemainingSlots)
		assert.False(t, status.CanStartNew)
	})
}

func TestActiveConversationCountClampsNegative(t *testing.T) {
	svc := newTestService(-1, nil)

	count, err := svc.ActiveConversationCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
