package nudge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	needingNudgeFn    func(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error)
	needingReminderFn func(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error)
	hasRecentNudgeFn  func(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error)
	markReminderFn    func(ctx context.Context, convID int64, cooldown time.Duration) (bool, error)
}

func (f *fakeRepository) ConversationsNeedingNudge(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
	return f.needingNudgeFn(ctx, nudgeCutoff, ghostCutoff, limit)
}

func (f *fakeRepository) ConversationsNeedingReminder(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
	return f.needingReminderFn(ctx, reminderCutoff, ghostCutoff, limit)
}

func (f *fakeRepository) HasRecentNudge(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error) {
	return f.hasRecentNudgeFn(ctx, userID, counterpartID, window)
}

func (f *fakeRepository) MarkReminderSent(ctx context.Context, convID int64, cooldown time.Duration) (bool, error) {
	return f.markReminderFn(ctx, convID, cooldown)
}

type fakeNotifier struct {
	nudges    []int64
	reminders []int64
	nudgeErr  func(userID int64) error
}

func (f *fakeNotifier) SendNudge(ctx context.Context, userID, otherUserID int64, otherName string, daysInactive int) error {
	if f.nudgeErr != nil {
		if err := f.nudgeErr(userID); err != nil {
			return err
		}
	}
	f.nudges = append(f.nudges, userID)
	return nil
}

func (f *fakeNotifier) SendGhostingReminder(ctx context.Context, userID, otherUserID int64, otherName string, hoursLeft int) error {
	f.reminders = append(f.reminders, userID)
	return nil
}

func newTestService(repo Repository, notifier Notifier) Service {
	return NewService(repo, notifier, 48*time.Hour, 120*time.Hour, 72*time.Hour, 24*time.Hour, 100)
}

func candidatesAgedHours(hours ...int) []*NudgeCandidate {
	out := make([]*NudgeCandidate, 0, len(hours))
	for i, h := range hours {
		out = append(out, &NudgeCandidate{
			ConversationID: int64(100 + i),
			UserToNudge:    int64(1 + i),
			OtherUserID:    int64(50 + i),
			OtherUserName:  "Sam",
			LastMessageAt:  time.Now().Add(-time.Duration(h) * time.Hour),
		})
	}
	return out
}

func TestSendConversationNudges(t *testing.T) {
	t.Run("nudges every candidate off cooldown", func(t *testing.T) {
		repo := &fakeRepository{
			needingNudgeFn: func(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				return candidatesAgedHours(50, 60), nil
			},
			hasRecentNudgeFn: func(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error) {
				return false, nil
			},
		}
		notifier := &fakeNotifier{}
		svc := newTestService(repo, notifier)

		sent, err := svc.SendConversationNudges(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []int64{1, 2}, notifier.nudges)
	})

	t.Run("pair cooldown suppresses repeat nudges", func(t *testing.T) {
		repo := &fakeRepository{
			needingNudgeFn: func(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				return candidatesAgedHours(50, 60), nil
			},
			hasRecentNudgeFn: func(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error) {
				assert.Equal(t, 72*time.Hour, window)
				return userID == 1, nil
			},
		}
		notifier := &fakeNotifier{}
		svc := newTestService(repo, notifier)

		sent, err := svc.SendConversationNudges(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []int64{2}, notifier.nudges)
	})

	t.Run("delivery failure skips the candidate, not the batch", func(t *testing.T) {
		repo := &fakeRepository{
			needingNudgeFn: func(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				return candidatesAgedHours(50, 60, 70), nil
			},
			hasRecentNudgeFn: func(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error) {
				return false, nil
			},
		}
		notifier := &fakeNotifier{
			nudgeErr: func(userID int64) error {
				if userID == 2 {
					return errors.New("provider unavailable")
				}
				return nil
			},
		}
		svc := newTestService(repo, notifier)

		sent, err := svc.SendConversationNudges(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []int64{1, 3}, notifier.nudges)
	})

	t.Run("window bounds follow configuration", func(t *testing.T) {
		var gotNudgeCutoff, gotGhostCutoff time.Time
		repo := &fakeRepository{
			needingNudgeFn: func(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				gotNudgeCutoff, gotGhostCutoff = nudgeCutoff, ghostCutoff
				return nil, nil
			},
		}
		svc := newTestService(repo, &fakeNotifier{})

		_, err := svc.SendConversationNudges(context.Background())
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(-48*time.Hour), gotNudgeCutoff, 5*time.Second)
		assert.WithinDuration(t, time.Now().Add(-120*time.Hour), gotGhostCutoff, 5*time.Second)
	})
}

func TestSendGhostingReminders(t *testing.T) {
	t.Run("claims before sending", func(t *testing.T) {
		claimed := []int64{}
		repo := &fakeRepository{
			needingReminderFn: func(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				return candidatesAgedHours(100, 110), nil
			},
			markReminderFn: func(ctx context.Context, convID int64, cooldown time.Duration) (bool, error) {
				assert.Equal(t, 24*time.Hour, cooldown)
				claimed = append(claimed, convID)
				return true, nil
			},
		}
		notifier := &fakeNotifier{}
		svc := newTestService(repo, notifier)

		sent, err := svc.SendGhostingReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []int64{100, 101}, claimed)
		assert.Len(t, notifier.reminders, 2)
	})

	t.Run("failed claim means no reminder", func(t *testing.T) {
		repo := &fakeRepository{
			needingReminderFn: func(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				return candidatesAgedHours(100, 110), nil
			},
			markReminderFn: func(ctx context.Context, convID int64, cooldown time.Duration) (bool, error) {
				// Another run already sent one inside the cooldown.
				return convID == 101, nil
			},
		}
		notifier := &fakeNotifier{}
		svc := newTestService(repo, notifier)

		sent, err := svc.SendGhostingReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Len(t, notifier.reminders, 1)
	})

	t.Run("reminder window starts one cooldown before the deadline", func(t *testing.T) {
		var gotReminderCutoff time.Time
		repo := &fakeRepository{
			needingReminderFn: func(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
				gotReminderCutoff = reminderCutoff
				return nil, nil
			},
		}
		svc := newTestService(repo, &fakeNotifier{})

		_, err := svc.SendGhostingReminders(context.Background())
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(-96*time.Hour), gotReminderCutoff, 5*time.Second)
	})
}

func TestNudgeCandidateDaysInactive(t *testing.T) {
	now := time.Now()
	c := &NudgeCandidate{LastMessageAt: now.Add(-73 * time.Hour)}
	assert.Equal(t, 3, c.DaysInactive(now))
}
