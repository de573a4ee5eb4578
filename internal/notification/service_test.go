package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	Repository

	created   []*Notification
	recipient *Recipient
	createErr error
}

func (f *fakeRepository) Create(ctx context.Context, n *Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = int64(len(f.created) + 1)
	n.CreatedAt = time.Now()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepository) GetRecipient(ctx context.Context, userID int64) (*Recipient, error) {
	if f.recipient == nil {
		return nil, errors.New("recipient not found")
	}
	return f.recipient, nil
}

func TestSendNudgeCreatesInAppNotification(t *testing.T) {
	repo := &fakeRepository{}
	svc := NewService(repo, nil, nil, nil, 30*24*time.Hour)

	err := svc.SendNudge(context.Background(), 1, 2, "Alex", 3)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	n := repo.created[0]
	assert.Equal(t, TypeNudge, n.Type)
	assert.Equal(t, int64(1), n.UserID)
	assert.Equal(t, int64(2), *n.RelatedUserID)
	assert.Contains(t, n.Message, "Alex")
	assert.Contains(t, n.Message, "3 days")
}

func TestSendGhostingReminder(t *testing.T) {
	phone := "+15550100"

	t.Run("fans out to email and SMS when configured", func(t *testing.T) {
		repo := &fakeRepository{
			recipient: &Recipient{UserID: 1, Email: "jo@example.com", Phone: &phone, DisplayName: "Jo"},
		}
		email := NewMockEmailSender()
		sms := NewMockSMSSender()
		svc := NewService(repo, nil, email, sms, 30*24*time.Hour)

		err := svc.SendGhostingReminder(context.Background(), 1, 2, "Alex", 12)
		require.NoError(t, err)

		require.Len(t, repo.created, 1)
		assert.Equal(t, TypeGhostingReminder, repo.created[0].Type)

		require.Len(t, email.SentEmails, 1)
		assert.Equal(t, "jo@example.com", email.SentEmails[0].To)
		assert.Contains(t, email.SentEmails[0].Plain, "Alex")

		require.Len(t, sms.SentMessages, 1)
		assert.Equal(t, phone, sms.SentMessages[0].To)
	})

	t.Run("in-app only when no providers configured", func(t *testing.T) {
		repo := &fakeRepository{}
		svc := NewService(repo, nil, nil, nil, 30*24*time.Hour)

		err := svc.SendGhostingReminder(context.Background(), 1, 2, "Alex", 12)
		require.NoError(t, err)
		assert.Len(t, repo.created, 1)
	})

	t.Run("recipient lookup failure does not fail the reminder", func(t *testing.T) {
		repo := &fakeRepository{recipient: nil}
		svc := NewService(repo, nil, NewMockEmailSender(), nil, 30*24*time.Hour)

		err := svc.SendGhostingReminder(context.Background(), 1, 2, "Alex", 12)
		assert.NoError(t, err)
	})

	t.Run("persist failure is fatal", func(t *testing.T) {
		repo := &fakeRepository{createErr: errors.New("insert failed")}
		svc := NewService(repo, nil, nil, nil, 30*24*time.Hour)

		err := svc.SendGhostingReminder(context.Background(), 1, 2, "Alex", 12)
		assert.Error(t, err)
	})
}

func TestNotifyMatchResolvesActorName(t *testing.T) {
	repo := &fakeRepository{
		recipient: &Recipient{UserID: 2, DisplayName: "Alex"},
	}
	svc := NewService(repo, nil, nil, nil, 30*24*time.Hour)

	err := svc.NotifyMatch(context.Background(), 1, 2, "")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Contains(t, repo.created[0].Message, "Alex")
}
