package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlyhq/emberly-backend/internal/policy"
)

type fakeRepository struct {
	Repository

	getPairFn      func(ctx context.Context, user1ID, user2ID int64) (*Conversation, error)
	createFn       func(ctx context.Context, conv *Conversation) error
	getFn          func(ctx context.Context, id int64) (*Conversation, error)
	reopenFn       func(ctx context.Context, id int64) error
	updateStatusFn func(ctx context.Context, id int64, from []Status, to Status) (bool, error)
	closeFn        func(ctx context.Context, id, closedBy int64, reason string) error
	createMsgFn    func(ctx context.Context, msg *Message) error
	touchFn        func(ctx context.Context, convID int64, at time.Time) error
}

func (f *fakeRepository) GetPairConversation(ctx context.Context, user1ID, user2ID int64) (*Conversation, error) {
	return f.getPairFn(ctx, user1ID, user2ID)
}

func (f *fakeRepository) CreateConversation(ctx context.Context, conv *Conversation) error {
	return f.createFn(ctx, conv)
}

func (f *fakeRepository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	return f.getFn(ctx, id)
}

func (f *fakeRepository) ReopenConversation(ctx context.Context, id int64) error {
	return f.reopenFn(ctx, id)
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (bool, error) {
	return f.updateStatusFn(ctx, id, from, to)
}

func (f *fakeRepository) CloseConversation(ctx context.Context, id, closedBy int64, reason string) error {
	return f.closeFn(ctx, id, closedBy, reason)
}

func (f *fakeRepository) CreateMessage(ctx context.Context, msg *Message) error {
	return f.createMsgFn(ctx, msg)
}

func (f *fakeRepository) TouchLastMessage(ctx context.Context, convID int64, at time.Time) error {
	return f.touchFn(ctx, convID, at)
}

type fakePolicy struct {
	policy.Service
	status *policy.LimitStatus
	err    error
}

func (f *fakePolicy) LimitStatus(ctx context.Context, userID int64) (*policy.LimitStatus, error) {
	return f.status, f.err
}

type fakePatterns struct {
	credited []int64
	err      error
}

func (f *fakePatterns) RecordGracefulClosure(ctx context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	f.credited = append(f.credited, userID)
	return nil
}

func openStatus(count int) *policy.LimitStatus {
	return &policy.LimitStatus{
		ActiveCount:      count,
		MaxConversations: 3,
		RemainingSlots:   3 - count,
		CanStartNew:      count < 3,
	}
}

func TestStartConversation(t *testing.T) {
	t.Run("at the limit returns the overlay payload", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, &fakePolicy{status: openStatus(3)}, nil, nil)

		_, err := svc.Start(context.Background(), 1, &StartConversationRequest{OtherUserID: 2})
		require.Error(t, err)

		var limitErr *LimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, 3, limitErr.Status.ActiveCount)
		assert.Equal(t, 3, limitErr.Status.MaxConversations)
		assert.Equal(t, 0, limitErr.Status.RemainingSlots)
	})

	t.Run("below the limit creates the conversation", func(t *testing.T) {
		var created *Conversation
		repo := &fakeRepository{
			getPairFn: func(ctx context.Context, user1ID, user2ID int64) (*Conversation, error) {
				return nil, ErrConversationNotFound
			},
			createFn: func(ctx context.Context, conv *Conversation) error {
				conv.ID = 77
				created = conv
				return nil
			},
		}
		svc := NewService(repo, &fakePolicy{status: openStatus(1)}, nil, nil)

		conv, err := svc.Start(context.Background(), 1, &StartConversationRequest{OtherUserID: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(77), conv.ID)
		assert.Equal(t, StatusActive, created.Status)
	})

	t.Run("self conversation rejected", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, &fakePolicy{status: openStatus(0)}, nil, nil)

		_, err := svc.Start(context.Background(), 5, &StartConversationRequest{OtherUserID: 5})
		assert.ErrorIs(t, err, ErrCannotMessageSelf)
	})

	t.Run("open pair conversation is not duplicated", func(t *testing.T) {
		repo := &fakeRepository{
			getPairFn: func(ctx context.Context, user1ID, user2ID int64) (*Conversation, error) {
				return &Conversation{ID: 9, User1ID: 1, User2ID: 2, Status: StatusActive}, nil
			},
		}
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		_, err := svc.Start(context.Background(), 1, &StartConversationRequest{OtherUserID: 2})
		assert.ErrorIs(t, err, ErrConversationOpen)
	})

	t.Run("closed pair conversation is reopened", func(t *testing.T) {
		reopened := false
		repo := &fakeRepository{
			getPairFn: func(ctx context.Context, user1ID, user2ID int64) (*Conversation, error) {
				return &Conversation{ID: 9, User1ID: 1, User2ID: 2, Status: StatusClosed}, nil
			},
			reopenFn: func(ctx context.Context, id int64) error {
				reopened = true
				return nil
			},
		}
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		conv, err := svc.Start(context.Background(), 1, &StartConversationRequest{OtherUserID: 2})
		require.NoError(t, err)
		assert.True(t, reopened)
		assert.Equal(t, StatusActive, conv.Status)
	})

	t.Run("policy failure blocks the start", func(t *testing.T) {
		svc := NewService(&fakeRepository{}, &fakePolicy{err: errors.New("db down")}, nil, nil)

		_, err := svc.Start(context.Background(), 1, &StartConversationRequest{OtherUserID: 2})
		require.Error(t, err)
	})
}

func TestSendMessage(t *testing.T) {
	newRepo := func(status Status) (*fakeRepository, *[]Status) {
		var transitions []Status
		repo := &fakeRepository{
			getFn: func(ctx context.Context, id int64) (*Conversation, error) {
				return &Conversation{ID: id, User1ID: 1, User2ID: 2, Status: status}, nil
			},
			createMsgFn: func(ctx context.Context, msg *Message) error {
				msg.ID = 500
				return nil
			},
			touchFn: func(ctx context.Context, convID int64, at time.Time) error {
				return nil
			},
			updateStatusFn: func(ctx context.Context, id int64, from []Status, to Status) (bool, error) {
				transitions = append(transitions, to)
				return true, nil
			},
		}
		return repo, &transitions
	}

	t.Run("non participant rejected", func(t *testing.T) {
		repo, _ := newRepo(StatusActive)
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		_, err := svc.SendMessage(context.Background(), 99, 1, &SendMessageRequest{Content: "hey"})
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("reply clears the nudged state", func(t *testing.T) {
		repo, transitions := newRepo(StatusNudgeSent)
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		msg, err := svc.SendMessage(context.Background(), 2, 1, &SendMessageRequest{Content: "sorry, busy week"})
		require.NoError(t, err)
		assert.Equal(t, int64(500), msg.ID)
		assert.Equal(t, []Status{StatusActive}, *transitions)
	})

	t.Run("reply revives a ghosted conversation", func(t *testing.T) {
		repo, transitions := newRepo(StatusGhosted)
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		_, err := svc.SendMessage(context.Background(), 2, 1, &SendMessageRequest{Content: "I'm back"})
		require.NoError(t, err)
		assert.Equal(t, []Status{StatusActive}, *transitions)
	})

	t.Run("active conversation needs no transition", func(t *testing.T) {
		repo, transitions := newRepo(StatusActive)
		svc := NewService(repo, &fakePolicy{status: openStatus(0)}, nil, nil)

		_, err := svc.SendMessage(context.Background(), 1, 1, &SendMessageRequest{Content: "hi"})
		require.NoError(t, err)
		assert.Empty(t, *transitions)
	})
}

func TestCloseConversation(t *testing.T) {
	newRepo := func() *fakeRepository {
		return &fakeRepository{
			getFn: func(ctx context.Context, id int64) (*Conversation, error) {
				return &Conversation{ID: id, User1ID: 1, User2ID: 2, Status: StatusActive}, nil
			},
			closeFn: func(ctx context.Context, id, closedBy int64, reason string) error {
				return nil
			},
		}
	}

	t.Run("closer earns a graceful closure credit", func(t *testing.T) {
		patterns := &fakePatterns{}
		svc := NewService(newRepo(), &fakePolicy{status: openStatus(0)}, patterns, nil)

		err := svc.Close(context.Background(), 1, 7, "not_a_match")
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, patterns.credited)
	})

	t.Run("credit failure does not undo the close", func(t *testing.T) {
		patterns := &fakePatterns{err: errors.New("pattern store down")}
		svc := NewService(newRepo(), &fakePolicy{status: openStatus(0)}, patterns, nil)

		err := svc.Close(context.Background(), 1, 7, "met_someone")
		assert.NoError(t, err)
	})

	t.Run("non participant cannot close", func(t *testing.T) {
		svc := NewService(newRepo(), &fakePolicy{status: openStatus(0)}, &fakePatterns{}, nil)

		err := svc.Close(context.Background(), 99, 7, "other")
		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestStatusCountsAgainstLimit(t *testing.T) {
	assert.True(t, StatusActive.CountsAgainstLimit())
	assert.True(t, StatusNudgeSent.CountsAgainstLimit())
	assert.False(t, StatusGhosted.CountsAgainstLimit())
	assert.False(t, StatusClosed.CountsAgainstLimit())
	assert.False(t, StatusArchived.CountsAgainstLimit())
}
