// internal/policy/service.go
// Authoritative side of the conversation-limit policy. Clients may cache or
// fail open on these answers, but admission decisions always come back here.

package policy

import (
	"context"
	"time"
)

type Service interface {
	ActiveConversationCount(ctx context.Context, userID int64) (int, error)
	CanStartNewConversation(ctx context.Context, userID int64) (bool, error)
	CanPauseDating(ctx context.Context, userID int64) (*PauseCheck, error)
	LimitStatus(ctx context.Context, userID int64) (*LimitStatus, error)
	MaxConversations() int
}

type service struct {
	repo    Repository
	maxConv int
	recency time.Duration
}

func NewService(repo Repository, maxConversations int, recencyWindow time.Duration) Service {
	return &service{
		repo:    repo,
		maxConv: maxConversations,
		recency: recencyWindow,
	}
}

func (s *service) ActiveConversationCount(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.ActiveConversationCount(ctx, userID, s.recency)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		count = 0
	}
	return count, nil
}

// CanStartNewConversation answers from a single count read, so the boolean is
// consistent with the count it was derived from. Under concurrent starts the
// check may under-admit a borderline case; it never reports a free slot that
// the count would contradict.
func (s *service) CanStartNewConversation(ctx context.Context, userID int64) (bool, error) {
	count, err := s.ActiveConversationCount(ctx, userID)
	if err != nil {
		return false, err
	}

	allowed := count < s.maxConv
	RecordLimitCheck(allowed, count)
	return allowed, nil
}

func (s *service) CanPauseDating(ctx context.Context, userID int64) (*PauseCheck, error) {
	count, err := s.ActiveConversationCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	RecordPauseCheck(count == 0)

	return &PauseCheck{
		CanPause:                count == 0,
		ActiveConversationCount: count,
	}, nil
}

func (s *service) LimitStatus(ctx context.Context, userID int64) (*LimitStatus, error) {
	count, err := s.ActiveConversationCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := s.maxConv - count
	if remaining < 0 {
		// The cap is enforced at admission only; a race can leave a user
		// briefly above it. Never report negative slots.
		remaining = 0
	}

	return &LimitStatus{
		ActiveCount:      count,
		MaxConversations: s.maxConv,
		RemainingSlots:   remaining,
		CanStartNew:      count < s.maxConv,
	}, nil
}

func (s *service) MaxConversations() int {
	return s.maxConv
}
