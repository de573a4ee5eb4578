// internal/conversation/service.go

package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberlyhq/emberly-backend/internal/policy"
)

var (
	ErrCannotMessageSelf = errors.New("cannot start a conversation with yourself")
	ErrNotParticipant    = errors.New("not a participant in this conversation")
	ErrConversationOpen  = errors.New("conversation already open")
)

// LimitError is returned when admission control rejects a new conversation.
// It carries the numbers the client renders in the limit overlay.
type LimitError struct {
	Status *policy.LimitStatus
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("conversation limit reached (%d/%d active)",
		e.Status.ActiveCount, e.Status.MaxConversations)
}

// PatternRecorder is the slice of the ghosting package the conversation
// service needs: crediting graceful closures.
type PatternRecorder interface {
	RecordGracefulClosure(ctx context.Context, userID int64) error
}

// Notifier is the slice of the notification service used for match alerts.
type Notifier interface {
	NotifyMatch(ctx context.Context, userID, otherUserID int64, otherName string) error
}

type Service interface {
	Start(ctx context.Context, userID int64, req *StartConversationRequest) (*Conversation, error)
	Get(ctx context.Context, userID, convID int64) (*Conversation, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]*Conversation, error)
	SendMessage(ctx context.Context, userID, convID int64, req *SendMessageRequest) (*Message, error)
	Messages(ctx context.Context, userID, convID int64, limit, offset int) ([]*Message, error)
	Close(ctx context.Context, userID, convID int64, reason string) error
	Archive(ctx context.Context, userID, convID int64) error
}

type service struct {
	repo     Repository
	policy   policy.Service
	patterns PatternRecorder
	notifier Notifier
}

func NewService(repo Repository, policyService policy.Service, patterns PatternRecorder, notifier Notifier) Service {
	return &service{
		repo:     repo,
		policy:   policyService,
		patterns: patterns,
		notifier: notifier,
	}
}

// Start admits a new conversation. The limit check and the insert are two
// separate steps: two near-simultaneous starts can both pass the check and
// briefly push the user over the cap. That is an accepted soft limit; the cap
// is a product nudge toward fewer conversations, not a hard quota.
func (s *service) Start(ctx context.Context, userID int64, req *StartConversationRequest) (*Conversation, error) {
	if userID == req.OtherUserID {
		return nil, ErrCannotMessageSelf
	}

	status, err := s.policy.LimitStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !status.CanStartNew {
		return nil, &LimitError{Status: status}
	}

	// One row per pair; a previously closed conversation is revived rather
	// than duplicated.
	existing, err := s.repo.GetPairConversation(ctx, userID, req.OtherUserID)
	var conv *Conversation
	switch {
	case err == nil:
		if existing.Status.CountsAgainstLimit() {
			return nil, ErrConversationOpen
		}
		if err := s.repo.ReopenConversation(ctx, existing.ID); err != nil {
			return nil, err
		}
		existing.Status = StatusActive
		conv = existing
	case errors.Is(err, ErrConversationNotFound):
		conv = &Conversation{
			User1ID: userID,
			User2ID: req.OtherUserID,
			Status:  StatusActive,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	RecordConversationStarted()

	if req.Message != nil && *req.Message != "" {
		if _, err := s.SendMessage(ctx, userID, conv.ID, &SendMessageRequest{Content: *req.Message}); err != nil {
			// The conversation exists; a failed opener is not fatal.
			return conv, nil
		}
	}

	if s.notifier != nil {
		_ = s.notifier.NotifyMatch(ctx, conv.OtherParticipant(userID), userID, "")
	}

	return conv, nil
}

func (s *service) Get(ctx context.Context, userID, convID int64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	return conv, nil
}

func (s *service) List(ctx context.Context, userID int64, limit, offset int) ([]*Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.GetUserConversations(ctx, userID, limit, offset)
}

// SendMessage delivers into an existing conversation. Messaging an existing
// match is never blocked by the policy system: a reply into a nudged or even
// ghosted conversation revives it.
func (s *service) SendMessage(ctx context.Context, userID, convID int64, req *SendMessageRequest) (*Message, error) {
	conv, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	msg := &Message{
		ConversationID: convID,
		SenderID:       userID,
		Content:        req.Content,
	}

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.TouchLastMessage(ctx, convID, now); err != nil {
		return nil, err
	}

	// A message clears the nudged state and revives a lapsed conversation.
	switch conv.Status {
	case StatusNudgeSent:
		_, _ = s.repo.UpdateStatus(ctx, convID, []Status{StatusNudgeSent}, StatusActive)
	case StatusGhosted:
		if _, err := s.repo.UpdateStatus(ctx, convID, []Status{StatusGhosted}, StatusActive); err == nil {
			RecordConversationRevived()
		}
	}

	RecordMessageSent()
	return msg, nil
}

func (s *service) Messages(ctx context.Context, userID, convID int64, limit, offset int) ([]*Message, error) {
	conv, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.GetConversationMessages(ctx, convID, limit, offset)
}

// Close ends the conversation explicitly. The closer earns a graceful-closure
// credit on their response pattern; silence would have cost them instead.
func (s *service) Close(ctx context.Context, userID, convID int64, reason string) error {
	conv, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}

	if err := s.repo.CloseConversation(ctx, convID, userID, reason); err != nil {
		return err
	}

	RecordConversationClosed(reason)

	if s.patterns != nil {
		if err := s.patterns.RecordGracefulClosure(ctx, userID); err != nil {
			// The close already happened; the credit is best effort.
			return nil
		}
	}

	return nil
}

func (s *service) Archive(ctx context.Context, userID, convID int64) error {
	conv, err := s.repo.GetConversation(ctx, convID)
	if err != nil {
		return err
	}

	if !conv.HasParticipant(userID) {
		return ErrNotParticipant
	}

	_, err = s.repo.UpdateStatus(ctx, convID,
		[]Status{StatusActive, StatusNudgeSent, StatusGhosted, StatusClosed}, StatusArchived)
	return err
}
