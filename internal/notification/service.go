// internal/notification/service.go

package notification

import (
	"context"
	"fmt"
	"log"
	"time"
)

type Service interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID int64, limit, offset int) (*ListResponse, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	CleanupOld(ctx context.Context) (int64, error)

	// NotifyMatch announces a newly opened conversation to the other party.
	NotifyMatch(ctx context.Context, userID, otherUserID int64, otherName string) error

	// SendNudge delivers a soft in-app prompt to re-engage a conversation.
	SendNudge(ctx context.Context, userID, otherUserID int64, otherName string, daysInactive int) error

	// SendGhostingReminder delivers an escalated last-chance reminder,
	// in-app plus email and SMS when providers are configured.
	SendGhostingReminder(ctx context.Context, userID, otherUserID int64, otherName string, hoursLeft int) error
}

type service struct {
	repo      Repository
	hub       *Hub
	email     EmailSender
	sms       SMSSender
	retention time.Duration
}

// NewService wires the notification pipeline. email and sms may be nil when
// no provider is configured; delivery then stays in-app only.
func NewService(repo Repository, hub *Hub, email EmailSender, sms SMSSender, retention time.Duration) Service {
	return &service{
		repo:      repo,
		hub:       hub,
		email:     email,
		sms:       sms,
		retention: retention,
	}
}

func (s *service) Create(ctx context.Context, n *Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	RecordNotificationCreated(n.Type)

	if s.hub != nil {
		s.hub.Push(n.UserID, n)
	}

	return nil
}

func (s *service) List(ctx context.Context, userID int64, limit, offset int) (*ListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
		Limit:         limit,
		Offset:        offset,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) CleanupOld(ctx context.Context) (int64, error) {
	deleted, err := s.repo.CleanupOld(ctx, s.retention)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Cleaned up %d old notification(s)", deleted)
	}
	return deleted, nil
}

func (s *service) NotifyMatch(ctx context.Context, userID, otherUserID int64, otherName string) error {
	if otherName == "" {
		if actor, err := s.repo.GetRecipient(ctx, otherUserID); err == nil {
			otherName = actor.DisplayName
		} else {
			otherName = "Someone"
		}
	}

	return s.Create(ctx, &Notification{
		UserID:        userID,
		Type:          TypeMatch,
		Title:         "New conversation",
		Message:       fmt.Sprintf("%s started a conversation with you", otherName),
		RelatedUserID: &otherUserID,
	})
}

func (s *service) SendNudge(ctx context.Context, userID, otherUserID int64, otherName string, daysInactive int) error {
	return s.Create(ctx, &Notification{
		UserID:        userID,
		Type:          TypeNudge,
		Title:         "Still thinking it over?",
		Message:       fmt.Sprintf("%s is waiting to hear back from you. It's been %d days.", otherName, daysInactive),
		RelatedUserID: &otherUserID,
	})
}

func (s *service) SendGhostingReminder(ctx context.Context, userID, otherUserID int64, otherName string, hoursLeft int) error {
	err := s.Create(ctx, &Notification{
		UserID:        userID,
		Type:          TypeGhostingReminder,
		Title:         "Last chance to reply",
		Message:       fmt.Sprintf("Reply to %s in the next %d hours, or close the conversation gracefully.", otherName, hoursLeft),
		RelatedUserID: &otherUserID,
	})
	if err != nil {
		return err
	}

	// Out-of-app channels are best effort: the in-app record is already
	// persisted, and a provider outage should not fail the reminder run.
	if s.email == nil && s.sms == nil {
		return nil
	}

	recipient, err := s.repo.GetRecipient(ctx, userID)
	if err != nil {
		log.Printf("Failed to load recipient %d for reminder delivery: %v", userID, err)
		return nil
	}

	if s.email != nil && recipient.Email != "" {
		msg := &EmailMessage{
			To:      recipient.Email,
			ToName:  recipient.DisplayName,
			Subject: "Your conversation is about to close",
			Plain: fmt.Sprintf("Hi %s,\n\n%s is still waiting to hear from you. Reply in the next %d hours, or close the conversation so you both can move on.\n\nThe Emberly Team",
				recipient.DisplayName, otherName, hoursLeft),
		}
		if err := s.email.SendEmail(ctx, msg); err != nil {
			log.Printf("Failed to email reminder to user %d: %v", userID, err)
		}
	}

	if s.sms != nil && recipient.Phone != nil && *recipient.Phone != "" {
		msg := &SMSMessage{
			To:   *recipient.Phone,
			Body: fmt.Sprintf("Emberly: %s is waiting for your reply. %d hours left before the conversation closes.", otherName, hoursLeft),
		}
		if err := s.sms.SendSMS(ctx, msg); err != nil {
			log.Printf("Failed to text reminder to user %d: %v", userID, err)
		}
	}

	return nil
}
