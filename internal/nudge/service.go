// internal/nudge/service.go

package nudge

import (
	"context"
	"log"
	"time"
)

// Notifier delivers the actual nudge and reminder content. Delivery channels
// (in-app, email, SMS) are the notifier's concern, not ours.
type Notifier interface {
	SendNudge(ctx context.Context, userID, otherUserID int64, otherName string, daysInactive int) error
	SendGhostingReminder(ctx context.Context, userID, otherUserID int64, otherName string, hoursLeft int) error
}

type Service interface {
	// SendConversationNudges delivers a soft nudge to every conversation in
	// the nudge window, honoring the per-pair cooldown. Returns the number
	// sent.
	SendConversationNudges(ctx context.Context) (int, error)

	// SendGhostingReminders delivers an escalated reminder to conversations
	// approaching the ghosting threshold. Returns the number sent.
	SendGhostingReminders(ctx context.Context) (int, error)
}

type service struct {
	repo             Repository
	notifier         Notifier
	nudgeAfter       time.Duration
	ghostingAfter    time.Duration
	nudgeCooldown    time.Duration
	reminderCooldown time.Duration
	batchSize        int
}

func NewService(repo Repository, notifier Notifier, nudgeAfter, ghostingAfter, nudgeCooldown, reminderCooldown time.Duration, batchSize int) Service {
	return &service{
		repo:             repo,
		notifier:         notifier,
		nudgeAfter:       nudgeAfter,
		ghostingAfter:    ghostingAfter,
		nudgeCooldown:    nudgeCooldown,
		reminderCooldown: reminderCooldown,
		batchSize:        batchSize,
	}
}

func (s *service) SendConversationNudges(ctx context.Context) (int, error) {
	now := time.Now()
	nudgeCutoff := now.Add(-s.nudgeAfter)
	ghostCutoff := now.Add(-s.ghostingAfter)

	candidates, err := s.repo.ConversationsNeedingNudge(ctx, nudgeCutoff, ghostCutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range candidates {
		onCooldown, err := s.repo.HasRecentNudge(ctx, c.UserToNudge, c.OtherUserID, s.nudgeCooldown)
		if err != nil {
			log.Printf("Failed to check nudge cooldown for conversation %d: %v", c.ConversationID, err)
			continue
		}
		if onCooldown {
			RecordNudgeSkipped()
			continue
		}

		if err := s.notifier.SendNudge(ctx, c.UserToNudge, c.OtherUserID, c.OtherUserName, c.DaysInactive(now)); err != nil {
			log.Printf("Failed to send nudge for conversation %d: %v", c.ConversationID, err)
			continue
		}

		sent++
		RecordNudgeSent()
	}

	if sent > 0 {
		log.Printf("Sent %d conversation nudge(s) from %d candidate(s)", sent, len(candidates))
	}

	return sent, nil
}

// SendGhostingReminders covers the last stretch before the detector takes
// over: conversations with less than one reminder-cooldown of runway left.
func (s *service) SendGhostingReminders(ctx context.Context) (int, error) {
	now := time.Now()
	reminderCutoff := now.Add(-(s.ghostingAfter - s.reminderCooldown))
	ghostCutoff := now.Add(-s.ghostingAfter)

	candidates, err := s.repo.ConversationsNeedingReminder(ctx, reminderCutoff, ghostCutoff, s.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, c := range candidates {
		// Claim first. If the claim fails we never ping, so a crash between
		// claim and send costs one reminder rather than a duplicate.
		claimed, err := s.repo.MarkReminderSent(ctx, c.ConversationID, s.reminderCooldown)
		if err != nil {
			log.Printf("Failed to claim reminder for conversation %d: %v", c.ConversationID, err)
			continue
		}
		if !claimed {
			continue
		}

		deadline := c.LastMessageAt.Add(s.ghostingAfter)
		hoursLeft := int(deadline.Sub(now).Hours())
		if hoursLeft < 1 {
			hoursLeft = 1
		}

		if err := s.notifier.SendGhostingReminder(ctx, c.UserToNudge, c.OtherUserID, c.OtherUserName, hoursLeft); err != nil {
			log.Printf("Failed to send ghosting reminder for conversation %d: %v", c.ConversationID, err)
			continue
		}

		sent++
		RecordReminderSent()
	}

	if sent > 0 {
		log.Printf("Sent %d ghosting reminder(s) from %d candidate(s)", sent, len(candidates))
	}

	return sent, nil
}
