// internal/jobs/scheduler.go

package jobs

import (
	"context"
	"log"
	"time"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/notification"
	"github.com/emberlyhq/emberly-backend/internal/nudge"
)

// Scheduler runs the batch jobs on fixed intervals in-process. The HTTP
// endpoints remain available for external triggering; both paths share the
// same idempotence guards, so overlap is harmless.
type Scheduler struct {
	nudgeService        nudge.Service
	ghostingService     ghosting.Service
	notificationService notification.Service

	nudgeInterval    time.Duration
	reminderInterval time.Duration
	detectorInterval time.Duration
}

func NewScheduler(nudgeService nudge.Service, ghostingService ghosting.Service, notificationService notification.Service, nudgeInterval, reminderInterval, detectorInterval time.Duration) *Scheduler {
	return &Scheduler{
		nudgeService:        nudgeService,
		ghostingService:     ghostingService,
		notificationService: notificationService,
		nudgeInterval:       nudgeInterval,
		reminderInterval:    reminderInterval,
		detectorInterval:    detectorInterval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvery(ctx, s.nudgeInterval, "conversation nudges", func(ctx context.Context) error {
		_, err := s.nudgeService.SendConversationNudges(ctx)
		return err
	})

	go s.runEvery(ctx, s.reminderInterval, "ghosting reminders", func(ctx context.Context) error {
		_, err := s.nudgeService.SendGhostingReminders(ctx)
		return err
	})

	go s.runEvery(ctx, s.detectorInterval, "ghosting detector", func(ctx context.Context) error {
		recorded, err := s.ghostingService.DetectAndRecordGhosting(ctx)
		if err != nil {
			return err
		}
		if recorded > 0 {
			if _, err := s.ghostingService.RecalculateRecent(ctx); err != nil {
				return err
			}
		}
		return nil
	})

	// Notification retention sweep, daily.
	go s.runEvery(ctx, 24*time.Hour, "notification cleanup", func(ctx context.Context) error {
		_, err := s.notificationService.CleanupOld(ctx)
		return err
	})
}

func (s *Scheduler) runEvery(ctx context.Context, interval time.Duration, name string, task func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				log.Printf("Scheduled %s run failed: %v", name, err)
			}
		case <-ctx.Done():
			return
		}
	}
}
