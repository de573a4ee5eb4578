// internal/nudge/repository.go

package nudge

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	// ConversationsNeedingNudge returns active conversations whose last
	// message landed between the two cutoffs, oldest first.
	ConversationsNeedingNudge(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error)

	// ConversationsNeedingReminder returns conversations close enough to the
	// ghosting threshold for an escalated reminder.
	ConversationsNeedingReminder(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error)

	// HasRecentNudge reports whether the user already received a nudge about
	// this counterpart inside the cooldown window.
	HasRecentNudge(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error)

	// MarkReminderSent claims the conversation for an escalated reminder.
	// Returns false when a reminder already went out inside the cooldown.
	MarkReminderSent(ctx context.Context, convID int64, cooldown time.Duration) (bool, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// candidateQuery resolves the nudge target (the participant who did not send
// the last message) plus the counterpart's display name for message copy.
const candidateQuery = `
    SELECT c.id AS conversation_id,
           CASE WHEN m.sender_id = c.user1_id THEN c.user2_id ELSE c.user1_id END AS user_to_nudge,
           m.sender_id AS other_user_id,
           u.display_name AS other_user_name,
           m.created_at AS last_message_at
    FROM conversations c
    JOIN LATERAL (
        SELECT sender_id, created_at
        FROM messages
        WHERE conversation_id = c.id
        ORDER BY created_at DESC
        LIMIT 1
    ) m ON TRUE
    JOIN users u ON u.id = m.sender_id
    WHERE c.status = ANY($1)
          AND m.created_at < $2
          AND m.created_at >= $3
    ORDER BY m.created_at ASC
    LIMIT $4
`

func (r *postgresRepository) ConversationsNeedingNudge(ctx context.Context, nudgeCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
	var candidates []*NudgeCandidate
	statuses := []string{"active"}
	err := r.db.SelectContext(ctx, &candidates, candidateQuery, pq.Array(statuses), nudgeCutoff, ghostCutoff, limit)
	return candidates, err
}

func (r *postgresRepository) ConversationsNeedingReminder(ctx context.Context, reminderCutoff, ghostCutoff time.Time, limit int) ([]*NudgeCandidate, error) {
	var candidates []*NudgeCandidate
	statuses := []string{"active", "nudge_sent"}
	err := r.db.SelectContext(ctx, &candidates, candidateQuery, pq.Array(statuses), reminderCutoff, ghostCutoff, limit)
	return candidates, err
}

func (r *postgresRepository) HasRecentNudge(ctx context.Context, userID, counterpartID int64, window time.Duration) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS (
            SELECT 1 FROM notifications
            WHERE user_id = $1
                  AND related_user_id = $2
                  AND type = 'nudge'
                  AND created_at > NOW() - $3 * INTERVAL '1 second'
        )
    `
	err := r.db.GetContext(ctx, &exists, query, userID, counterpartID, int64(window.Seconds()))
	return exists, err
}

func (r *postgresRepository) MarkReminderSent(ctx context.Context, convID int64, cooldown time.Duration) (bool, error) {
	// The guard makes concurrent reminder runs safe: only one run can move
	// the timestamp past the cooldown boundary.
	result, err := r.db.ExecContext(ctx, `
        UPDATE conversations
        SET reminder_sent_at = CURRENT_TIMESTAMP,
            status = 'nudge_sent',
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
              AND status IN ('active', 'nudge_sent')
              AND (reminder_sent_at IS NULL OR reminder_sent_at < NOW() - $2 * INTERVAL '1 second')
    `, convID, int64(cooldown.Seconds()))
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
