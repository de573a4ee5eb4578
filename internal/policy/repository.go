package policy

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// ActiveConversationCount counts conversations involving the user that
	// still hold a slot: not closed/archived/ghosted, with activity inside
	// the recency window.
	ActiveConversationCount(ctx context.Context, userID int64, recency time.Duration) (int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ActiveConversationCount(ctx context.Context, userID int64, recency time.Duration) (int, error) {
	var count int
	query := `
        SELECT COUNT(*)
        FROM conversations
        WHERE (user1_id = $1 OR user2_id = $1)
              AND status IN ('active', 'nudge_sent')
              AND COALESCE(last_message_at, created_at) > NOW() - $2 * INTERVAL '1 second'
    `

	err := r.db.GetContext(ctx, &count, query, userID, int64(recency.Seconds()))
	return count, err
}
