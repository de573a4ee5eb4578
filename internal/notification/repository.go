// internal/notification/repository.go

package notification

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error

	// CleanupOld deletes notifications older than the retention window.
	// Nudge cooldown checks scan this table, so retention must exceed the
	// cooldown window.
	CleanupOld(ctx context.Context, olderThan time.Duration) (int64, error)

	GetRecipient(ctx context.Context, userID int64) (*Recipient, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, n *Notification) error {
	query := `
        INSERT INTO notifications (user_id, type, title, message, related_user_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at
    `
	return r.db.QueryRowxContext(ctx, query, n.UserID, n.Type, n.Title, n.Message, n.RelatedUserID).
		Scan(&n.ID, &n.CreatedAt)
}

func (r *postgresRepository) List(ctx context.Context, userID int64, limit, offset int) ([]*Notification, error) {
	var notifications []*Notification
	query := `
        SELECT * FROM notifications
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset)
	return notifications, err
}

func (r *postgresRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *postgresRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE notifications
        SET is_read = TRUE, read_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND user_id = $2 AND is_read = FALSE
    `, notificationID, userID)
	return err
}

func (r *postgresRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
        UPDATE notifications
        SET is_read = TRUE, read_at = CURRENT_TIMESTAMP
        WHERE user_id = $1 AND is_read = FALSE
    `, userID)
	return err
}

func (r *postgresRepository) CleanupOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
        DELETE FROM notifications
        WHERE created_at < NOW() - $1 * INTERVAL '1 second'
    `, int64(olderThan.Seconds()))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRepository) GetRecipient(ctx context.Context, userID int64) (*Recipient, error) {
	var recipient Recipient
	query := `
        SELECT u.id AS user_id, u.email, u.display_name, p.phone
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id = $1
    `
	err := r.db.GetContext(ctx, &recipient, query, userID)
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}
