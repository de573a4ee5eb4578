package conversation

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrConversationNotFound = errors.New("conversation not found")

type Repository interface {
	// Conversations
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversation(ctx context.Context, id int64) (*Conversation, error)
	GetPairConversation(ctx context.Context, user1ID, user2ID int64) (*Conversation, error)
	GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]*Conversation, error)
	ReopenConversation(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (bool, error)
	CloseConversation(ctx context.Context, id, closedBy int64, reason string) error

	// Messages
	CreateMessage(ctx context.Context, msg *Message) error
	GetConversationMessages(ctx context.Context, convID int64, limit, offset int) ([]*Message, error)
	TouchLastMessage(ctx context.Context, convID int64, at time.Time) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateConversation(ctx context.Context, conv *Conversation) error {
	// Ensure user1_id < user2_id for consistency
	if conv.User1ID > conv.User2ID {
		conv.User1ID, conv.User2ID = conv.User2ID, conv.User1ID
	}

	query := `
        INSERT INTO conversations (user1_id, user2_id, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		conv.User1ID, conv.User2ID, conv.Status,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
}

func (r *postgresRepository) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var conv Conversation
	query := `SELECT * FROM conversations WHERE id = $1`

	err := r.db.GetContext(ctx, &conv, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}

	return &conv, err
}

func (r *postgresRepository) GetPairConversation(ctx context.Context, user1ID, user2ID int64) (*Conversation, error) {
	// Ensure consistent ordering
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}

	var conv Conversation
	query := `SELECT * FROM conversations WHERE user1_id = $1 AND user2_id = $2`

	err := r.db.GetContext(ctx, &conv, query, user1ID, user2ID)
	if err == sql.ErrNoRows {
		return nil, ErrConversationNotFound
	}

	return &conv, err
}

func (r *postgresRepository) GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]*Conversation, error) {
	query := `
        SELECT c.*,
               CASE WHEN c.user1_id = $1 THEN u2.id ELSE u1.id END as "other_id",
               CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END as "other_name"
        FROM conversations c
        JOIN users u1 ON c.user1_id = u1.id
        JOIN users u2 ON c.user2_id = u2.id
        WHERE c.user1_id = $1 OR c.user2_id = $1
        ORDER BY COALESCE(c.last_message_at, c.created_at) DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.db.QueryxContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*Conversation
	for rows.Next() {
		var conv Conversation
		var other UserInfo

		err := rows.Scan(
			&conv.ID, &conv.User1ID, &conv.User2ID, &conv.Status,
			&conv.LastMessageAt, &conv.ReminderSentAt,
			&conv.CloseReason, &conv.ClosedBy,
			&conv.CreatedAt, &conv.UpdatedAt,
			&other.ID, &other.DisplayName,
		)
		if err != nil {
			log.Printf("Failed to scan conversation row for user %d, skipping: %v", userID, err)
			continue
		}

		conv.OtherUser = &other
		conversations = append(conversations, &conv)
	}

	return conversations, nil
}

// ReopenConversation revives a previously closed pair row as a fresh active
// conversation instead of inserting a duplicate pair.
func (r *postgresRepository) ReopenConversation(ctx context.Context, id int64) error {
	query := `
        UPDATE conversations
        SET status = 'active', close_reason = NULL, closed_by = NULL,
            reminder_sent_at = NULL, last_message_at = NULL,
            created_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// UpdateStatus moves the conversation from one of the expected states to the
// target state. Returns false when the row was not in an expected state, which
// callers use as an idempotence guard.
func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	query, args, err := sqlx.In(`
        UPDATE conversations
        SET status = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND status IN (?)
    `, string(to), id, fromStrs)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	return affected > 0, err
}

func (r *postgresRepository) CloseConversation(ctx context.Context, id, closedBy int64, reason string) error {
	query := `
        UPDATE conversations
        SET status = 'closed', close_reason = $3, closed_by = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND status IN ('active', 'nudge_sent', 'ghosted')
    `

	res, err := r.db.ExecContext(ctx, query, id, closedBy, reason)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConversationNotFound
	}

	return nil
}

func (r *postgresRepository) CreateMessage(ctx context.Context, msg *Message) error {
	query := `
        INSERT INTO messages (conversation_id, sender_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	return r.db.QueryRowxContext(
		ctx, query,
		msg.ConversationID, msg.SenderID, msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *postgresRepository) GetConversationMessages(ctx context.Context, convID int64, limit, offset int) ([]*Message, error) {
	var messages []*Message
	query := `
        SELECT m.id, m.conversation_id, m.sender_id, m.content, m.created_at
        FROM messages m
        WHERE m.conversation_id = $1
        ORDER BY m.created_at DESC
        LIMIT $2 OFFSET $3
    `

	err := r.db.SelectContext(ctx, &messages, query, convID, limit, offset)
	return messages, err
}

func (r *postgresRepository) TouchLastMessage(ctx context.Context, convID int64, at time.Time) error {
	query := `
        UPDATE conversations
        SET last_message_at = $2, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	_, err := r.db.ExecContext(ctx, query, convID, at)
	return err
}
