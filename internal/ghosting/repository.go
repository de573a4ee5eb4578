package ghosting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNoPattern = errors.New("no response pattern for user")

type Repository interface {
	// FindLapsedConversations returns conversations still open whose last
	// message is older than the cutoff, together with the silent party.
	FindLapsedConversations(ctx context.Context, cutoff time.Time, limit int) ([]*LapsedConversation, error)

	// RecordGhosting marks the conversation ghosted and charges the silent
	// party in a single transaction. Returns false when another run already
	// claimed the conversation.
	RecordGhosting(ctx context.Context, convID, silentUserID int64) (bool, error)

	// RecordGracefulClosure credits an explicit close on the closer's pattern.
	RecordGracefulClosure(ctx context.Context, userID int64) error

	GetResponsePattern(ctx context.Context, userID int64) (*ResponsePattern, error)
	RecentPatterns(ctx context.Context, limit int) ([]*ResponsePattern, error)

	GetTrustSignals(ctx context.Context, userID int64) (*TrustSignals, error)
	UpsertTrustSignals(ctx context.Context, signals *TrustSignals) error

	GetAccountFacts(ctx context.Context, userID int64) (*AccountFacts, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) FindLapsedConversations(ctx context.Context, cutoff time.Time, limit int) ([]*LapsedConversation, error) {
	var lapsed []*LapsedConversation

	// The silent party is whichever participant did not send the last
	// message. Conversations with no messages are exempt: nobody has been
	// left hanging yet.
	query := `
        SELECT c.id AS conversation_id,
               CASE WHEN m.sender_id = c.user1_id THEN c.user2_id ELSE c.user1_id END AS silent_user_id,
               m.sender_id AS last_sender_id,
               m.created_at AS last_message_at
        FROM conversations c
        JOIN LATERAL (
            SELECT sender_id, created_at
            FROM messages
            WHERE conversation_id = c.id
            ORDER BY created_at DESC
            LIMIT 1
        ) m ON TRUE
        WHERE c.status IN ('active', 'nudge_sent')
              AND m.created_at < $1
        ORDER BY m.created_at ASC
        LIMIT $2
    `

	err := r.db.SelectContext(ctx, &lapsed, query, cutoff, limit)
	return lapsed, err
}

func (r *postgresRepository) RecordGhosting(ctx context.Context, convID, silentUserID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Status guard doubles as the idempotence marker: once a row is ghosted,
	// concurrent and repeat runs skip it here.
	res, err := tx.ExecContext(ctx, `
        UPDATE conversations
        SET status = 'ghosted', updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND status IN ('active', 'nudge_sent')
    `, convID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	var ghosted, graceful int
	err = tx.QueryRowxContext(ctx, `
        INSERT INTO user_response_patterns (user_id, ghosted_count)
        VALUES ($1, 1)
        ON CONFLICT (user_id)
        DO UPDATE SET ghosted_count = user_response_patterns.ghosted_count + 1
        RETURNING ghosted_count, graceful_closures
    `, silentUserID).Scan(&ghosted, &graceful)
	if err != nil {
		return false, err
	}

	score := VisibilityScore(ghosted, graceful)
	_, err = tx.ExecContext(ctx, `
        UPDATE user_response_patterns
        SET visibility_score = $2, last_calculated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `, silentUserID, score)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit ghosting record: %w", err)
	}

	ObserveVisibilityScore(score)
	return true, nil
}

func (r *postgresRepository) RecordGracefulClosure(ctx context.Context, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ghosted, graceful int
	err = tx.QueryRowxContext(ctx, `
        INSERT INTO user_response_patterns (user_id, graceful_closures)
        VALUES ($1, 1)
        ON CONFLICT (user_id)
        DO UPDATE SET graceful_closures = user_response_patterns.graceful_closures + 1
        RETURNING ghosted_count, graceful_closures
    `, userID).Scan(&ghosted, &graceful)
	if err != nil {
		return err
	}

	score := VisibilityScore(ghosted, graceful)
	_, err = tx.ExecContext(ctx, `
        UPDATE user_response_patterns
        SET visibility_score = $2, last_calculated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `, userID, score)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	ObserveVisibilityScore(score)
	return nil
}

func (r *postgresRepository) GetResponsePattern(ctx context.Context, userID int64) (*ResponsePattern, error) {
	var pattern ResponsePattern
	query := `SELECT * FROM user_response_patterns WHERE user_id = $1`

	err := r.db.GetContext(ctx, &pattern, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNoPattern
	}

	return &pattern, err
}

func (r *postgresRepository) RecentPatterns(ctx context.Context, limit int) ([]*ResponsePattern, error) {
	var patterns []*ResponsePattern
	query := `
        SELECT * FROM user_response_patterns
        ORDER BY last_calculated_at DESC
        LIMIT $1
    `

	err := r.db.SelectContext(ctx, &patterns, query, limit)
	return patterns, err
}

func (r *postgresRepository) GetTrustSignals(ctx context.Context, userID int64) (*TrustSignals, error) {
	var signals TrustSignals
	query := `SELECT * FROM user_trust_signals WHERE user_id = $1`

	err := r.db.GetContext(ctx, &signals, query, userID)
	if err == sql.ErrNoRows {
		// Absent row means no badges yet, not an error.
		return &TrustSignals{UserID: userID}, nil
	}

	return &signals, err
}

func (r *postgresRepository) UpsertTrustSignals(ctx context.Context, signals *TrustSignals) error {
	query := `
        INSERT INTO user_trust_signals (
            user_id, shows_up_consistently, communicates_with_care,
            community_trusted, verified_identity, thoughtful_closer, calculated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id)
        DO UPDATE SET
            shows_up_consistently = $2,
            communicates_with_care = $3,
            community_trusted = $4,
            verified_identity = $5,
            thoughtful_closer = $6,
            calculated_at = $7
    `

	_, err := r.db.ExecContext(
		ctx, query,
		signals.UserID, signals.ShowsUpConsistently, signals.CommunicatesWithCare,
		signals.CommunityTrusted, signals.VerifiedIdentity, signals.ThoughtfulCloser,
		signals.CalculatedAt,
	)
	return err
}

func (r *postgresRepository) GetAccountFacts(ctx context.Context, userID int64) (*AccountFacts, error) {
	var facts AccountFacts
	query := `
        SELECT COALESCE(p.is_verified, FALSE) AS is_verified, u.created_at
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id = $1
    `

	err := r.db.GetContext(ctx, &facts, query, userID)
	return &facts, err
}
