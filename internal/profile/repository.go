// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrProfileNotFound = errors.New("profile not found")

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)

	SetPaused(ctx context.Context, userID int64, reason string) error
	SetResumed(ctx context.Context, userID int64) error

	// Discover returns unpaused profiles other than the viewer's, ordered by
	// visibility score. Users with no recorded pattern rank at full score.
	Discover(ctx context.Context, viewerID int64, limit, offset int) ([]*DiscoverProfile, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// The display name lives on users; profiles carry the dating-specific state.
const profileColumns = `
    p.user_id, u.display_name, p.bio, p.birth_date, p.phone, p.is_verified,
    p.is_paused, p.pause_reason, p.paused_at, p.created_at, p.updated_at
`

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	query := `
        SELECT ` + profileColumns + `
        FROM profiles p
        JOIN users u ON u.id = p.user_id
        WHERE p.user_id = $1
    `

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if req.DisplayName != nil {
		if _, err := tx.ExecContext(ctx, `
            UPDATE users SET display_name = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1
        `, userID, *req.DisplayName); err != nil {
			return nil, err
		}
	}

	result, err := tx.ExecContext(ctx, `
        UPDATE profiles
        SET bio = COALESCE($2, bio),
            phone = COALESCE($3, phone),
            updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `, userID, req.Bio, req.Phone)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrProfileNotFound
	}

	var profile Profile
	query := `
        SELECT ` + profileColumns + `
        FROM profiles p
        JOIN users u ON u.id = p.user_id
        WHERE p.user_id = $1
    `
	if err := tx.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *postgresRepository) SetPaused(ctx context.Context, userID int64, reason string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE profiles
        SET is_paused = TRUE, pause_reason = $2, paused_at = CURRENT_TIMESTAMP,
            updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `, userID, reason)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *postgresRepository) SetResumed(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE profiles
        SET is_paused = FALSE, pause_reason = NULL, paused_at = NULL,
            updated_at = CURRENT_TIMESTAMP
        WHERE user_id = $1
    `, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *postgresRepository) Discover(ctx context.Context, viewerID int64, limit, offset int) ([]*DiscoverProfile, error) {
	var profiles []*DiscoverProfile
	query := `
        SELECT p.user_id, u.display_name, p.bio, p.is_verified,
               COALESCE(rp.visibility_score, 1.0) AS visibility_score
        FROM profiles p
        JOIN users u ON u.id = p.user_id
        LEFT JOIN user_response_patterns rp ON rp.user_id = p.user_id
        WHERE p.user_id != $1
              AND p.is_paused = FALSE
        ORDER BY COALESCE(rp.visibility_score, 1.0) DESC, p.updated_at DESC, p.user_id
        LIMIT $2 OFFSET $3
    `

	err := r.db.SelectContext(ctx, &profiles, query, viewerID, limit, offset)
	return profiles, err
}
