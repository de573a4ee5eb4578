// internal/profile/models.go

package profile

import (
	"time"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
)

type Profile struct {
	UserID      int64      `db:"user_id" json:"user_id"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Bio         *string    `db:"bio" json:"bio,omitempty"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone       *string    `db:"phone" json:"-"`
	IsVerified  bool       `db:"is_verified" json:"is_verified"`
	IsPaused    bool       `db:"is_paused" json:"is_paused"`
	PauseReason *string    `db:"pause_reason" json:"pause_reason,omitempty"`
	PausedAt    *time.Time `db:"paused_at" json:"paused_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DiscoverProfile is a profile card in the discovery feed. The visibility
// score shapes ordering but is never exposed to clients.
type DiscoverProfile struct {
	UserID          int64   `db:"user_id" json:"user_id"`
	DisplayName     string  `db:"display_name" json:"display_name"`
	Bio             *string `db:"bio" json:"bio,omitempty"`
	IsVerified      bool    `db:"is_verified" json:"is_verified"`
	VisibilityScore float64 `db:"visibility_score" json:"-"`
}

// PublicProfile is the view other users see: the profile plus the trust
// badges earned from conversation behavior.
type PublicProfile struct {
	Profile
	TrustSignals *ghosting.TrustSignals `json:"trust_signals,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

type PauseRequest struct {
	Reason string `json:"reason" validate:"required,oneof=need_a_break focusing_on_someone life_happened other"`
}

type PauseResponse struct {
	IsPaused bool       `json:"is_paused"`
	PausedAt *time.Time `json:"paused_at,omitempty"`
}
