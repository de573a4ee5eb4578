package ghosting

import "time"

// ResponsePattern is the per-user behavioral ledger. Created lazily on first
// detection, mutated only by the detector and the closure credit path, never
// deleted.
type ResponsePattern struct {
	UserID           int64     `json:"user_id" db:"user_id"`
	GhostedCount     int       `json:"ghosted_count" db:"ghosted_count"`
	GracefulClosures int       `json:"graceful_closures" db:"graceful_closures"`
	VisibilityScore  float64   `json:"visibility_score" db:"visibility_score"`
	LastCalculatedAt time.Time `json:"last_calculated_at" db:"last_calculated_at"`
}

// TrustSignals are the user-facing badges derived from behavioral history.
// Read-only to clients.
type TrustSignals struct {
	UserID               int64     `json:"user_id" db:"user_id"`
	ShowsUpConsistently  bool      `json:"shows_up_consistently" db:"shows_up_consistently"`
	CommunicatesWithCare bool      `json:"communicates_with_care" db:"communicates_with_care"`
	CommunityTrusted     bool      `json:"community_trusted" db:"community_trusted"`
	VerifiedIdentity     bool      `json:"verified_identity" db:"verified_identity"`
	ThoughtfulCloser     bool      `json:"thoughtful_closer" db:"thoughtful_closer"`
	CalculatedAt         time.Time `json:"calculated_at" db:"calculated_at"`
}

// LapsedConversation is a detector candidate: a conversation whose last
// message has gone unanswered past the ghosting threshold.
type LapsedConversation struct {
	ConversationID int64     `db:"conversation_id"`
	SilentUserID   int64     `db:"silent_user_id"`
	LastSenderID   int64     `db:"last_sender_id"`
	LastMessageAt  time.Time `db:"last_message_at"`
}

// AccountFacts are the identity inputs to trust-signal derivation
type AccountFacts struct {
	IsVerified bool      `db:"is_verified"`
	CreatedAt  time.Time `db:"created_at"`
}
