// internal/policy/constants.go
// Single source of truth for the conversation policy.
// Config defaults read from here so the numbers exist in exactly one place.

package policy

import "time"

const (
	// MaxActiveConversations is the ceiling on simultaneously active
	// conversations per user. Enforced at conversation start, not
	// retroactively on existing conversations.
	MaxActiveConversations = 3

	// DefaultRecencyWindow is how long a conversation keeps counting as
	// active after its last activity.
	DefaultRecencyWindow = 14 * 24 * time.Hour

	// DefaultNudgeAfter is the silence duration after which a conversation
	// becomes eligible for a soft nudge.
	DefaultNudgeAfter = 48 * time.Hour

	// DefaultGhostingAfter is the silence duration after which the
	// conversation is considered lapsed and the silent party is recorded
	// as having ghosted. Must be strictly greater than DefaultNudgeAfter.
	DefaultGhostingAfter = 120 * time.Hour

	// DefaultNudgeCooldown is the minimum gap between two "nudge"
	// notifications for the same (user, counterpart) pair.
	DefaultNudgeCooldown = 72 * time.Hour

	// DefaultReminderCooldown is the minimum gap between two escalated
	// ghosting reminders for the same conversation.
	DefaultReminderCooldown = 24 * time.Hour

	// DefaultDetectorBatchSize bounds how many lapsed conversations a
	// single detector run processes.
	DefaultDetectorBatchSize = 100

	// DefaultTrustBatchSize bounds how many response patterns a single
	// trust-signal recalculation run touches.
	DefaultTrustBatchSize = 50
)
