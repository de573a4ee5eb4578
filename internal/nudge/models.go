// internal/nudge/models.go

package nudge

import "time"

// NudgeCandidate is a conversation that has gone quiet long enough to warrant
// a gentle prompt, but not so long that the detector would claim it.
type NudgeCandidate struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	UserToNudge    int64     `db:"user_to_nudge" json:"user_to_nudge"`
	OtherUserID    int64     `db:"other_user_id" json:"other_user_id"`
	OtherUserName  string    `db:"other_user_name" json:"other_user_name"`
	LastMessageAt  time.Time `db:"last_message_at" json:"last_message_at"`
}

// DaysInactive reports whole days since the last message, for copy like
// "it's been 3 days".
func (c *NudgeCandidate) DaysInactive(now time.Time) int {
	return int(now.Sub(c.LastMessageAt).Hours() / 24)
}
