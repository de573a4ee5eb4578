package conversation

import "time"

// Status is the explicit conversation lifecycle
type Status string

const (
	StatusActive    Status = "active"
	StatusNudgeSent Status = "nudge_sent"
	StatusGhosted   Status = "ghosted"
	StatusClosed    Status = "closed"
	StatusArchived  Status = "archived"
)

// CountsAgainstLimit reports whether a conversation in this status still
// holds one of the user's slots. A nudged conversation is recoverable, so it
// keeps counting; that pressure is the point of the nudge.
func (s Status) CountsAgainstLimit() bool {
	return s == StatusActive || s == StatusNudgeSent
}

// Conversation pairs two users. user1_id < user2_id always.
type Conversation struct {
	ID             int64      `json:"id" db:"id"`
	User1ID        int64      `json:"user1_id" db:"user1_id"`
	User2ID        int64      `json:"user2_id" db:"user2_id"`
	Status         Status     `json:"status" db:"status"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty" db:"reminder_sent_at"`
	CloseReason    *string    `json:"close_reason,omitempty" db:"close_reason"`
	ClosedBy       *int64     `json:"closed_by,omitempty" db:"closed_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// Joined fields
	OtherUser *UserInfo `json:"other_user,omitempty"`
}

// Message is a single conversation message
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversation_id" db:"conversation_id"`
	SenderID       int64     `json:"sender_id" db:"sender_id"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	Sender *UserInfo `json:"sender,omitempty"`
}

// UserInfo is the slim user projection joined into responses
type UserInfo struct {
	ID          int64   `json:"id" db:"id"`
	DisplayName string  `json:"display_name" db:"display_name"`
	Bio         *string `json:"bio,omitempty" db:"bio"`
}

// Participant reports which side of the pair a user is on
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant reports whether the user belongs to the conversation
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// StartConversationRequest is the payload for starting a conversation
type StartConversationRequest struct {
	OtherUserID int64   `json:"other_user_id" validate:"required,gt=0"`
	Message     *string `json:"message,omitempty"`
}

// SendMessageRequest is the payload for sending a message
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CloseConversationRequest is the payload for a graceful close
type CloseConversationRequest struct {
	Reason string `json:"reason" validate:"required,oneof=not_a_match met_someone taking_a_break other"`
}
