// internal/notification/models.go

package notification

import "time"

// Notification types
const (
	TypeNudge            = "nudge"
	TypeGhostingReminder = "ghosting_reminder"
	TypeMatch            = "match"
	TypeSystem           = "system"
)

type Notification struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	Type          string     `db:"type" json:"type"`
	Title         string     `db:"title" json:"title"`
	Message       string     `db:"message" json:"message"`
	RelatedUserID *int64     `db:"related_user_id" json:"related_user_id,omitempty"`
	IsRead        bool       `db:"is_read" json:"is_read"`
	ReadAt        *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	Limit         int             `json:"limit"`
	Offset        int             `json:"offset"`
}

// Recipient holds the contact details needed for out-of-app delivery.
type Recipient struct {
	UserID      int64   `db:"user_id"`
	Email       string  `db:"email"`
	Phone       *string `db:"phone"`
	DisplayName string  `db:"display_name"`
}

type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Plain   string
	HTML    string
}

type SMSMessage struct {
	To   string
	Body string
}
