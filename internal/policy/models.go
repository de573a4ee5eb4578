package policy

// PauseCheck is the result of the pause-mode gate. CanPause is true only
// when the user has no active conversations left to wind down.
type PauseCheck struct {
	CanPause                bool `json:"can_pause"`
	ActiveConversationCount int  `json:"active_conversation_count"`
}

// LimitStatus is what the client renders in limit banners and overlays.
// MaxConversations rides along so the UI never hardcodes the ceiling.
type LimitStatus struct {
	ActiveCount      int  `json:"active_count"`
	MaxConversations int  `json:"max_conversations"`
	RemainingSlots   int  `json:"remaining_slots"`
	CanStartNew      bool `json:"can_start_new"`
}
