package policy

import (
	"net/http"

	"github.com/emberlyhq/emberly-backend/internal/auth"
	"github.com/emberlyhq/emberly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetConversationCount returns the caller's active-conversation count together
// with the ceiling, so limit banners render without a second round trip.
func (h *Handler) GetConversationCount(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	status, err := h.service.LimitStatus(r.Context(), userID)
	if err != nil {
		// Callers treat this as fail-open for browsing; surface the error
		// honestly and let the client default to permissive.
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get conversation count")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

func (h *Handler) CanStartConversation(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	status, err := h.service.LimitStatus(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to check conversation limit")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

// CheckPause gates the pause-mode transition. Clients treat any failure here
// as fail-closed: the pause action stays disabled until a successful check.
func (h *Handler) CheckPause(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	check, err := h.service.CanPauseDating(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify pause eligibility")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, check)
}
