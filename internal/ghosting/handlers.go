package ghosting

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
	"github.com/emberlyhq/emberly-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetTrustSignals returns another user's badge flags. Only the boolean
// signals are exposed; raw counts and scores stay server-side.
func (h *Handler) GetTrustSignals(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	signals, err := h.service.GetTrustSignals(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get trust signals")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, signals)
}

// GetMyResponsePattern lets a user see their own standing, including the
// visibility score that shapes their discovery ranking.
func (h *Handler) GetMyResponsePattern(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	pattern, err := h.service.GetResponsePattern(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get response pattern")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, pattern)
}
