package profile

import (
	"encoding/json"
	"errors"
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

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	profile, err := h.service.GetPublicProfile(r.Context(), userID)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// PauseDating gates pause mode behind the open-conversation check. A blocked
// pause returns 409 with the active count so the client can walk the user
// through closing conversations first.
func (h *Handler) PauseDating(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.PauseDating(r.Context(), userID, req.Reason)
	if err != nil {
		var blocked *PauseBlockedError
		if errors.As(err, &blocked) {
			utils.RespondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"error":                     "active_conversations",
				"active_conversation_count": blocked.ActiveConversationCount,
			})
			return
		}
		respondProfileError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) ResumeDating(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	resp, err := h.service.ResumeDating(r.Context(), userID)
	if err != nil {
		respondProfileError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) DiscoverProfiles(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	profiles, err := h.service.Discover(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load discovery feed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

func respondProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrProfileNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
}
