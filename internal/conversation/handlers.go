package conversation

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

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Start(r.Context(), userID, &req)
	if err != nil {
		var limitErr *LimitError
		switch {
		case errors.As(err, &limitErr):
			// The overlay payload: active_count, max_conversations,
			// remaining_slots, can_start_new.
			utils.RespondWithJSON(w, http.StatusConflict, map[string]interface{}{
				"error": "conversation_limit_reached",
				"limit": limitErr.Status,
			})
		case errors.Is(err, ErrCannotMessageSelf), errors.Is(err, ErrConversationOpen):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start conversation")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, conv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	limit, offset := paginationParams(r)

	conversations, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, conversations)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	convID, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	conv, err := h.service.Get(r.Context(), userID, convID)
	if err != nil {
		respondConversationError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, conv)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	convID, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.SendMessage(r.Context(), userID, convID, &req)
	if err != nil {
		respondConversationError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	convID, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	limit, offset := paginationParams(r)

	messages, err := h.service.Messages(r.Context(), userID, convID, limit, offset)
	if err != nil {
		respondConversationError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	convID, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	var req CloseConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Close(r.Context(), userID, convID, req.Reason); err != nil {
		respondConversationError(w, err)
		return
	}

	utils.MessageResponse(w, "Conversation closed", http.StatusOK)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	convID, err := pathID(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	if err := h.service.Archive(r.Context(), userID, convID); err != nil {
		respondConversationError(w, err)
		return
	}

	utils.MessageResponse(w, "Conversation archived", http.StatusOK)
}

func respondConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Request failed")
	}
}

func pathID(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["id"], 10, 64)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
