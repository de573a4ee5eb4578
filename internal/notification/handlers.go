package notification

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/emberlyhq/emberly-backend/internal/auth"
	"github.com/emberlyhq/emberly-backend/internal/common/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients are cross-origin in development; auth middleware
		// already gated the request.
		return true
	},
}

type Handler struct {
	service Service
	hub     *Hub
}

func NewHandler(service Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	resp, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	vars := mux.Vars(r)
	notificationID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, notificationID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to mark notification as read")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

// StreamNotifications upgrades to a websocket and attaches the connection to
// the hub for live delivery.
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket for user %d: %v", userID, err)
		return
	}

	h.hub.ServeConnection(conn, userID)
}
