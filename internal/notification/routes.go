package notification

import (
	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.ListNotifications).Methods("GET")
	api.HandleFunc("/{id}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/read-all", handler.MarkAllRead).Methods("POST")

	ws := router.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware.Authenticate)
	ws.HandleFunc("/notifications", handler.StreamNotifications).Methods("GET")
}
