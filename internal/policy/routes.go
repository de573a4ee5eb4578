package policy

import (
	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/policy").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/conversations/count", handler.GetConversationCount).Methods("GET")
	api.HandleFunc("/conversations/can-start", handler.CanStartConversation).Methods("GET")
	api.HandleFunc("/pause/check", handler.CheckPause).Methods("GET")
}
