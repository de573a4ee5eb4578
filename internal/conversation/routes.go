package conversation

import (
	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/conversations").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.Start).Methods("POST")
	api.HandleFunc("", handler.List).Methods("GET")
	api.HandleFunc("/{id}", handler.Get).Methods("GET")
	api.HandleFunc("/{id}/messages", handler.SendMessage).Methods("POST")
	api.HandleFunc("/{id}/messages", handler.Messages).Methods("GET")
	api.HandleFunc("/{id}/close", handler.Close).Methods("POST")
	api.HandleFunc("/{id}/archive", handler.Archive).Methods("POST")
}
