package ghosting

import (
	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/users/{id}/trust-signals", handler.GetTrustSignals).Methods("GET")
	api.HandleFunc("/me/response-pattern", handler.GetMyResponsePattern).Methods("GET")
}
