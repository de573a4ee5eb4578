package profile

import (
	"github.com/gorilla/mux"

	"github.com/emberlyhq/emberly-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/pause", handler.PauseDating).Methods("POST")
	api.HandleFunc("/profile/resume", handler.ResumeDating).Methods("POST")
	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
	api.HandleFunc("/discover", handler.DiscoverProfiles).Methods("GET")
}
