// internal/jobs/handlers.go

package jobs

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/notification"
	"github.com/emberlyhq/emberly-backend/internal/nudge"
)

// Handler exposes the batch jobs over HTTP so an external scheduler (cron,
// Cloud Scheduler) can trigger them alongside the in-process schedulers.
type Handler struct {
	nudgeService        nudge.Service
	ghostingService     ghosting.Service
	notificationService notification.Service
}

func NewHandler(nudgeService nudge.Service, ghostingService ghosting.Service, notificationService notification.Service) *Handler {
	return &Handler{
		nudgeService:        nudgeService,
		ghostingService:     ghostingService,
		notificationService: notificationService,
	}
}

// Router builds the /jobs sub-router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(corsPreflight)

	r.Post("/send-conversation-nudges", h.SendConversationNudges)
	r.Post("/send-ghosting-reminder", h.SendGhostingReminder)
	r.Post("/update-ghosting-stats", h.UpdateGhostingStats)
	r.Post("/cleanup-notifications", h.CleanupNotifications)

	return r
}

func (h *Handler) SendConversationNudges(w http.ResponseWriter, r *http.Request) {
	sent, err := h.nudgeService.SendConversationNudges(r.Context())
	if err != nil {
		respondJobError(w, err)
		return
	}

	respondJobSuccess(w, map[string]interface{}{
		"nudges_sent": sent,
	})
}

func (h *Handler) SendGhostingReminder(w http.ResponseWriter, r *http.Request) {
	sent, err := h.nudgeService.SendGhostingReminders(r.Context())
	if err != nil {
		respondJobError(w, err)
		return
	}

	respondJobSuccess(w, map[string]interface{}{
		"reminders_sent": sent,
	})
}

// UpdateGhostingStats runs the detector pass and then refreshes trust
// signals for recently touched patterns.
func (h *Handler) UpdateGhostingStats(w http.ResponseWriter, r *http.Request) {
	recorded, err := h.ghostingService.DetectAndRecordGhosting(r.Context())
	if err != nil {
		respondJobError(w, err)
		return
	}

	updated, err := h.ghostingService.RecalculateRecent(r.Context())
	if err != nil {
		// The detector pass already committed; report it along with the error.
		log.Printf("Trust signal refresh failed after recording %d ghosting event(s): %v", recorded, err)
		respondJobError(w, err)
		return
	}

	respondJobSuccess(w, map[string]interface{}{
		"ghosted_recorded": recorded,
		"signals_updated":  updated,
	})
}

func (h *Handler) CleanupNotifications(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.notificationService.CleanupOld(r.Context())
	if err != nil {
		respondJobError(w, err)
		return
	}

	respondJobSuccess(w, map[string]interface{}{
		"notifications_deleted": deleted,
	})
}

func respondJobSuccess(w http.ResponseWriter, counts map[string]interface{}) {
	payload := map[string]interface{}{
		"success":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range counts {
		payload[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func respondJobError(w http.ResponseWriter, err error) {
	log.Printf("Job failed: %v", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func corsPreflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
