package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlyhq/emberly-backend/internal/ghosting"
	"github.com/emberlyhq/emberly-backend/internal/notification"
	"github.com/emberlyhq/emberly-backend/internal/nudge"
)

type fakeNudgeService struct {
	nudge.Service
	nudgesSent    int
	remindersSent int
	err           error
}

func (f *fakeNudgeService) SendConversationNudges(ctx context.Context) (int, error) {
	return f.nudgesSent, f.err
}

func (f *fakeNudgeService) SendGhostingReminders(ctx context.Context) (int, error) {
	return f.remindersSent, f.err
}

type fakeGhostingService struct {
	ghosting.Service
	recorded  int
	refreshed int
	err       error
}

func (f *fakeGhostingService) DetectAndRecordGhosting(ctx context.Context) (int, error) {
	return f.recorded, f.err
}

func (f *fakeGhostingService) RecalculateRecent(ctx context.Context) (int, error) {
	return f.refreshed, f.err
}

type fakeNotificationService struct {
	notification.Service
	deleted int64
	err     error
}

func (f *fakeNotificationService) CleanupOld(ctx context.Context) (int64, error) {
	return f.deleted, f.err
}

func postJob(t *testing.T, handler *Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestSendConversationNudgesJob(t *testing.T) {
	t.Run("success payload", func(t *testing.T) {
		handler := NewHandler(&fakeNudgeService{nudgesSent: 4}, &fakeGhostingService{}, &fakeNotificationService{})

		rec, body := postJob(t, handler, "/send-conversation-nudges")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(4), body["nudges_sent"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("failure returns 500 with error", func(t *testing.T) {
		handler := NewHandler(&fakeNudgeService{err: errors.New("db down")}, &fakeGhostingService{}, &fakeNotificationService{})

		rec, body := postJob(t, handler, "/send-conversation-nudges")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "db down", body["error"])
	})
}

func TestSendGhostingReminderJob(t *testing.T) {
	handler := NewHandler(&fakeNudgeService{remindersSent: 2}, &fakeGhostingService{}, &fakeNotificationService{})

	rec, body := postJob(t, handler, "/send-ghosting-reminder")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["reminders_sent"])
}

func TestUpdateGhostingStatsJob(t *testing.T) {
	t.Run("reports both counts", func(t *testing.T) {
		handler := NewHandler(&fakeNudgeService{}, &fakeGhostingService{recorded: 3, refreshed: 5}, &fakeNotificationService{})

		rec, body := postJob(t, handler, "/update-ghosting-stats")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(3), body["ghosted_recorded"])
		assert.Equal(t, float64(5), body["signals_updated"])
	})

	t.Run("detector failure returns 500", func(t *testing.T) {
		handler := NewHandler(&fakeNudgeService{}, &fakeGhostingService{err: errors.New("query timeout")}, &fakeNotificationService{})

		rec, body := postJob(t, handler, "/update-ghosting-stats")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, body["success"])
	})
}

func TestCleanupNotificationsJob(t *testing.T) {
	handler := NewHandler(&fakeNudgeService{}, &fakeGhostingService{}, &fakeNotificationService{deleted: 12})

	rec, body := postJob(t, handler, "/cleanup-notifications")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(12), body["notifications_deleted"])
}

func TestJobCORSPreflight(t *testing.T) {
	handler := NewHandler(&fakeNudgeService{}, &fakeGhostingService{}, &fakeNotificationService{})

	req := httptest.NewRequest(http.MethodOptions, "/send-conversation-nudges", nil)
	rec := httptest.NewRecorder()
	handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
