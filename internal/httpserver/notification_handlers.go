package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyroom/internal/premium"
	"studyroom/internal/service"
)

func handleListNotifications(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, engine.Notifications(actor.ID))
	}
}

func handleMarkNotificationRead(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "notificationID"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification id"})
			return
		}
		if err := engine.MarkNotificationRead(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
	}
}

type premiumStatusResponse struct {
	IsPremium          bool `json:"is_premium"`
	MonthlyRoomCount   int  `json:"monthly_room_count"`
	CurrentFriendCount int  `json:"current_friend_count"`
}

func handlePremiumStatus(engine *service.Engine, entitlements *premium.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, premiumStatusResponse{
			IsPremium:          entitlements.IsPremium(),
			MonthlyRoomCount:   engine.MonthlyRoomCount(),
			CurrentFriendCount: engine.CurrentFriendCount(),
		})
	}
}

type premiumUpdateRequest struct {
	IsPremium bool `json:"is_premium"`
}

// handleSetPremium stands in for the entitlement verification callback; the
// real purchase flow lives outside this service.
func handleSetPremium(entitlements *premium.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req premiumUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		entitlements.SetPremium(req.IsPremium)
		writeJSON(w, http.StatusOK, map[string]bool{"is_premium": req.IsPremium})
	}
}
