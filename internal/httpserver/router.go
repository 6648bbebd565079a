package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"studyroom/internal/config"
	"studyroom/internal/domain"
	"studyroom/internal/premium"
	"studyroom/internal/security"
	"studyroom/internal/service"
	"studyroom/internal/store"
	"studyroom/internal/ws"
)

// NewRouter constructs the main HTTP router and wires routes and middleware.
// Handlers stay thin; all invariants live in the engine.
func NewRouter(
	cfg *config.Config,
	engine *service.Engine,
	hub *ws.Hub,
	st store.Store,
	tokens *security.TokenService,
	hasher *security.PassphraseHasher,
	entitlements *premium.Manager,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(engine, st, tokens, hasher))
			r.Post("/login", handleLogin(engine, st, tokens, hasher))
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens, engine))

			r.Get("/auth/me", handleMe(engine))
			r.Put("/profile", handleUpdateProfile(engine))

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", handleListRooms(engine))
				r.Post("/", handleCreateRoom(engine))
				r.Get("/active", handleActiveRoom(engine))
				r.Post("/leave", handleLeaveRoom(engine))
				r.Get("/{roomID}", handleGetRoom(engine))
				r.Post("/{roomID}/join", handleJoinRoom(engine))
				r.Post("/{roomID}/close", handleCloseRoom(engine))
				r.Put("/{roomID}/settings", handleUpdateRoomSettings(engine))
				r.Delete("/{roomID}/participants/{userID}", handleRemoveUser(engine))
				r.Get("/{roomID}/messages", handleListMessages(engine))
				r.Post("/{roomID}/messages", handleSendMessage(engine))
				r.Delete("/{roomID}/messages", handleClearMessages(engine))
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", handleListFriends(engine))
				r.Delete("/{friendID}", handleRemoveFriend(engine))
				r.Post("/requests", handleSendFriendRequest(engine))
				r.Get("/requests", handlePendingRequests(engine))
				r.Post("/requests/{requestID}/accept", handleAcceptRequest(engine))
				r.Post("/requests/{requestID}/reject", handleRejectRequest(engine))
				r.Post("/groups", handleCreateGroup(engine))
				r.Get("/groups", handleListGroups(engine))
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/effort", handleEffortStats(engine))
				r.Get("/tags", handleTagStats(engine))
				r.Get("/records", handleListRecords(engine))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", handleListNotifications(engine))
				r.Post("/{notificationID}/read", handleMarkNotificationRead(engine))
			})

			r.Route("/premium", func(r chi.Router) {
				r.Get("/", handlePremiumStatus(engine, entitlements))
				r.Post("/", handleSetPremium(entitlements))
			})
		})
	})

	r.Get("/ws", ws.MakeHandler(hub, tokens, cfg.CORSOrigins, logger))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the engine's error taxonomy to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateRequest):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
