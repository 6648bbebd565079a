package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"studyroom/internal/security"
)

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

// MakeHandler returns the /ws endpoint: the client authenticates with a
// token query parameter, is registered with the hub, and receives engine
// events until it disconnects. Clients send nothing meaningful; the read
// loop exists to detect closure.
func MakeHandler(hub *Hub, tokens *security.TokenService, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: makeCheckOrigin(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := tokens.ParseSubject(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Websocket upgrade failed", "error", err)
			return
		}
		hub.Register(conn)
		logger.Info("Websocket client connected", "user_id", userID)

		defer func() {
			hub.Unregister(conn)
			conn.Close()
			logger.Info("Websocket client disconnected", "user_id", userID)
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
