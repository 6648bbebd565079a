package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyroom/internal/clock"
	"studyroom/internal/config"
	"studyroom/internal/httpserver"
	"studyroom/internal/premium"
	"studyroom/internal/security"
	"studyroom/internal/service"
	"studyroom/internal/store/memory"
	"studyroom/internal/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppName:            "StudyRoom API",
		JWTSecret:          "test-secret",
		AccessTokenMinutes: 60,
		RoomCreationLimit:  5,
		FriendLimit:        10,
		CORSOrigins:        []string{"http://localhost:3000"},
	}

	logger := slogt.New(t)
	st := memory.New()
	entitlements := premium.NewManager(false)
	hub := ws.NewHub(logger)

	engine := service.NewEngine(st, clock.System{}, logger, hub, entitlements, service.Limits{
		RoomCreationLimit: cfg.RoomCreationLimit,
		FriendLimit:       cfg.FriendLimit,
	})
	require.NoError(t, engine.Load(context.Background()))

	tokens := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	hasher := security.NewPassphraseHasher(4) // low cost for tests

	srv := httptest.NewServer(httpserver.NewRouter(cfg, engine, hub, st, tokens, hasher, entitlements, logger))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/auth/register", "", map[string]string{
		"name":       "たろう",
		"passphrase": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[map[string]string](t, resp)["token"]
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)
	require.NotEmpty(t, token)

	t.Run("RegisterTwiceConflicts", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/auth/register", "", map[string]string{
			"name":       "じろう",
			"passphrase": "other",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("LoginWrongPassphrase", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/auth/login", "", map[string]string{"passphrase": "wrong"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("LoginSuccess", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/auth/login", "", map[string]string{"passphrase": "correct horse"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, decode[map[string]string](t, resp)["token"])
	})

	t.Run("MeRequiresToken", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/auth/me", "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("MeReturnsProfile", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/auth/me", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		me := decode[map[string]any](t, resp)
		assert.Equal(t, "たろう", me["name"])
		// A successful login marks the profile online.
		assert.Equal(t, true, me["is_online"])
	})
}

func TestRoomEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	var roomID string
	t.Run("Create", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/rooms/", token, map[string]any{
			"name":             "輪読会",
			"tags":             []string{"勉強"},
			"max_participants": 3,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		room := decode[map[string]any](t, resp)
		roomID, _ = room["id"].(string)
		require.NotEmpty(t, roomID)
	})

	t.Run("List", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/rooms/", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		rooms := decode[[]map[string]any](t, resp)
		// Three seeded rooms plus the one just created.
		assert.Len(t, rooms, 4)
	})

	t.Run("Active", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/rooms/active", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		room := decode[map[string]any](t, resp)
		assert.Equal(t, roomID, room["id"])
	})

	t.Run("Messages", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/rooms/"+roomID+"/messages", token, map[string]string{
			"message": "おはよう",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = getJSON(t, srv.URL+"/api/rooms/"+roomID+"/messages", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		log := decode[[]map[string]any](t, resp)
		require.NotEmpty(t, log)
		assert.Equal(t, "おはよう", log[len(log)-1]["message"])
	})

	t.Run("Close", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/api/rooms/"+roomID+"/close", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()

		// Closed rooms reject joins.
		resp = postJSON(t, srv.URL+"/api/rooms/"+roomID+"/join", token, map[string]any{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("QuotaMapsToPaymentRequired", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			resp := postJSON(t, srv.URL+"/api/rooms/", token, map[string]any{
				"name": fmt.Sprintf("部屋%d", i),
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			resp.Body.Close()
		}
		resp := postJSON(t, srv.URL+"/api/rooms/", token, map[string]any{"name": "超過"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})
}

func TestStatsEndpointValidation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	resp := getJSON(t, srv.URL+"/api/stats/effort?period=decade", token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ok := getJSON(t, srv.URL+"/api/stats/effort?period=today&tags=勉強", token)
	defer ok.Body.Close()
	assert.Equal(t, http.StatusOK, ok.StatusCode)
}

func TestPremiumEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv)

	resp := getJSON(t, srv.URL+"/api/premium/", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[map[string]any](t, resp)
	assert.Equal(t, false, status["is_premium"])

	set := postJSON(t, srv.URL+"/api/premium/", token, map[string]bool{"is_premium": true})
	require.Equal(t, http.StatusOK, set.StatusCode)
	set.Body.Close()

	resp = getJSON(t, srv.URL+"/api/premium/", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status = decode[map[string]any](t, resp)
	assert.Equal(t, true, status["is_premium"])
}
