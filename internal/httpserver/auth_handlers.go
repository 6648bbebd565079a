package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"studyroom/internal/security"
	"studyroom/internal/service"
	"studyroom/internal/store"
)

// credentials is the persisted login record for the device profile, stored
// separately from the User entity so the hash never leaks into room
// participant snapshots.
type credentials struct {
	UserID           uuid.UUID `json:"user_id"`
	HashedPassphrase string    `json:"hashed_passphrase"`
}

type registerRequest struct {
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// handleRegister claims the device profile: names the current user, stores
// the bcrypt-hashed passphrase and issues a token. Registering twice is
// rejected.
func handleRegister(engine *service.Engine, st store.Store, tokens *security.TokenService, hasher *security.PassphraseHasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if req.Name == "" || req.Passphrase == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and passphrase are required"})
			return
		}

		if b, err := st.Get(r.Context(), store.KeyCredentials); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store unavailable"})
			return
		} else if b != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "profile already registered"})
			return
		}

		user, err := engine.UpdateProfile(r.Context(), service.ProfileUpdateInput{Name: req.Name})
		if err != nil {
			writeError(w, err)
			return
		}

		hashed, err := hasher.Hash(req.Passphrase)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not hash passphrase"})
			return
		}
		creds, _ := json.Marshal(credentials{UserID: user.ID, HashedPassphrase: hashed})
		if err := st.Set(r.Context(), store.KeyCredentials, creds); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not persist credentials"})
			return
		}

		token, err := tokens.CreateForUser(user.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
			return
		}
		writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
	}
}

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

func handleLogin(engine *service.Engine, st store.Store, tokens *security.TokenService, hasher *security.PassphraseHasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		b, err := st.Get(r.Context(), store.KeyCredentials)
		if err != nil || b == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "profile not registered"})
			return
		}
		var creds credentials
		if err := json.Unmarshal(b, &creds); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "profile not registered"})
			return
		}
		if err := hasher.Verify(req.Passphrase, creds.HashedPassphrase); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid passphrase"})
			return
		}

		engine.SetOnline(r.Context(), true)

		token, err := tokens.CreateForUser(creds.UserID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

func handleMe(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, actor)
	}
}

type profileUpdateRequest struct {
	Name         string `json:"name"`
	Bio          string `json:"bio"`
	Goal         string `json:"goal"`
	ProfileImage string `json:"profile_image"`
	Avatar       []byte `json:"avatar,omitempty"`
}

func handleUpdateProfile(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		user, err := engine.UpdateProfile(r.Context(), service.ProfileUpdateInput{
			Name:         req.Name,
			Bio:          req.Bio,
			Goal:         req.Goal,
			ProfileImage: req.ProfileImage,
			Avatar:       req.Avatar,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
