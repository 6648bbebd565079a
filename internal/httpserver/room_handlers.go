package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyroom/internal/service"
)

type roomCreateRequest struct {
	Name            string   `json:"name"`
	Tags            []string `json:"tags"`
	IsPrivate       bool     `json:"is_private"`
	IsInviteOnly    bool     `json:"is_invite_only"`
	Password        *string  `json:"password"`
	MaxParticipants int      `json:"max_participants"`
}

func handleCreateRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req roomCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if req.MaxParticipants == 0 {
			req.MaxParticipants = 10
		}

		room, err := engine.CreateRoom(r.Context(), service.CreateRoomInput{
			Name:            req.Name,
			Tags:            req.Tags,
			IsPrivate:       req.IsPrivate,
			IsInviteOnly:    req.IsInviteOnly,
			Password:        req.Password,
			MaxParticipants: req.MaxParticipants,
		}, actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

func handleListRooms(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("open") == "true" {
			writeJSON(w, http.StatusOK, engine.OpenRooms())
			return
		}
		writeJSON(w, http.StatusOK, engine.Rooms())
	}
}

func handleGetRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := roomID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
			return
		}
		room, err := engine.Room(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleActiveRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		room, ok := engine.ActiveRoom(actor.ID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not in a room"})
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

type roomJoinRequest struct {
	Password *string `json:"password"`
}

func handleJoinRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := roomID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
			return
		}
		var req roomJoinRequest
		if r.Body != nil {
			// body is optional for public rooms
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		if err := engine.JoinRoom(r.Context(), id, actor, req.Password); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
	}
}

func handleLeaveRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		if err := engine.LeaveCurrentRoom(r.Context(), actor); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "left"})
	}
}

func handleCloseRoom(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := roomID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
			return
		}
		if err := engine.CloseRoom(r.Context(), id, actor); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}

type roomSettingsRequest struct {
	IsPrivate       bool    `json:"is_private"`
	IsInviteOnly    bool    `json:"is_invite_only"`
	Password        *string `json:"password"`
	MaxParticipants int     `json:"max_participants"`
}

func handleUpdateRoomSettings(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := roomID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
			return
		}
		var req roomSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		err = engine.UpdateRoomSettings(r.Context(), id, service.RoomSettingsInput{
			IsPrivate:       req.IsPrivate,
			IsInviteOnly:    req.IsInviteOnly,
			Password:        req.Password,
			MaxParticipants: req.MaxParticipants,
		}, actor)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func handleRemoveUser(engine *service.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := Actor(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := roomID(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
			return
		}
		targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		if err := engine.RemoveUserFromRoom(r.Context(), id, targetID, actor); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func roomID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "roomID"))
}
