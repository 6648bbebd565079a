package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studyroom/internal/domain"
	"studyroom/internal/store"
)

type CreateRoomInput struct {
	Name            string
	Tags            []string
	IsPrivate       bool
	IsInviteOnly    bool
	Password        *string
	MaxParticipants int
}

type RoomSettingsInput struct {
	IsPrivate       bool
	IsInviteOnly    bool
	Password        *string
	MaxParticipants int
}

// CreateRoom creates a room with the actor as creator and first participant,
// opens the actor's effort session and announces the creation in the room
// chat. Non-exempt actors consume one unit of the monthly creation quota.
func (e *Engine) CreateRoom(ctx context.Context, in CreateRoomInput, actor domain.User) (domain.Room, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if in.Name == "" {
		return domain.Room{}, fmt.Errorf("room name is required: %w", domain.ErrInvalidInput)
	}
	if in.MaxParticipants < 1 {
		return domain.Room{}, fmt.Errorf("max participants must be at least 1: %w", domain.ErrInvalidInput)
	}

	now := e.clock.Now()
	if !e.exempt() && !e.limiter.CanCreateRoom(now) {
		// The quota check may have reset the counter on a month boundary;
		// keep that visible even when the creation is refused.
		e.saveJSON(ctx, store.KeyFeatureLimits, e.limiter.state)
		return domain.Room{}, domain.ErrQuotaExceeded
	}

	// A user occupies at most one room at a time.
	e.leaveCurrentLocked(actor, now)

	room := &domain.Room{
		ID:              uuid.New(),
		Name:            in.Name,
		Tags:            append([]string(nil), in.Tags...),
		CreatedAt:       now,
		CreatedBy:       actor.ID,
		Participants:    []domain.User{snapshot(actor)},
		IsPrivate:       in.IsPrivate,
		IsInviteOnly:    in.IsInviteOnly,
		Password:        in.Password,
		MaxParticipants: in.MaxParticipants,
	}
	e.rooms = append(e.rooms, room)
	if !e.exempt() {
		e.limiter.IncrementRoomCount()
	}

	e.active[actor.ID] = room.ID
	e.openRecordLocked(actor.ID, room, now)
	e.systemMessageLocked(room.ID, fmt.Sprintf("%sさんが部屋を作成しました", actor.Name), now)

	e.persist(ctx)
	return cloneRoom(room), nil
}

// JoinRoom validates access and moves the actor into the room, implicitly
// leaving (and closing the session of) any room the actor currently
// occupies. Joining a room the actor already occupies is a no-op.
func (e *Engine) JoinRoom(ctx context.Context, roomID uuid.UUID, actor domain.User, password *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.findRoom(roomID)
	if room == nil {
		return domain.ErrNotFound
	}
	if room.HasParticipant(actor.ID) {
		// Already a member, possibly from before a restart; restore the
		// occupancy pointer instead of joining twice.
		e.active[actor.ID] = room.ID
		return nil
	}
	if !room.CanJoin(actor.ID, password) {
		return domain.ErrAccessDenied
	}

	now := e.clock.Now()
	e.leaveCurrentLocked(actor, now)

	room.Participants = append(room.Participants, snapshot(actor))
	e.active[actor.ID] = room.ID
	e.openRecordLocked(actor.ID, room, now)
	e.systemMessageLocked(room.ID, fmt.Sprintf("%sさんが部屋に参加しました", actor.Name), now)

	e.persist(ctx)
	return nil
}

// LeaveCurrentRoom ends the actor's occupancy and session. It is a no-op,
// not an error, when the actor occupies no room.
func (e *Engine) LeaveCurrentRoom(ctx context.Context, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.leaveCurrentLocked(actor, e.clock.Now()) {
		e.persist(ctx)
	}
	return nil
}

// RemoveUserFromRoom force-removes a participant. Only the creator may do
// this, and never to themselves.
func (e *Engine) RemoveUserFromRoom(ctx context.Context, roomID, targetID uuid.UUID, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.findRoom(roomID)
	if room == nil {
		return domain.ErrNotFound
	}
	if !room.IsCreator(actor.ID) || targetID == actor.ID {
		return domain.ErrAccessDenied
	}

	target, ok := removeParticipant(room, targetID)
	if !ok {
		return domain.ErrNotFound
	}

	now := e.clock.Now()
	e.closeRecordLocked(targetID, roomID, now)
	if cur, ok := e.active[targetID]; ok && cur == roomID {
		delete(e.active, targetID)
	}
	msg := fmt.Sprintf("%sさんが部屋から削除されました", target.Name)
	e.systemMessageLocked(roomID, msg, now)
	e.appendNotificationLocked(targetID, msg, now)

	e.persist(ctx)
	return nil
}

// UpdateRoomSettings replaces the four access settings wholesale. Lowering
// MaxParticipants below the current occupancy is allowed; the room is then
// over capacity and admits no new joins until it drains.
func (e *Engine) UpdateRoomSettings(ctx context.Context, roomID uuid.UUID, in RoomSettingsInput, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.findRoom(roomID)
	if room == nil {
		return domain.ErrNotFound
	}
	if !room.IsCreator(actor.ID) {
		return domain.ErrAccessDenied
	}
	if in.MaxParticipants < 1 {
		return fmt.Errorf("max participants must be at least 1: %w", domain.ErrInvalidInput)
	}

	room.IsPrivate = in.IsPrivate
	room.IsInviteOnly = in.IsInviteOnly
	room.Password = in.Password
	room.MaxParticipants = in.MaxParticipants

	e.persist(ctx)
	return nil
}

// CloseRoom is the irreversible terminal transition: every participant is
// force-left (creator last), their sessions close, and the closure is
// announced. Closed rooms stay in the registry as an archive.
func (e *Engine) CloseRoom(ctx context.Context, roomID uuid.UUID, actor domain.User) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.findRoom(roomID)
	if room == nil {
		return domain.ErrNotFound
	}
	if !room.IsCreator(actor.ID) || room.IsClosed {
		return domain.ErrAccessDenied
	}

	now := e.clock.Now()
	room.IsClosed = true
	room.ClosedAt = &now
	closedBy := actor.ID
	room.ClosedBy = &closedBy

	former := append([]domain.User(nil), room.Participants...)
	for _, p := range former {
		if p.ID != actor.ID {
			e.forceLeaveLocked(room, p, now)
		}
	}
	for _, p := range former {
		if p.ID == actor.ID {
			e.forceLeaveLocked(room, p, now)
		}
	}

	msg := "部屋が作成者によって閉鎖されました"
	e.systemMessageLocked(roomID, msg, now)
	for _, p := range former {
		e.appendNotificationLocked(p.ID, msg, now)
	}

	e.persist(ctx)
	return nil
}

// Rooms returns copies of all rooms, open and archived.
func (e *Engine) Rooms() []domain.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]domain.Room, len(e.rooms))
	for i, r := range e.rooms {
		out[i] = cloneRoom(r)
	}
	return out
}

// OpenRooms returns copies of rooms that have not been closed.
func (e *Engine) OpenRooms() []domain.Room {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.Room
	for _, r := range e.rooms {
		if !r.IsClosed {
			out = append(out, cloneRoom(r))
		}
	}
	return out
}

// Room returns a copy of one room.
func (e *Engine) Room(id uuid.UUID) (domain.Room, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	r := e.findRoom(id)
	if r == nil {
		return domain.Room{}, domain.ErrNotFound
	}
	return cloneRoom(r), nil
}

// ActiveRoom returns the room the user currently occupies, if any.
func (e *Engine) ActiveRoom(userID uuid.UUID) (domain.Room, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	id, ok := e.active[userID]
	if !ok {
		return domain.Room{}, false
	}
	r := e.findRoom(id)
	if r == nil {
		return domain.Room{}, false
	}
	return cloneRoom(r), true
}

// leaveCurrentLocked ends the actor's current occupancy: closes the open
// session, removes the participant snapshot and announces the leave. It
// reports whether anything changed.
func (e *Engine) leaveCurrentLocked(actor domain.User, now time.Time) bool {
	roomID, ok := e.active[actor.ID]
	if !ok {
		return false
	}
	delete(e.active, actor.ID)

	e.closeRecordLocked(actor.ID, roomID, now)
	if room := e.findRoom(roomID); room != nil {
		removeParticipant(room, actor.ID)
	}
	e.systemMessageLocked(roomID, fmt.Sprintf("%sさんが部屋から退出しました", actor.Name), now)
	return true
}

// forceLeaveLocked removes one participant during room closure.
func (e *Engine) forceLeaveLocked(room *domain.Room, p domain.User, now time.Time) {
	removeParticipant(room, p.ID)
	e.closeRecordLocked(p.ID, room.ID, now)
	if cur, ok := e.active[p.ID]; ok && cur == room.ID {
		delete(e.active, p.ID)
	}
	e.systemMessageLocked(room.ID, fmt.Sprintf("%sさんが部屋から退出しました", p.Name), now)
}

// removeParticipant removes the user's snapshot from the room and returns
// it.
func removeParticipant(room *domain.Room, userID uuid.UUID) (domain.User, bool) {
	for i, p := range room.Participants {
		if p.ID == userID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			return p, true
		}
	}
	return domain.User{}, false
}
