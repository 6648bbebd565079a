package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"studyroom/internal/domain"
)

// SendChatMessage appends a text message to the room's chat log. Closed
// rooms admit no further messages.
func (e *Engine) SendChatMessage(ctx context.Context, roomID uuid.UUID, text string, actor domain.User) (domain.ChatMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	room := e.findRoom(roomID)
	if room == nil {
		return domain.ChatMessage{}, domain.ErrNotFound
	}
	if room.IsClosed {
		return domain.ChatMessage{}, domain.ErrAccessDenied
	}

	msg := domain.ChatMessage{
		ID:               uuid.New(),
		UserID:           actor.ID,
		RoomID:           roomID,
		UserName:         actor.Name,
		UserProfileImage: actor.ProfileImage,
		Message:          text,
		Timestamp:        e.clock.Now(),
		MessageType:      domain.MessageText,
	}
	e.messages = append(e.messages, msg)

	e.persist(ctx)
	return msg, nil
}

// systemMessageLocked appends a synthesized system message and mirrors it to
// the notifier. Room lifecycle transitions call this directly, so the
// closing cascade can still announce itself after IsClosed is set.
func (e *Engine) systemMessageLocked(roomID uuid.UUID, text string, now time.Time) {
	e.messages = append(e.messages, domain.ChatMessage{
		ID:               uuid.New(),
		UserID:           domain.SystemUserID,
		RoomID:           roomID,
		UserName:         "システム",
		UserProfileImage: "info.circle.fill",
		Message:          text,
		Timestamp:        now,
		MessageType:      domain.MessageSystem,
	})
	if e.notifier != nil {
		e.notifier.Notify(text)
	}
}

// ChatMessages returns the room's log ordered by timestamp ascending, ties
// broken by insertion order.
func (e *Engine) ChatMessages(roomID uuid.UUID) []domain.ChatMessage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.ChatMessage
	for _, m := range e.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ClearChatMessages drops the room's entire log.
func (e *Engine) ClearChatMessages(ctx context.Context, roomID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.messages[:0]
	for _, m := range e.messages {
		if m.RoomID != roomID {
			kept = append(kept, m)
		}
	}
	e.messages = kept

	e.persist(ctx)
	return nil
}

// appendNotificationLocked records a persisted notification for a user.
func (e *Engine) appendNotificationLocked(userID uuid.UUID, message string, now time.Time) {
	e.notifications = append(e.notifications, domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Message:   message,
		Timestamp: now,
	})
}

// Notifications returns the user's notifications, newest first.
func (e *Engine) Notifications(userID uuid.UUID) []domain.Notification {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []domain.Notification
	for _, n := range e.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// MarkNotificationRead flags one notification as read.
func (e *Engine) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.notifications {
		if e.notifications[i].ID == id {
			e.notifications[i].IsRead = true
			e.persist(ctx)
			return nil
		}
	}
	return domain.ErrNotFound
}
