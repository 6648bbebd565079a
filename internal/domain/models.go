package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemUserID is the sentinel author of synthesized system messages
// (join/leave/close announcements).
var SystemUserID = uuid.Nil

// User represents an application user. The engine owns exactly one canonical
// User (the current actor); users embedded in Room.Participants and chat
// messages are value snapshots taken at join/send time, never live
// references.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	ProfileImage string      `json:"profile_image,omitempty"`
	AvatarData   []byte      `json:"avatar_data,omitempty"`
	Bio          string      `json:"bio,omitempty"`
	Goal         string      `json:"goal,omitempty"`
	Friends      []uuid.UUID `json:"friends"`
	IsOnline     bool        `json:"is_online"`
	LastSeen     time.Time   `json:"last_seen"`
}

// Room is a shared space users occupy for timed effort sessions. Rooms are
// never deleted; closing is the terminal transition and closed rooms remain
// as an archive.
type Room struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Tags            []string   `json:"tags"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	Participants    []User     `json:"participants"`
	IsPrivate       bool       `json:"is_private"`
	IsInviteOnly    bool       `json:"is_invite_only"`
	Password        *string    `json:"password,omitempty"`
	MaxParticipants int        `json:"max_participants"`
	IsClosed        bool       `json:"is_closed"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	ClosedBy        *uuid.UUID `json:"closed_by,omitempty"`
}

// CanJoin reports whether the given user may enter the room. The closed
// check short-circuits everything else; after that, a private room with a
// password requires an exact match, an invite-only room admits only the
// creator or existing participants, and otherwise the room must be below
// capacity.
func (r *Room) CanJoin(userID uuid.UUID, password *string) bool {
	if r.IsClosed {
		return false
	}
	if r.IsPrivate && r.Password != nil {
		return password != nil && *password == *r.Password
	}
	if r.IsInviteOnly {
		return r.CreatedBy == userID || r.HasParticipant(userID)
	}
	if len(r.Participants) >= r.MaxParticipants {
		return false
	}
	return true
}

// IsCreator reports whether the given user created the room.
func (r *Room) IsCreator(userID uuid.UUID) bool {
	return r.CreatedBy == userID
}

// HasParticipant reports whether the user currently occupies the room.
func (r *Room) HasParticipant(userID uuid.UUID) bool {
	for _, p := range r.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// EffortRecord is one timed occupancy interval of a user in a room. Tags are
// copied from the room at session start. At most one record per (user, room)
// pair may be open (EndTime == nil) at any time.
type EffortRecord struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	RoomID    uuid.UUID  `json:"room_id"`
	Tags      []string   `json:"tags"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Open reports whether the session is still running.
func (r *EffortRecord) Open() bool {
	return r.EndTime == nil
}

// Duration returns the closed span, or the live span up to now for an open
// record. Durations are derived, never stored.
func (r *EffortRecord) Duration(now time.Time) time.Duration {
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return now.Sub(r.StartTime)
}

// RequestStatus is the lifecycle state of a friend request. Accepted and
// rejected are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// FriendRequest is an invitation from one user to another. At most one
// pending request exists per ordered (from, to) pair.
type FriendRequest struct {
	ID         uuid.UUID     `json:"id"`
	FromUserID uuid.UUID     `json:"from_user_id"`
	ToUserID   uuid.UUID     `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	Timestamp  time.Time     `json:"timestamp"`
	Message    *string       `json:"message,omitempty"`
}

// FriendGroup is a named set of user ids. The member set always contains the
// creator.
type FriendGroup struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Members     []uuid.UUID `json:"members"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
}

// MessageType distinguishes user text, synthesized system messages and
// reactions.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageSystem   MessageType = "system"
	MessageReaction MessageType = "reaction"
)

// ChatMessage is one entry in a room's append-only chat log. UserName and
// UserProfileImage are denormalized snapshots of the sender at send time.
type ChatMessage struct {
	ID               uuid.UUID   `json:"id"`
	UserID           uuid.UUID   `json:"user_id"`
	RoomID           uuid.UUID   `json:"room_id"`
	UserName         string      `json:"user_name"`
	UserProfileImage string      `json:"user_profile_image,omitempty"`
	Message          string      `json:"message"`
	Timestamp        time.Time   `json:"timestamp"`
	MessageType      MessageType `json:"message_type"`
}

// Notification is a persisted one-way message to a user.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}

// EffortStats aggregates effort records matched by a tag/period query.
type EffortStats struct {
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	SessionCount    int           `json:"session_count"`
}

// TagStat is the per-tag rollup used by the statistics views.
type TagStat struct {
	Tag           string        `json:"tag"`
	TotalDuration time.Duration `json:"total_duration"`
	SessionCount  int           `json:"session_count"`
}
