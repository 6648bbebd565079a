package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyroom/internal/clock"
	"studyroom/internal/domain"
	"studyroom/internal/store"
)

// Notifier delivers one-way user-facing notifications. Delivery carries no
// ordering guarantee relative to persistence.
type Notifier interface {
	Notify(message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(string) {}

// Entitlements reports whether the current actor holds the premium
// entitlement, which bypasses every quota check.
type Entitlements interface {
	IsPremium() bool
}

// Engine is the aggregate root owning all mutable state: rooms, effort
// records, the chat log, the friend graph, quota counters and the current
// actor profile. Every mutation runs under one writer lock (single-writer
// discipline); reads take the read lock and return copies, so statistics
// queries observe consistent snapshots.
//
// Persistence is best-effort: in-memory state is authoritative, store
// failures are logged and the next mutation rewrites everything.
type Engine struct {
	mu sync.RWMutex

	clock        clock.Clock
	store        store.Store
	logger       *slog.Logger
	notifier     Notifier
	entitlements Entitlements
	limiter      *FeatureLimiter

	currentUser   domain.User
	rooms         []*domain.Room
	records       []*domain.EffortRecord
	messages      []domain.ChatMessage
	requests      []*domain.FriendRequest
	groups        []domain.FriendGroup
	notifications []domain.Notification

	// active maps a user id to the room the user currently occupies. A user
	// occupies at most one room at a time. Occupancy pointers are not
	// persisted directly; Load rebuilds them from the participant lists.
	active map[uuid.UUID]uuid.UUID
}

func NewEngine(
	st store.Store,
	clk clock.Clock,
	logger *slog.Logger,
	notifier Notifier,
	entitlements Entitlements,
	limits Limits,
) *Engine {
	return &Engine{
		clock:        clk,
		store:        st,
		logger:       logger,
		notifier:     notifier,
		entitlements: entitlements,
		limiter:      NewFeatureLimiter(limits),
		active:       make(map[uuid.UUID]uuid.UUID),
	}
}

// Load restores all collections from the store. An absent or undecodable
// key defaults to an empty collection; rooms fall back to the built-in seed
// set and the current user to a fresh profile, so a cold start never fails.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loadJSON(ctx, store.KeyCurrentUser, &e.currentUser) || e.currentUser.ID == uuid.Nil {
		e.currentUser = domain.User{
			ID:           uuid.New(),
			Name:         "ユーザー",
			ProfileImage: "person.circle.fill",
			Friends:      []uuid.UUID{},
			LastSeen:     e.clock.Now(),
		}
	}
	if !e.loadJSON(ctx, store.KeyRooms, &e.rooms) || len(e.rooms) == 0 {
		e.rooms = seedRooms(e.currentUser.ID, e.clock.Now())
		e.logger.Info("Seeded built-in rooms", "count", len(e.rooms))
	}
	e.loadJSON(ctx, store.KeyEffortRecords, &e.records)
	e.loadJSON(ctx, store.KeyChatMessages, &e.messages)
	e.loadJSON(ctx, store.KeyFriendRequests, &e.requests)
	e.loadJSON(ctx, store.KeyFriendGroups, &e.groups)
	e.loadJSON(ctx, store.KeyNotifications, &e.notifications)
	e.loadJSON(ctx, store.KeyFeatureLimits, &e.limiter.state)

	e.reconcileOccupancyLocked()

	return nil
}

// reconcileOccupancyLocked rebuilds the occupancy pointers from the
// persisted participant lists and closes any open record that no longer has
// a matching occupancy, so a restart cannot leave a user joinable into a
// room they already occupy or with two open sessions for one room.
func (e *Engine) reconcileOccupancyLocked() {
	for _, r := range e.rooms {
		if r.IsClosed {
			continue
		}
		for _, p := range r.Participants {
			e.active[p.ID] = r.ID
		}
	}

	now := e.clock.Now()
	for _, rec := range e.records {
		if !rec.Open() {
			continue
		}
		room := e.findRoom(rec.RoomID)
		if room == nil || room.IsClosed || !room.HasParticipant(rec.UserID) {
			end := now
			rec.EndTime = &end
		}
	}
}

// loadJSON reads and decodes one collection. It reports whether the key was
// present and decodable.
func (e *Engine) loadJSON(ctx context.Context, key string, dst any) bool {
	b, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Error("Could not read collection", "key", key, "error", err)
		return false
	}
	if b == nil {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		e.logger.Error("Could not decode collection", "key", key, "error", err)
		return false
	}
	return true
}

// persist writes every collection back to the store. Called with the writer
// lock held at the end of each mutation. Errors are logged, never returned:
// a mutation that succeeded in memory is not rolled back.
func (e *Engine) persist(ctx context.Context) {
	e.saveJSON(ctx, store.KeyRooms, e.rooms)
	e.saveJSON(ctx, store.KeyEffortRecords, e.records)
	e.saveJSON(ctx, store.KeyChatMessages, e.messages)
	e.saveJSON(ctx, store.KeyFriendRequests, e.requests)
	e.saveJSON(ctx, store.KeyFriendGroups, e.groups)
	e.saveJSON(ctx, store.KeyNotifications, e.notifications)
	e.saveJSON(ctx, store.KeyCurrentUser, e.currentUser)
	e.saveJSON(ctx, store.KeyFeatureLimits, e.limiter.state)
}

func (e *Engine) saveJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		e.logger.Error("Could not encode collection", "key", key, "error", err)
		return
	}
	if err := e.store.Set(ctx, key, b); err != nil {
		e.logger.Error("Could not persist collection", "key", key, "error", err)
	}
}

// seedRooms is the built-in room set created on first launch.
func seedRooms(creator uuid.UUID, now time.Time) []*domain.Room {
	password := "1234"
	return []*domain.Room{
		{
			ID:              uuid.New(),
			Name:            "朝活勉強",
			Tags:            []string{"勉強", "朝活"},
			CreatedAt:       now,
			CreatedBy:       creator,
			Participants:    []domain.User{},
			MaxParticipants: 10,
		},
		{
			ID:              uuid.New(),
			Name:            "夜の筋トレ",
			Tags:            []string{"筋トレ", "健康"},
			CreatedAt:       now,
			CreatedBy:       creator,
			Participants:    []domain.User{},
			MaxParticipants: 10,
		},
		{
			ID:              uuid.New(),
			Name:            "資格勉強",
			Tags:            []string{"勉強", "資格"},
			CreatedAt:       now,
			CreatedBy:       creator,
			Participants:    []domain.User{},
			IsPrivate:       true,
			IsInviteOnly:    true,
			Password:        &password,
			MaxParticipants: 5,
		},
	}
}

func (e *Engine) exempt() bool {
	return e.entitlements != nil && e.entitlements.IsPremium()
}

// findRoom returns the live room entity. Callers hold the lock.
func (e *Engine) findRoom(id uuid.UUID) *domain.Room {
	for _, r := range e.rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// snapshot returns a value copy of a user safe to embed in rooms and
// messages. Profile edits after the copy do not retroactively change it.
func snapshot(u domain.User) domain.User {
	c := u
	c.Friends = append([]uuid.UUID(nil), u.Friends...)
	c.AvatarData = append([]byte(nil), u.AvatarData...)
	return c
}

func cloneRoom(r *domain.Room) domain.Room {
	c := *r
	c.Tags = append([]string(nil), r.Tags...)
	c.Participants = append([]domain.User(nil), r.Participants...)
	if r.Password != nil {
		p := *r.Password
		c.Password = &p
	}
	return c
}

// MonthlyRoomCount exposes the limiter counter for display.
func (e *Engine) MonthlyRoomCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limiter.MonthlyRoomCount()
}

// CurrentFriendCount exposes the limiter counter for display.
func (e *Engine) CurrentFriendCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limiter.CurrentFriendCount()
}

// CanCreateRoom checks the monthly creation quota. The check itself may
// reset the counter on a month boundary, so the result is persisted.
func (e *Engine) CanCreateRoom(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.limiter.CanCreateRoom(e.clock.Now())
	e.saveJSON(ctx, store.KeyFeatureLimits, e.limiter.state)
	return ok
}

// CanAddFriend checks the friend quota.
func (e *Engine) CanAddFriend() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.limiter.CanAddFriend()
}
