package service

import "time"

// Limits holds the free-tier quotas.
type Limits struct {
	RoomCreationLimit int
	FriendLimit       int
}

func DefaultLimits() Limits {
	return Limits{
		RoomCreationLimit: 5,
		FriendLimit:       10,
	}
}

// limiterState is the persisted shape of the counters. LastResetPeriod is
// year*100+month so a reset fires exactly once per calendar-month boundary,
// including across year boundaries.
type limiterState struct {
	MonthlyRoomCount   int `json:"monthly_room_count"`
	CurrentFriendCount int `json:"current_friend_count"`
	LastResetPeriod    int `json:"last_reset_period"`
}

// FeatureLimiter gates room creation behind a rolling monthly counter and
// friend additions behind a cumulative counter. It is not safe for
// concurrent use on its own; the engine serializes all access.
type FeatureLimiter struct {
	limits Limits
	state  limiterState
}

func NewFeatureLimiter(limits Limits) *FeatureLimiter {
	return &FeatureLimiter{limits: limits}
}

// CanCreateRoom is a mutating query: when the calendar month of now differs
// from the stored last-reset month the monthly counter resets to zero as a
// side effect of the check itself.
func (l *FeatureLimiter) CanCreateRoom(now time.Time) bool {
	if p := yearMonth(now); p != l.state.LastResetPeriod {
		l.state.MonthlyRoomCount = 0
		l.state.LastResetPeriod = p
	}
	return l.state.MonthlyRoomCount < l.limits.RoomCreationLimit
}

func (l *FeatureLimiter) CanAddFriend() bool {
	return l.state.CurrentFriendCount < l.limits.FriendLimit
}

func (l *FeatureLimiter) IncrementRoomCount() {
	l.state.MonthlyRoomCount++
}

func (l *FeatureLimiter) IncrementFriendCount() {
	l.state.CurrentFriendCount++
}

func (l *FeatureLimiter) DecrementFriendCount() {
	if l.state.CurrentFriendCount > 0 {
		l.state.CurrentFriendCount--
	}
}

// MonthlyRoomCount returns the counter without triggering a reset; the
// value is for display only.
func (l *FeatureLimiter) MonthlyRoomCount() int {
	return l.state.MonthlyRoomCount
}

func (l *FeatureLimiter) CurrentFriendCount() int {
	return l.state.CurrentFriendCount
}

func yearMonth(t time.Time) int {
	y, m, _ := t.Date()
	return y*100 + int(m)
}
