package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"studyroom/internal/service"
)

func TestDefaultLimits(t *testing.T) {
	limits := service.DefaultLimits()
	assert.Equal(t, 5, limits.RoomCreationLimit)
	assert.Equal(t, 10, limits.FriendLimit)
}

func TestFeatureLimiterMonthlyReset(t *testing.T) {
	l := service.NewFeatureLimiter(service.Limits{RoomCreationLimit: 2, FriendLimit: 3})
	jan := time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC)
	feb := time.Date(2025, time.February, 1, 0, 30, 0, 0, time.UTC)

	assert.True(t, l.CanCreateRoom(jan))
	l.IncrementRoomCount()
	l.IncrementRoomCount()
	assert.False(t, l.CanCreateRoom(jan))
	assert.Equal(t, 2, l.MonthlyRoomCount())

	// Crossing the month boundary resets the counter as part of the check.
	assert.True(t, l.CanCreateRoom(feb))
	assert.Equal(t, 0, l.MonthlyRoomCount())

	// Repeated checks inside the same month must not reset again.
	l.IncrementRoomCount()
	assert.True(t, l.CanCreateRoom(feb))
	assert.Equal(t, 1, l.MonthlyRoomCount())
}

func TestFeatureLimiterYearBoundary(t *testing.T) {
	l := service.NewFeatureLimiter(service.Limits{RoomCreationLimit: 1, FriendLimit: 1})
	dec := time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)
	jan := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, l.CanCreateRoom(dec))
	l.IncrementRoomCount()
	assert.False(t, l.CanCreateRoom(dec))
	assert.True(t, l.CanCreateRoom(jan))
}

func TestFeatureLimiterFriendCounter(t *testing.T) {
	l := service.NewFeatureLimiter(service.Limits{RoomCreationLimit: 1, FriendLimit: 2})

	assert.True(t, l.CanAddFriend())
	l.IncrementFriendCount()
	l.IncrementFriendCount()
	assert.False(t, l.CanAddFriend())
	assert.Equal(t, 2, l.CurrentFriendCount())

	l.DecrementFriendCount()
	assert.True(t, l.CanAddFriend())

	// Never goes negative.
	l.DecrementFriendCount()
	l.DecrementFriendCount()
	assert.Equal(t, 0, l.CurrentFriendCount())
}
