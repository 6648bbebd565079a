package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyroom/internal/domain"
	"studyroom/internal/service"
)

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := env.engine.CurrentUser()

	t.Run("NameRequired", func(t *testing.T) {
		_, err := env.engine.UpdateProfile(ctx, service.ProfileUpdateInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("Success", func(t *testing.T) {
		updated, err := env.engine.UpdateProfile(ctx, service.ProfileUpdateInput{
			Name: "たろう",
			Bio:  "朝型です",
			Goal: "資格合格",
		})
		require.NoError(t, err)
		assert.Equal(t, before.ID, updated.ID, "the id never changes")
		assert.Equal(t, "たろう", updated.Name)
		assert.Equal(t, "朝型です", updated.Bio)
		// Unset image keeps the previous value.
		assert.Equal(t, before.ProfileImage, updated.ProfileImage)
	})
}

func TestProfileEditKeepsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.engine.CurrentUser()

	room := env.createRoom(t, actor, "作業部屋", nil, 4)

	_, err := env.engine.UpdateProfile(ctx, service.ProfileUpdateInput{Name: "改名後"})
	require.NoError(t, err)

	// Participant entries are snapshots taken at join time, not live
	// references.
	got, err := env.engine.Room(room.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, "ユーザー", got.Participants[0].Name)

	log := env.engine.ChatMessages(room.ID)
	require.NotEmpty(t, log)
	assert.Equal(t, "ユーザーさんが部屋を作成しました", log[0].Message)
}

func TestSetOnline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.clock.Advance(1)
	env.engine.SetOnline(ctx, true)
	user := env.engine.CurrentUser()
	assert.True(t, user.IsOnline)
	assert.True(t, user.LastSeen.Equal(env.clock.Now()))

	env.engine.SetOnline(ctx, false)
	assert.False(t, env.engine.CurrentUser().IsOnline)
}
