package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyroom/internal/domain"
)

func TestSendFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.engine.CurrentUser()
	bob := newUser("ボブ")

	t.Run("Success", func(t *testing.T) {
		msg := "よろしく"
		req, err := env.engine.SendFriendRequest(ctx, me.ID, &msg, bob)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, req.FromUserID)
		assert.Equal(t, me.ID, req.ToUserID)
		assert.Equal(t, domain.RequestPending, req.Status)
		assert.Equal(t, 1, env.engine.CurrentFriendCount())
	})

	t.Run("ToSelf", func(t *testing.T) {
		_, err := env.engine.SendFriendRequest(ctx, bob.ID, nil, bob)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("DuplicatePending", func(t *testing.T) {
		_, err := env.engine.SendFriendRequest(ctx, me.ID, nil, bob)
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	})

	t.Run("ResendAfterRejection", func(t *testing.T) {
		pending := env.engine.PendingFriendRequests(me)
		require.Len(t, pending, 1)
		require.NoError(t, env.engine.RejectFriendRequest(ctx, pending[0].ID, me))

		_, err := env.engine.SendFriendRequest(ctx, me.ID, nil, bob)
		assert.NoError(t, err)
	})
}

func TestFriendQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := newUser("ボブ")

	for i := 0; i < 10; i++ {
		target := newUser(fmt.Sprintf("友達%d", i))
		_, err := env.engine.SendFriendRequest(ctx, target.ID, nil, bob)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, env.engine.CurrentFriendCount())
	assert.False(t, env.engine.CanAddFriend())

	_, err := env.engine.SendFriendRequest(ctx, newUser("満員").ID, nil, bob)
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	// Exempt actors bypass the check; the counter stays untouched.
	env.premium.premium = true
	_, err = env.engine.SendFriendRequest(ctx, newUser("特典").ID, nil, bob)
	assert.NoError(t, err)
	assert.Equal(t, 10, env.engine.CurrentFriendCount())
}

func TestAcceptFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.engine.CurrentUser()
	bob := newUser("ボブ")

	req, err := env.engine.SendFriendRequest(ctx, me.ID, nil, bob)
	require.NoError(t, err)

	t.Run("WrongActor", func(t *testing.T) {
		err := env.engine.AcceptFriendRequest(ctx, req.ID, bob)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		err := env.engine.AcceptFriendRequest(ctx, newUser("x").ID, me)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, env.engine.AcceptFriendRequest(ctx, req.ID, me))
		assert.Contains(t, env.engine.Friends(), bob.ID)
		assert.Empty(t, env.engine.PendingFriendRequests(me))
	})

	t.Run("AcceptTwiceFails", func(t *testing.T) {
		err := env.engine.AcceptFriendRequest(ctx, req.ID, me)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRejectFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.engine.CurrentUser()
	bob := newUser("ボブ")

	req, err := env.engine.SendFriendRequest(ctx, me.ID, nil, bob)
	require.NoError(t, err)

	assert.ErrorIs(t, env.engine.RejectFriendRequest(ctx, req.ID, bob), domain.ErrAccessDenied)
	require.NoError(t, env.engine.RejectFriendRequest(ctx, req.ID, me))
	// Rejection is terminal.
	assert.ErrorIs(t, env.engine.RejectFriendRequest(ctx, req.ID, me), domain.ErrInvalidInput)
	assert.NotContains(t, env.engine.Friends(), bob.ID)
}

func TestRemoveFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.engine.CurrentUser()
	bob := newUser("ボブ")

	req, err := env.engine.SendFriendRequest(ctx, me.ID, nil, bob)
	require.NoError(t, err)
	require.NoError(t, env.engine.AcceptFriendRequest(ctx, req.ID, me))
	require.Contains(t, env.engine.Friends(), bob.ID)

	require.NoError(t, env.engine.RemoveFriend(ctx, bob.ID))
	assert.NotContains(t, env.engine.Friends(), bob.ID)
	// Removal never refunds quota; the counter tracks additions.
	assert.Equal(t, 1, env.engine.CurrentFriendCount())

	// Removing an absent friend is a silent no-op.
	assert.NoError(t, env.engine.RemoveFriend(ctx, bob.ID))
}

func TestCreateFriendGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := env.engine.CurrentUser()
	bob := newUser("ボブ")
	carol := newUser("キャロル")

	t.Run("EmptyName", func(t *testing.T) {
		_, err := env.engine.CreateFriendGroup(ctx, "", nil, nil, me)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("DeduplicatesMembers", func(t *testing.T) {
		group, err := env.engine.CreateFriendGroup(ctx, "勉強会", nil,
			[]uuid.UUID{bob.ID, carol.ID, bob.ID, me.ID}, me)
		require.NoError(t, err)
		assert.Equal(t, me.ID, group.CreatedBy)
		assert.ElementsMatch(t, []uuid.UUID{me.ID, bob.ID, carol.ID}, group.Members)

		groups := env.engine.FriendGroups()
		require.Len(t, groups, 1)
		assert.Equal(t, "勉強会", groups[0].Name)
	})
}
