package security_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"studyroom/internal/security"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := security.NewTokenService("secret", time.Hour)
	userID := uuid.New()

	token, err := svc.CreateForUser(userID)
	require.NoError(t, err)

	got, err := svc.ParseSubject(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenWrongSecret(t *testing.T) {
	userID := uuid.New()
	token, err := security.NewTokenService("secret", time.Hour).CreateForUser(userID)
	require.NoError(t, err)

	_, err = security.NewTokenService("other", time.Hour).ParseSubject(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	svc := security.NewTokenService("secret", -time.Minute)
	token, err := svc.CreateForUser(uuid.New())
	require.NoError(t, err)

	_, err = svc.ParseSubject(token)
	assert.Error(t, err)
}

func TestPassphraseHasher(t *testing.T) {
	hasher := security.NewPassphraseHasher(4)

	hashed, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, hasher.Verify("correct horse", hashed))
	assert.Error(t, hasher.Verify("wrong", hashed))

	t.Run("ZeroCostUsesDefault", func(t *testing.T) {
		hashed, err := security.NewPassphraseHasher(0).Hash("correct horse")
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(hashed))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}
