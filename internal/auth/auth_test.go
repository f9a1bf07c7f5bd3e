package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "kassa/internal/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("acc-123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, err := issuer.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "acc-123", sub)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("acc-123")
	assert.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	token, err := issuer.Issue("acc-123")
	assert.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}
