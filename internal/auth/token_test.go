package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("secret")

	token, err := manager.IssueSessionToken("u1")
	require.NoError(t, err)

	userID, err := manager.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestValidateSessionRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret").IssueSessionToken("u1")
	require.NoError(t, err)

	_, err = NewTokenManager("other").ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionRejectsUploadScope(t *testing.T) {
	manager := NewTokenManager("secret")

	token, err := manager.IssueUploadToken("u1")
	require.NoError(t, err)

	_, err = manager.ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateSessionRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret").ValidateSession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
