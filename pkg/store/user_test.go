package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	users, err := NewCredentialStore(openTestDB(t))
	require.NoError(t, err)
	return users.WithHashCost(bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	users := newTestCredentialStore(t)

	user, err := users.Register(" analista ", "secreto", "analista@example.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "analista", user.Username)
	assert.NotEqual(t, "secreto", user.PasswordHash)
	assert.Equal(t, "analista", user.DisplayName())

	exists, err := users.Exists("analista")
	require.NoError(t, err)
	assert.True(t, exists)

	logged, err := users.ValidateLogin("analista", "secreto")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "analista@example.com", logged.Email)

	_, err = users.ValidateLogin("analista", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.ValidateLogin("nobody", "secreto")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndBlanks(t *testing.T) {
	users := newTestCredentialStore(t)

	_, err := users.Register("analista", "secreto", "", "Ana")
	require.NoError(t, err)

	_, err = users.Register("analista", "otro", "", "")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = users.Register("  ", "secreto", "", "")
	assert.ErrorIs(t, err, ErrInvalidUser)
	_, err = users.Register("otro", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidUser)

	exists, err := users.Exists("otro")
	require.NoError(t, err)
	assert.False(t, exists)
}
