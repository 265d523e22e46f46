package auth

import (
	"testing"
	"time"

	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	clock := clockwork.NewFakeClock()
	manager := NewJWTManager("secret", time.Hour, clock)
	user := &users.User{ID: uuid.New(), Role: users.RoleOrganizer}

	token, expires, err := manager.Generate(user)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(time.Hour), expires)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, users.RoleOrganizer, claims.Role)
}

func TestVerifyExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	manager := NewJWTManager("secret", time.Hour, clock)

	token, _, err := manager.Generate(&users.User{ID: uuid.New(), Role: users.RolePlayer})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	clock := clockwork.NewFakeClock()
	token, _, err := NewJWTManager("other", time.Hour, clock).Generate(&users.User{ID: uuid.New()})
	require.NoError(t, err)

	manager := NewJWTManager("secret", time.Hour, clock)
	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
