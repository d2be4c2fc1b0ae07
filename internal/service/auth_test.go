package service

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averyk/lifeledger/internal/repository"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := repository.NewUserRepository(env.db)
	auth := NewAuthService(users)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.expire_hours", 1)

	require.NoError(t, auth.Register(ctx, "avery", "avery@example.com", "hunter22"))
	require.ErrorIs(t, auth.Register(ctx, "other", "avery@example.com", "hunter22"), ErrConflict)

	token, userID, err := auth.Login(ctx, "avery@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, userID)

	_, _, err = auth.Login(ctx, "avery@example.com", "wrong")
	require.EqualError(t, err, "invalid credentials")
	_, _, err = auth.Login(ctx, "nobody@example.com", "hunter22")
	require.EqualError(t, err, "invalid credentials")
}

func TestSetNotificationToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := repository.NewUserRepository(env.db)
	auth := NewAuthService(users)

	require.NoError(t, auth.Register(ctx, "avery", "avery@example.com", "hunter22"))
	user, err := users.GetByEmail(ctx, "avery@example.com")
	require.NoError(t, err)

	require.NoError(t, auth.SetNotificationToken(ctx, user.ID, "ExponentPushToken[abc]"))
	reloaded, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.NotificationToken)
	assert.Equal(t, "ExponentPushToken[abc]", *reloaded.NotificationToken)

	// Empty token clears the destination.
	require.NoError(t, auth.SetNotificationToken(ctx, user.ID, ""))
	reloaded, err = users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.NotificationToken)

	require.ErrorIs(t, auth.SetNotificationToken(ctx, "missing", "tok"), ErrNotFound)
}
