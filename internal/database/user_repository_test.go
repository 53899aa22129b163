package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recallbox/pkg/models"
)

func TestUserRegisterAndNotify(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Register(ctx, &models.User{ID: 10, ChatID: 10, Username: "ann", NotificationEnabled: true, NotificationHour: 9}))
	require.NoError(t, repo.Register(ctx, &models.User{ID: 11, ChatID: 11, Username: "bob", NotificationEnabled: true, NotificationHour: 18}))

	users, err := repo.GetUsersForNotification(ctx, 9)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ann", users[0].Username)

	require.NoError(t, repo.UpdateNotificationSettings(ctx, 10, false, 9))
	users, err = repo.GetUsersForNotification(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, users)

	// re-registering keeps the stored notification settings
	require.NoError(t, repo.Register(ctx, &models.User{ID: 10, ChatID: 99, Username: "ann2", NotificationEnabled: true, NotificationHour: 9}))
	u, err := repo.GetByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(99), u.ChatID)
	assert.Equal(t, "ann2", u.Username)
	assert.False(t, u.NotificationEnabled)

	assert.Error(t, repo.UpdateNotificationSettings(ctx, 10, true, 24))
	assert.Error(t, repo.UpdateNotificationSettings(ctx, 404, true, 8))

	none, err := repo.GetByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, none)
}
