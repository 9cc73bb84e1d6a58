package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/models"
)

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewUserService(store)
	user := seedUser(t, store, "ana@example.com", "Ana")

	t.Run("updates the provided fields", func(t *testing.T) {
		bio := "hiker and foodie"
		updated, err := svc.UpdateProfile(ctx, user, UpdateProfileInput{
			Bio:       &bio,
			Interests: []string{"hiking", "cooking"},
		})
		require.NoError(t, err)
		assert.Equal(t, "hiker and foodie", updated.Bio)
		assert.Equal(t, []string{"hiking", "cooking"}, updated.Interests)
		assert.Equal(t, "Ana", updated.Name, "untouched fields are preserved")
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		empty := ""
		_, err := svc.UpdateProfile(ctx, user, UpdateProfileInput{Name: &empty})
		require.Error(t, err)
		assert.Contains(t, apperrors.As(err).Fields, "name")
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, user, UpdateProfileInput{})
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
	})
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewUserService(store)
	user := seedUser(t, store, "ana@example.com", "Ana")

	settings := models.DefaultUserSettings()
	settings.Privacy.PublicProfile = false
	settings.Notifications.ChatMessages = false

	updated, err := svc.UpdateSettings(ctx, user, settings)
	require.NoError(t, err)
	assert.False(t, updated.Settings.Privacy.PublicProfile)
	assert.False(t, updated.Settings.Notifications.ChatMessages)
	assert.True(t, updated.Settings.Notifications.Enabled)
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewUserService(store)

	ana := seedUser(t, store, "ana@example.com", "Ana")
	bea := seedUser(t, store, "bea@example.com", "Bea")

	t.Run("public profile is visible to anyone", func(t *testing.T) {
		got, err := svc.GetUserProfile(ctx, nil, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, ana.ID, got.ID)
	})

	t.Run("private profile is hidden from strangers", func(t *testing.T) {
		hidden := models.DefaultUserSettings()
		hidden.Privacy.PublicProfile = false
		_, err := store.UpdateSettings(ctx, ana.ID, hidden)
		require.NoError(t, err)

		_, err = svc.GetUserProfile(ctx, bea, ana.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindPermissionDenied))

		_, err = svc.GetUserProfile(ctx, nil, ana.ID)
		require.Error(t, err)
	})

	t.Run("private profile is visible to the owner", func(t *testing.T) {
		got, err := svc.GetUserProfile(ctx, ana, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, ana.ID, got.ID)
	})

	t.Run("private profile is visible to friends", func(t *testing.T) {
		require.NoError(t, store.AddFriend(ctx, ana.ID, bea.ID))

		got, err := svc.GetUserProfile(ctx, bea, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, ana.ID, got.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetUserProfile(ctx, ana, primitive.NewObjectID())
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestFriends(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := NewUserService(store)

	ana := seedUser(t, store, "ana@example.com", "Ana")
	bea := seedUser(t, store, "bea@example.com", "Bea")

	t.Run("adding is symmetric", func(t *testing.T) {
		require.NoError(t, svc.AddFriend(ctx, ana, bea.ID))
		assert.True(t, store.users[ana.ID].HasFriend(bea.ID))
		assert.True(t, store.users[bea.ID].HasFriend(ana.ID))
	})

	t.Run("adding twice fails", func(t *testing.T) {
		err := svc.AddFriend(ctx, ana, bea.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicate))
	})

	t.Run("cannot befriend yourself", func(t *testing.T) {
		err := svc.AddFriend(ctx, ana, ana.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
	})

	t.Run("cannot befriend a missing user", func(t *testing.T) {
		err := svc.AddFriend(ctx, ana, primitive.NewObjectID())
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("removing is symmetric", func(t *testing.T) {
		require.NoError(t, svc.RemoveFriend(ctx, ana, bea.ID))
		assert.False(t, store.users[ana.ID].HasFriend(bea.ID))
		assert.False(t, store.users[bea.ID].HasFriend(ana.ID))
	})

	t.Run("removing a non-friend is a no-op", func(t *testing.T) {
		require.NoError(t, svc.RemoveFriend(ctx, ana, bea.ID))
	})
}
