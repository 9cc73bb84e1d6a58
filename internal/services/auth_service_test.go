package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goplan-app/goplan-server/internal/apperrors"
	"github.com/goplan-app/goplan-server/internal/helpers"
	"github.com/goplan-app/goplan-server/internal/models"
)

const testSecret = "test-secret"

func newAuthService(store *fakeStore) *AuthService {
	return NewAuthService(store, testSecret, time.Hour)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and hashes password", func(t *testing.T) {
		store := newFakeStore()
		svc := newAuthService(store)

		token, user, err := svc.Register(ctx, "ana@example.com", "secret123", "Ana")
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.NotEmpty(t, token)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.NotEqual(t, "secret123", user.Password, "password must not be stored in plaintext")
		assert.True(t, user.Settings.Notifications.Enabled)
		assert.True(t, user.Settings.Privacy.PublicProfile)

		claims, err := helpers.ValidateToken(testSecret, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), claims.Subject)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := newAuthService(newFakeStore())

		_, _, err := svc.Register(ctx, "", "secret123", "")
		require.Error(t, err)
		e := apperrors.As(err)
		assert.Equal(t, apperrors.KindInvalid, e.Kind)
		assert.ElementsMatch(t, []string{"email", "name"}, e.Fields)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		svc := newAuthService(newFakeStore())

		_, _, err := svc.Register(ctx, "not-an-email", "secret123", "Ana")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
	})

	t.Run("rejects short password", func(t *testing.T) {
		svc := newAuthService(newFakeStore())

		_, _, err := svc.Register(ctx, "ana@example.com", "abc", "Ana")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalid))
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := newAuthService(newFakeStore())

		_, _, err := svc.Register(ctx, "ana@example.com", "secret123", "Ana")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "ana@example.com", "other456", "Ana Two")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindDuplicate))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newAuthService(store)

	_, registered, err := svc.Register(ctx, "ana@example.com", "secret123", "Ana")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, user, err := svc.Login(ctx, "ana@example.com", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ana@example.com", "wrong")
		require.Error(t, err)
		e := apperrors.As(err)
		assert.Equal(t, apperrors.KindUnauthenticated, e.Kind)
		assert.Equal(t, "invalid credentials", e.Message)
	})

	t.Run("unknown email yields the same error", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "secret123")
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", apperrors.As(err).Message)
	})

	t.Run("oauth-only account cannot use password login", func(t *testing.T) {
		_, err := store.CreateUser(ctx, &models.User{
			Email:    "oauth@example.com",
			Name:     "OAuth Only",
			GoogleID: "google-123",
			Settings: models.DefaultUserSettings(),
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "oauth@example.com", "")
		require.Error(t, err)
		assert.Equal(t, "invalid credentials", apperrors.As(err).Message)
	})
}

func TestOAuthLogin(t *testing.T) {
	ctx := context.Background()

	profile := &helpers.OAuthProfile{
		ProviderID: "google-123",
		Email:      "ana@example.com",
		Name:       "Ana",
		Avatar:     "https://example.com/avatar.jpg",
	}

	t.Run("creates a new account on first login", func(t *testing.T) {
		store := newFakeStore()
		svc := newAuthService(store)

		token, user, err := svc.OAuthLogin(ctx, "google", profile)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "google-123", user.GoogleID)
		assert.Empty(t, user.Password)
	})

	t.Run("matches an existing provider id", func(t *testing.T) {
		store := newFakeStore()
		svc := newAuthService(store)

		_, first, err := svc.OAuthLogin(ctx, "google", profile)
		require.NoError(t, err)
		_, second, err := svc.OAuthLogin(ctx, "google", profile)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, store.users, 1)
	})

	t.Run("links provider to an existing local account", func(t *testing.T) {
		store := newFakeStore()
		svc := newAuthService(store)

		_, local, err := svc.Register(ctx, "ana@example.com", "secret123", "Ana")
		require.NoError(t, err)

		_, linked, err := svc.OAuthLogin(ctx, "google", profile)
		require.NoError(t, err)
		assert.Equal(t, local.ID, linked.ID)
		assert.Equal(t, "google-123", linked.GoogleID)
	})

	t.Run("rejects unsupported provider", func(t *testing.T) {
		svc := newAuthService(newFakeStore())

		_, _, err := svc.OAuthLogin(ctx, "myspace", &helpers.OAuthProfile{ProviderID: "x", Email: "x@example.com"})
		require.Error(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newAuthService(store)

	token, registered, err := svc.Register(ctx, "ana@example.com", "secret123", "Ana")
	require.NoError(t, err)

	t.Run("valid token resolves the user", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not.a.token")
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		forged, err := helpers.SignToken("other-secret", registered.ID.Hex(), time.Hour)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, forged)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	})

	t.Run("token for a deleted user is rejected", func(t *testing.T) {
		ghost, err := helpers.SignToken(testSecret, primitive.NewObjectID().Hex(), time.Hour)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, ghost)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthenticated))
	})
}
