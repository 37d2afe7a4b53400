package user_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/saulo-duarte/edugen-api/internal/auth"
	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/user"
)

const testCryptoKey = "0123456789abcdef0123456789abcdef"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.Connect(context.Background(), "sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func setup(t *testing.T, admins ...string) (user.UserService, user.UserRepository) {
	t.Helper()
	auth.Init("user-service-test-secret")
	config.InitCrypto(testCryptoKey)

	repo := user.NewRepository(newTestDB(t))
	isAdmin := func(email string) bool {
		for _, a := range admins {
			if strings.EqualFold(a, email) {
				return true
			}
		}
		return false
	}
	return user.NewService(repo, isAdmin, time.Hour), repo
}

func profile() *user.GoogleProfile {
	return &user.GoogleProfile{ID: "g-123", Email: "kim@example.com", VerifiedEmail: true, Name: "Kim", Picture: "https://img"}
}

func TestLoginWithGoogle(t *testing.T) {
	t.Run("CreatesUser", func(t *testing.T) {
		svc, repo := setup(t)

		u, token, err := svc.LoginWithGoogle(context.Background(), profile(), &oauth2.Token{RefreshToken: "refresh-me"})
		require.NoError(t, err)
		assert.Equal(t, auth.RoleUser, u.Role)
		require.NotNil(t, u.LastLoginAt)

		claims, err := auth.ValidateJWT(token)
		require.NoError(t, err)
		assert.Equal(t, u.ID.String(), claims.UserID)
		assert.Equal(t, "kim@example.com", claims.Email)

		stored, err := repo.GetByGoogleID("g-123")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.NotEqual(t, "refresh-me", stored.RefreshToken)
		plain, err := config.Decrypt(stored.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh-me", plain)
	})

	t.Run("UpdatesExistingUser", func(t *testing.T) {
		svc, repo := setup(t)

		first, _, err := svc.LoginWithGoogle(context.Background(), profile(), nil)
		require.NoError(t, err)

		p := profile()
		p.Name = "Kim Minji"
		second, _, err := svc.LoginWithGoogle(context.Background(), p, nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		stored, err := repo.GetByID(first.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Kim Minji", stored.Name)
	})

	t.Run("AdminEmail", func(t *testing.T) {
		svc, _ := setup(t, "KIM@example.com")

		u, token, err := svc.LoginWithGoogle(context.Background(), profile(), nil)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, u.Role)

		claims, err := auth.ValidateJWT(token)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
	})

	t.Run("UnverifiedEmail", func(t *testing.T) {
		svc, _ := setup(t)
		p := profile()
		p.VerifiedEmail = false

		_, _, err := svc.LoginWithGoogle(context.Background(), p, nil)
		assert.ErrorIs(t, err, user.ErrUnverifiedEmail)
	})
}

func TestGetUser(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.GetUser(context.Background(), "8c7c5f0e-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	u, _, err := svc.LoginWithGoogle(context.Background(), profile(), nil)
	require.NoError(t, err)

	got, err := svc.GetUser(context.Background(), u.ID.String())
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
}
