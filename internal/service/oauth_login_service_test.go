package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/kimoju01/omg-project/internal/oauth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		HomeURL:         "/",
		SignInURL:       "/signin",
		PostLoginURL:    "/my",
		ProfileSetupURL: "/oauthPage",
	}
}

func newTestLoginService(t *testing.T) (*OAuthLoginService, *fakeUserStore, *RefreshTokenService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	refreshStore := NewRefreshTokenService(client, testLogger())
	users := newFakeUserStore()
	jwtService := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)
	svc := NewOAuthLoginService(jwtService, refreshStore, users, testAuthConfig(), testLogger())
	return svc, users, refreshStore, mr
}

func TestCompleteLoginUnknownUser(t *testing.T) {
	svc, _, _, mr := newTestLoginService(t)

	result, err := svc.CompleteLogin(context.Background(), &oauth.Identity{
		Provider: "google",
		Subject:  "sub-1",
		Username: "nobody@example.com",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, result)

	// Nothing minted, nothing stored.
	assert.Empty(t, mr.Keys())
}

func TestCompleteLoginNoIdentity(t *testing.T) {
	svc, _, _, _ := newTestLoginService(t)

	_, err := svc.CompleteLogin(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = svc.CompleteLogin(context.Background(), &oauth.Identity{Provider: "google"})
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestCompleteLoginIncompleteProfile(t *testing.T) {
	svc, users, refreshStore, _ := newTestLoginService(t)
	ctx := context.Background()

	users.users["alice@example.com"] = &models.User{
		ID:       "u-1",
		Username: "alice@example.com",
		Name:     "Alice",
		Gender:   models.GenderUnset,
		Roles:    []string{models.RoleUser},
	}

	result, err := svc.CompleteLogin(ctx, &oauth.Identity{
		Provider: "kakao",
		Subject:  "12345",
		Username: "alice@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "/oauthPage", result.RedirectURL)
	require.NotNil(t, result.Pair)
	assert.NotEmpty(t, result.Pair.AccessToken)

	ok, err := refreshStore.Exists(ctx, result.Pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompleteLoginCompleteProfile(t *testing.T) {
	svc, users, _, _ := newTestLoginService(t)

	users.users["bob@example.com"] = &models.User{
		ID:       "u-2",
		Username: "bob@example.com",
		Name:     "Bob",
		Gender:   "M",
		Roles:    []string{models.RoleUser},
	}

	result, err := svc.CompleteLogin(context.Background(), &oauth.Identity{
		Provider: "google",
		Subject:  "sub-2",
		Username: "bob@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "/my", result.RedirectURL)

	claims, err := svc.jwtService.VerifyTokenOfType(result.Pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-2", claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Username)
}
