package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/kimoju01/omg-project/internal/repository"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type memoryUserStore struct {
	users map[string]*models.User
	nicks map[string]bool
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users: make(map[string]*models.User),
		nicks: make(map[string]bool),
	}
}

func (m *memoryUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUserStore) Create(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrUserExists
	}
	if m.nicks[user.Usernick] {
		return repository.ErrUsernickExists
	}
	m.users[user.Username] = user
	m.nicks[user.Usernick] = true
	return nil
}

func (m *memoryUserStore) Update(_ context.Context, user *models.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *memoryUserStore) Delete(_ context.Context, username string) error {
	delete(m.users, username)
	return nil
}

func (m *memoryUserStore) ExistsByUsernick(_ context.Context, usernick string) (bool, error) {
	return m.nicks[usernick], nil
}

type authTestEnv struct {
	handlers     *AuthHandlers
	userService  *service.UserService
	jwtService   *service.JWTService
	refreshStore *service.RefreshTokenService
	redis        *miniredis.Miniredis
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := testLogger()
	jwtService, err := service.NewJWTService(&config.JWTConfig{
		SecretKey:     "0123456789abcdef0123456789abcdef",
		AccessExpiry:  30 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}, logger)
	require.NoError(t, err)

	refreshStore := service.NewRefreshTokenService(client, logger)
	userService := service.NewUserService(newMemoryUserStore(), logger)
	authCfg := &config.AuthConfig{
		HomeURL:         "/",
		SignInURL:       "/signin",
		PostLoginURL:    "/my",
		ProfileSetupURL: "/oauthPage",
	}

	return &authTestEnv{
		handlers:     NewAuthHandlers(userService, jwtService, refreshStore, authCfg, logger),
		userService:  userService,
		jwtService:   jwtService,
		refreshStore: refreshStore,
		redis:        mr,
	}
}

func (env *authTestEnv) signUp(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := env.userService.SignUp(context.Background(), service.SignUpInput{
		Username: username,
		Password: password,
		Usernick: strings.SplitN(username, "@", 2)[0],
		Name:     "Tester",
		Gender:   "F",
	})
	require.NoError(t, err)
	return user
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignInSetsCookiesAndRedirects(t *testing.T) {
	env := newAuthTestEnv(t)
	env.signUp(t, "alice@example.com", "secret")

	form := url.Values{"username": {"alice@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	env.handlers.SignIn(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	access := cookieNamed(cookies, middleware.AccessTokenCookie)
	refresh := cookieNamed(cookies, RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 1800, access.MaxAge)
	assert.Equal(t, 7*24*3600, refresh.MaxAge)

	// The refresh token is registered server-side.
	ok, err := env.refreshStore.Exists(context.Background(), refresh.Value)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignInWrongPassword(t *testing.T) {
	env := newAuthTestEnv(t)
	env.signUp(t, "alice@example.com", "secret")

	form := url.Values{"username": {"alice@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	env.handlers.SignIn(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Empty(t, rec.Result().Cookies())
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	pair, err := env.jwtService.CreateTokenPair("u-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)
	require.NoError(t, env.refreshStore.Add(ctx, pair.RefreshToken, env.jwtService.RefreshExpiry()))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()

	env.handlers.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var newPair models.TokenPair
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&newPair))
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)
	assert.Equal(t, "Bearer", newPair.TokenType)

	// Rotation: the presented token is gone, the new one registered.
	ok, err := env.refreshStore.Exists(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = env.refreshStore.Exists(ctx, newPair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := env.jwtService.VerifyTokenOfType(newPair.AccessToken, service.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
}

func TestRefreshRevokedTokenRejected(t *testing.T) {
	env := newAuthTestEnv(t)

	// Structurally valid but never registered.
	pair, err := env.jwtService.CreateTokenPair("u-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()

	env.handlers.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND_TOKEN", body.Error.Code)
}

func TestRefreshAccessTokenRejected(t *testing.T) {
	env := newAuthTestEnv(t)

	// An access token cannot be exchanged.
	token, err := env.jwtService.CreateAccessToken("u-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: token})
	rec := httptest.NewRecorder()

	env.handlers.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "UNSUPPORTED_TOKEN", body.Error.Code)
}

func TestRefreshMissingCookie(t *testing.T) {
	env := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()

	env.handlers.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND_TOKEN", body.Error.Code)
}

func TestLogoutRevokesAndClearsCookies(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	pair, err := env.jwtService.CreateTokenPair("u-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)
	require.NoError(t, env.refreshStore.Add(ctx, pair.RefreshToken, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()

	env.handlers.Logout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	ok, err := env.refreshStore.Exists(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, c := range rec.Result().Cookies() {
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestHomeAnonymous(t *testing.T) {
	env := newAuthTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	env.handlers.Home(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Nil(t, body["user"])
}
