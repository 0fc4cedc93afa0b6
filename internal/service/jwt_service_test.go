package service

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestJWTService(t *testing.T, accessExpiry, refreshExpiry time.Duration) *JWTService {
	t.Helper()
	svc, err := NewJWTService(&config.JWTConfig{
		SecretKey:     "0123456789abcdef0123456789abcdef",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	}, testLogger())
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(&config.JWTConfig{SecretKey: "too-short"}, testLogger())
	require.Error(t, err)
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	tokenString, err := svc.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	claims, err := svc.VerifyToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Username)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, []string{"ROLE_USER"}, claims.Roles)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestJWTService(t, 0, 7*24*time.Hour)

	tokenString, err := svc.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenTampered(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	tokenString, err := svc.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	// Flip the signature.
	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.VerifyToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	other, err := NewJWTService(&config.JWTConfig{
		SecretKey:     "ffffffffffffffffffffffffffffffff",
		AccessExpiry:  30 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	}, testLogger())
	require.NoError(t, err)

	tokenString, err := other.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenOfTypeKindMismatch(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	refreshToken, err := svc.CreateRefreshToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = svc.VerifyTokenOfType(refreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrUnsupportedToken)

	claims, err := svc.VerifyTokenOfType(refreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestCreateTokenPair(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	pair, err := svc.CreateTokenPair("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(1800), pair.ExpiresIn)

	accessClaims, err := svc.VerifyTokenOfType(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", accessClaims.Username)

	refreshClaims, err := svc.VerifyTokenOfType(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", refreshClaims.Username)

	// Distinct JTIs even for the same identity.
	assert.NotEqual(t, accessClaims.ID, refreshClaims.ID)
}

func TestUsernameFromToken(t *testing.T) {
	svc := newTestJWTService(t, 30*time.Minute, 7*24*time.Hour)

	tokenString, err := svc.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	username, err := svc.UsernameFromToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", username)

	_, err = svc.UsernameFromToken("corrupted")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// An expired token still yields its username on the unverified fast path.
func TestUsernameFromTokenExpired(t *testing.T) {
	svc := newTestJWTService(t, 0, 7*24*time.Hour)

	tokenString, err := svc.CreateAccessToken("user-1", "alice@example.com", "Alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	username, err := svc.UsernameFromToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", username)
}
