package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RefreshTokenService is the server-side registry of issued refresh tokens.
// A refresh token is only honoured while its entry exists here, which makes
// the registry the revocation authority: deleting the entry invalidates the
// token regardless of its signature and expiry. Redis key TTLs evict stale
// entries without a sweeper.
type RefreshTokenService struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRefreshTokenService(client *redis.Client, logger *logrus.Logger) *RefreshTokenService {
	return &RefreshTokenService{
		client: client,
		logger: logger,
	}
}

func refreshTokenKey(token string) string {
	return fmt.Sprintf("refresh_token:%s", token)
}

// Add registers the token for ttl. An existing entry for the same token is
// overwritten silently.
func (s *RefreshTokenService) Add(ctx context.Context, token string, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	if err := s.client.Set(ctx, refreshTokenKey(token), expiresAt.UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store refresh token")
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// Exists reports whether the token is still registered. False means revoked
// or naturally expired.
func (s *RefreshTokenService) Exists(ctx context.Context, token string) (bool, error) {
	count, err := s.client.Exists(ctx, refreshTokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return count > 0, nil
}

// Revoke removes the token from the registry. Revoking an absent token is
// not an error.
func (s *RefreshTokenService) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, refreshTokenKey(token)).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to revoke refresh token")
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
