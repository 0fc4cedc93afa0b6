package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/kimoju01/omg-project/internal/oauth"
	"github.com/sirupsen/logrus"
)

var ErrNoIdentity = errors.New("no federated identity")

// OAuthLoginService bridges a completed federated handshake into the local
// token scheme. It does not auto-provision accounts: a federated identity
// whose email has no local user fails the login, and nothing is minted or
// stored for it.
type OAuthLoginService struct {
	jwtService   *JWTService
	refreshStore *RefreshTokenService
	users        UserStore
	authCfg      *config.AuthConfig
	logger       *logrus.Logger
}

func NewOAuthLoginService(
	jwtService *JWTService,
	refreshStore *RefreshTokenService,
	users UserStore,
	authCfg *config.AuthConfig,
	logger *logrus.Logger,
) *OAuthLoginService {
	return &OAuthLoginService{
		jwtService:   jwtService,
		refreshStore: refreshStore,
		users:        users,
		authCfg:      authCfg,
		logger:       logger,
	}
}

// LoginResult is the single-shot outcome of a federated login: the minted
// pair and where to send the browser next.
type LoginResult struct {
	User        *models.User
	Pair        *models.TokenPair
	RedirectURL string
}

// CompleteLogin resolves the identity to a local user, mints the token pair,
// registers the refresh token and decides the post-login redirect. Users
// with an incomplete profile are sent to the profile setup page.
func (s *OAuthLoginService) CompleteLogin(ctx context.Context, identity *oauth.Identity) (*LoginResult, error) {
	if identity == nil || identity.Username == "" {
		return nil, ErrNoIdentity
	}

	user, err := s.users.GetByUsername(ctx, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		s.logger.WithField("username", identity.Username).Info("Federated login for unknown user")
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, identity.Username)
	}

	pair, err := s.jwtService.CreateTokenPair(user.ID, user.Username, user.Name, user.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.refreshStore.Add(ctx, pair.RefreshToken, s.jwtService.RefreshExpiry()); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"provider": identity.Provider,
	}).Info("Federated login succeeded")

	redirectURL := s.authCfg.PostLoginURL
	if !user.ProfileComplete() {
		redirectURL = s.authCfg.ProfileSetupURL
	}

	return &LoginResult{
		User:        user,
		Pair:        pair,
		RedirectURL: redirectURL,
	}, nil
}
