package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Verification failures. The auth middleware maps these onto the failure
// reasons carried to the entry point, so the distinction matters: a
// structurally broken or forged token is ErrInvalidToken, an expired one is
// ErrExpiredToken (never ErrInvalidToken), and a token of the wrong kind or
// algorithm is ErrUnsupportedToken.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("expired token")
	ErrUnsupportedToken = errors.New("unsupported token")
)

type JWTService struct {
	secretKey     []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	logger        *logrus.Logger
}

func NewJWTService(cfg *config.JWTConfig, logger *logrus.Logger) (*JWTService, error) {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 bytes")
	}

	return &JWTService{
		secretKey:     secretKey,
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
		logger:        logger,
	}, nil
}

type Claims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Roles    []string `json:"roles"`
	Type     string   `json:"type"`
	jwt.RegisteredClaims
}

func (s *JWTService) CreateAccessToken(userID, username, name string, roles []string) (string, error) {
	return s.mint(TokenTypeAccess, userID, username, name, roles, s.accessExpiry)
}

func (s *JWTService) CreateRefreshToken(userID, username, name string, roles []string) (string, error) {
	return s.mint(TokenTypeRefresh, userID, username, name, roles, s.refreshExpiry)
}

// CreateTokenPair mints an access and a refresh token for the same identity
// in one call.
func (s *JWTService) CreateTokenPair(userID, username, name string, roles []string) (*models.TokenPair, error) {
	accessToken, err := s.CreateAccessToken(userID, username, name, roles)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.CreateRefreshToken(userID, username, name, roles)
	if err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

func (s *JWTService) mint(tokenType, userID, username, name string, roles []string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Name:     name,
		Roles:    roles,
		Type:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign token")
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, classifyParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyTokenOfType verifies the token and additionally requires its kind
// claim to match. A structurally valid token of the wrong kind is
// ErrUnsupportedToken.
func (s *JWTService) VerifyTokenOfType(tokenString, tokenType string) (*Claims, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != tokenType {
		return nil, ErrUnsupportedToken
	}

	return claims, nil
}

// UsernameFromToken reads the username claim without verifying the
// signature. Used for fast-path lookups like the home page greeting; callers
// that grant access must use VerifyToken instead.
func (s *JWTService) UsernameFromToken(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return "", ErrInvalidToken
	}

	return claims.Username, nil
}

// classifyParseError maps jwt/v5 parse errors onto the service sentinels.
// Expiry is checked first so an expired token with a valid signature is
// never reported as invalid.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
		return ErrInvalidToken
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrUnsupportedToken
	default:
		return ErrInvalidToken
	}
}

// AccessExpiry is the configured access-token lifetime, exposed for cookie
// max-age calculation.
func (s *JWTService) AccessExpiry() time.Duration {
	return s.accessExpiry
}

// RefreshExpiry is the configured refresh-token lifetime.
func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}
