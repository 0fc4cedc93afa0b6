package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the verified claims the auth middleware attached
// to the request.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*service.Claims)
	return claims, ok
}

// AccessTokenCookie is the cookie carrying the access token for browser
// clients; API clients may use a Bearer header instead.
const AccessTokenCookie = "accessToken"

type AuthMiddleware struct {
	jwtService *service.JWTService
	entryPoint *AuthEntryPoint
	logger     *logrus.Logger
}

func NewAuthMiddleware(jwtService *service.JWTService, entryPoint *AuthEntryPoint, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		entryPoint: entryPoint,
		logger:     logger,
	}
}

// RequireAuth verifies the access token and attaches its claims to the
// request context. Verification failures never propagate as errors; they
// are classified into a FailureReason and handed to the entry point.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractAccessToken(r)
		if tokenString == "" {
			m.entryPoint.Commence(w, r, ReasonTokenNotFound)
			return
		}

		claims, err := m.jwtService.VerifyTokenOfType(tokenString, service.TokenTypeAccess)
		if err != nil {
			m.logger.WithError(err).Debug("Token verification failed")
			m.entryPoint.Commence(w, r, reasonFromError(err))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractAccessToken prefers the cookie (browser clients) and falls back to
// the Authorization header (API clients).
func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
