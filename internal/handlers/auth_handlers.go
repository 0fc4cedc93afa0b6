package handlers

import (
	"errors"
	"net/http"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

type AuthHandlers struct {
	userService  *service.UserService
	jwtService   *service.JWTService
	refreshStore *service.RefreshTokenService
	authCfg      *config.AuthConfig
	logger       *logrus.Logger
}

func NewAuthHandlers(
	userService *service.UserService,
	jwtService *service.JWTService,
	refreshStore *service.RefreshTokenService,
	authCfg *config.AuthConfig,
	logger *logrus.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		userService:  userService,
		jwtService:   jwtService,
		refreshStore: refreshStore,
		authCfg:      authCfg,
		logger:       logger,
	}
}

// Home greets a signed-in visitor. The username comes from the unverified
// fast path; anything that grants access goes through RequireAuth instead.
func (h *AuthHandlers) Home(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AccessTokenCookie)
	if err != nil || cookie.Value == "" {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	username, err := h.jwtService.UsernameFromToken(cookie.Value)
	if err != nil {
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	user, err := h.userService.FindByUsername(r.Context(), username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load home page user")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load user")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// SignUp creates a local account from the sign-up form. Any failure sends
// the browser back to the form.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	input := service.SignUpInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Usernick: r.PostFormValue("usernick"),
		Name:     r.PostFormValue("name"),
		Gender:   r.PostFormValue("gender"),
	}

	if input.Username == "" || input.Password == "" {
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	if _, err := h.userService.SignUp(r.Context(), input); err != nil {
		h.logger.WithError(err).WithField("username", input.Username).Error("Sign-up failed")
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.authCfg.SignInURL, http.StatusSeeOther)
}

// SignIn verifies local credentials and establishes the cookie session.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, h.authCfg.SignInURL, http.StatusSeeOther)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.userService.Authenticate(r.Context(), username, password)
	if err != nil {
		h.logger.WithError(err).WithField("username", username).Info("Sign-in failed")
		http.Redirect(w, r, h.authCfg.SignInURL, http.StatusSeeOther)
		return
	}

	pair, err := h.jwtService.CreateTokenPair(user.ID, user.Username, user.Name, user.Roles)
	if err != nil {
		h.logger.WithError(err).Error("Failed to mint tokens")
		http.Error(w, "An error occurred during authentication", http.StatusInternalServerError)
		return
	}

	if err := h.refreshStore.Add(r.Context(), pair.RefreshToken, h.jwtService.RefreshExpiry()); err != nil {
		h.logger.WithError(err).Error("Failed to store refresh token")
		http.Error(w, "An error occurred during authentication", http.StatusInternalServerError)
		return
	}

	setTokenCookies(w, pair, h.jwtService.AccessExpiry(), h.jwtService.RefreshExpiry(), h.authCfg.SecureCookies)
	http.Redirect(w, r, h.authCfg.PostLoginURL, http.StatusSeeOther)
}

// Refresh exchanges a registered refresh token for a fresh pair. The
// presented token must still exist server-side; a structurally valid but
// revoked token is rejected. The old token is revoked and replaced.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	tokenString := refreshTokenFromRequest(r)
	if tokenString == "" {
		respondWithError(w, http.StatusUnauthorized, string(middleware.ReasonTokenNotFound), middleware.ReasonTokenNotFound.Message())
		return
	}

	claims, err := h.jwtService.VerifyTokenOfType(tokenString, service.TokenTypeRefresh)
	if err != nil {
		reason := middleware.ReasonInvalidToken
		switch {
		case errors.Is(err, service.ErrExpiredToken):
			reason = middleware.ReasonExpiredToken
		case errors.Is(err, service.ErrUnsupportedToken):
			reason = middleware.ReasonUnsupportedToken
		}
		respondWithError(w, http.StatusUnauthorized, string(reason), reason.Message())
		return
	}

	exists, err := h.refreshStore.Exists(r.Context(), tokenString)
	if err != nil {
		h.logger.WithError(err).Error("Failed to look up refresh token")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh tokens")
		return
	}
	if !exists {
		respondWithError(w, http.StatusUnauthorized, string(middleware.ReasonTokenNotFound), middleware.ReasonTokenNotFound.Message())
		return
	}

	pair, err := h.jwtService.CreateTokenPair(claims.UserID, claims.Username, claims.Name, claims.Roles)
	if err != nil {
		h.logger.WithError(err).Error("Failed to mint tokens")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh tokens")
		return
	}

	// Rotation: the presented token dies with this exchange.
	if err := h.refreshStore.Revoke(r.Context(), tokenString); err != nil {
		h.logger.WithError(err).Error("Failed to revoke rotated refresh token")
	}
	if err := h.refreshStore.Add(r.Context(), pair.RefreshToken, h.jwtService.RefreshExpiry()); err != nil {
		h.logger.WithError(err).Error("Failed to store refresh token")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh tokens")
		return
	}

	setTokenCookies(w, pair, h.jwtService.AccessExpiry(), h.jwtService.RefreshExpiry(), h.authCfg.SecureCookies)
	respondWithJSON(w, http.StatusOK, pair)
}

// Logout revokes the refresh token and drops both cookies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if tokenString := refreshTokenFromRequest(r); tokenString != "" {
		if err := h.refreshStore.Revoke(r.Context(), tokenString); err != nil {
			h.logger.WithError(err).Error("Failed to revoke refresh token on logout")
		}
	}

	clearTokenCookies(w, h.authCfg.SecureCookies)
	http.Redirect(w, r, h.authCfg.HomeURL, http.StatusSeeOther)
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
