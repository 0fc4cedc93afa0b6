package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

type UserHandlers struct {
	userService  *service.UserService
	refreshStore *service.RefreshTokenService
	authCfg      *config.AuthConfig
	logger       *logrus.Logger
}

func NewUserHandlers(
	userService *service.UserService,
	refreshStore *service.RefreshTokenService,
	authCfg *config.AuthConfig,
	logger *logrus.Logger,
) *UserHandlers {
	return &UserHandlers{
		userService:  userService,
		refreshStore: refreshStore,
		authCfg:      authCfg,
		logger:       logger,
	}
}

// Me returns the signed-in user's profile.
func (h *UserHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.userService.FindByUsername(r.Context(), claims.Username)
	if err != nil || user == nil {
		h.logger.WithError(err).Error("Failed to load profile")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

type ProfileUpdateRequest struct {
	Usernick string `json:"usernick"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
}

// UpdateMe edits the signed-in user's profile. A federated user lands here
// from the profile setup page to pick a gender and nickname.
func (h *UserHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), claims.Username, service.UserEditInput{
		Usernick: req.Usernick,
		Name:     req.Name,
		Gender:   req.Gender,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update profile")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// DeleteMe removes the account, revokes the refresh token and drops the
// session cookies.
func (h *UserHandlers) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.userService.DeleteUser(r.Context(), claims.Username); err != nil {
		h.logger.WithError(err).Error("Failed to delete account")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete account")
		return
	}

	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil && cookie.Value != "" {
		if err := h.refreshStore.Revoke(r.Context(), cookie.Value); err != nil {
			h.logger.WithError(err).Error("Failed to revoke refresh token on account deletion")
		}
	}

	clearTokenCookies(w, h.authCfg.SecureCookies)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
