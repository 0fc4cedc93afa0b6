package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/oauth"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

const stateCookie = "oauthState"

type OAuthHandlers struct {
	registry     *oauth.Registry
	loginService *service.OAuthLoginService
	jwtService   *service.JWTService
	oauthCfg     *config.OAuthConfig
	authCfg      *config.AuthConfig
	logger       *logrus.Logger
}

func NewOAuthHandlers(
	registry *oauth.Registry,
	loginService *service.OAuthLoginService,
	jwtService *service.JWTService,
	oauthCfg *config.OAuthConfig,
	authCfg *config.AuthConfig,
	logger *logrus.Logger,
) *OAuthHandlers {
	return &OAuthHandlers{
		registry:     registry,
		loginService: loginService,
		jwtService:   jwtService,
		oauthCfg:     oauthCfg,
		authCfg:      authCfg,
		logger:       logger,
	}
}

// Authorize starts the federated flow: set the CSRF state and send the
// browser to the provider.
func (h *OAuthHandlers) Authorize(w http.ResponseWriter, r *http.Request) {
	provider, err := h.registry.Get(mux.Vars(r)["provider"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(h.oauthCfg.StateCookieExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.authCfg.SecureCookies,
	})

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the federated flow. All failures after the state check
// collapse into one generic 500: the details are logged server-side and
// never reach the client.
func (h *OAuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	provider, err := h.registry.Get(mux.Vars(r)["provider"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		h.logger.WithField("provider", provider.Name()).Warn("OAuth state mismatch")
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	token, err := provider.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.failLogin(w, provider.Name(), err)
		return
	}

	identity, err := provider.FetchIdentity(r.Context(), token)
	if err != nil {
		h.failLogin(w, provider.Name(), err)
		return
	}

	result, err := h.loginService.CompleteLogin(r.Context(), identity)
	if err != nil {
		h.failLogin(w, provider.Name(), err)
		return
	}

	setTokenCookies(w, result.Pair, h.jwtService.AccessExpiry(), h.jwtService.RefreshExpiry(), h.authCfg.SecureCookies)
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

func (h *OAuthHandlers) failLogin(w http.ResponseWriter, provider string, err error) {
	h.logger.WithError(err).WithField("provider", provider).Error("OAuth login failed")
	http.Error(w, "An error occurred during authentication", http.StatusInternalServerError)
}
