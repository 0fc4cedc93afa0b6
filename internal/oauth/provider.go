package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/models"
	"golang.org/x/oauth2"
)

var (
	ErrProviderNotFound = errors.New("oauth provider not found")
	ErrUserInfoFailed   = errors.New("failed to fetch user info")
)

// Identity is what a completed federated handshake asserts about the caller.
// Username is the provider-verified email address, which doubles as the
// local account lookup key. It only lives for the duration of the callback.
type Identity struct {
	Provider string
	Subject  string
	Username string
	Name     string
	Roles    []string
}

// Provider wraps one oauth2 provider: the code-flow config plus the
// provider-specific userinfo endpoint and response shape.
type Provider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	parse       func(body []byte) (*Identity, error)
}

func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL returns the provider's authorization URL carrying the CSRF
// state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the callback code for a provider token.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

// FetchIdentity resolves the provider token to an Identity via the userinfo
// endpoint.
func (p *Provider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUserInfoFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}

	identity, err := p.parse(body)
	if err != nil {
		return nil, err
	}

	identity.Provider = p.name
	if len(identity.Roles) == 0 {
		identity.Roles = []string{models.RoleUser}
	}

	return identity, nil
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]*Provider
}

func NewRegistry(cfg *config.OAuthConfig) *Registry {
	r := &Registry{providers: make(map[string]*Provider)}

	if cfg.GoogleClientID != "" {
		r.providers["google"] = newGoogleProvider(cfg)
	}
	if cfg.KakaoClientID != "" {
		r.providers["kakao"] = newKakaoProvider(cfg)
	}

	return r
}

func (r *Registry) Get(name string) (*Provider, error) {
	provider, ok := r.providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return provider, nil
}

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	kakaoAuthURL     = "https://kauth.kakao.com/oauth/authorize"
	kakaoTokenURL    = "https://kauth.kakao.com/oauth/token"
	kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"
)

func callbackURL(cfg *config.OAuthConfig, provider string) string {
	return cfg.BaseURL + "/login/oauth2/code/" + provider
}

func newGoogleProvider(cfg *config.OAuthConfig) *Provider {
	return &Provider{
		name: "google",
		config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			RedirectURL:  callbackURL(cfg, "google"),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		userInfoURL: googleUserInfoURL,
		parse:       parseGoogleProfile,
	}
}

func newKakaoProvider(cfg *config.OAuthConfig) *Provider {
	return &Provider{
		name: "kakao",
		config: &oauth2.Config{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoSecret,
			RedirectURL:  callbackURL(cfg, "kakao"),
			Scopes:       []string{"account_email", "profile_nickname"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  kakaoAuthURL,
				TokenURL: kakaoTokenURL,
			},
		},
		userInfoURL: kakaoUserInfoURL,
		parse:       parseKakaoProfile,
	}
}

func parseGoogleProfile(body []byte) (*Identity, error) {
	var profile struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: profile has no email", ErrUserInfoFailed)
	}

	return &Identity{
		Subject:  profile.Sub,
		Username: profile.Email,
		Name:     profile.Name,
	}, nil
}

func parseKakaoProfile(body []byte) (*Identity, error) {
	var profile struct {
		ID      int64 `json:"id"`
		Account struct {
			Email string `json:"email"`
		} `json:"kakao_account"`
		Properties struct {
			Nickname string `json:"nickname"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserInfoFailed, err)
	}
	if profile.Account.Email == "" {
		return nil, fmt.Errorf("%w: profile has no email", ErrUserInfoFailed)
	}

	return &Identity{
		Subject:  fmt.Sprintf("%d", profile.ID),
		Username: profile.Account.Email,
		Name:     profile.Properties.Nickname,
	}, nil
}
