package handlers

import (
	"net/http"
	"time"

	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/models"
)

const RefreshTokenCookie = "refreshToken"

// setTokenCookies emits both tokens as http-only cookies scoped to the whole
// site, each with a max-age equal to its TTL.
func setTokenCookies(w http.ResponseWriter, pair *models.TokenPair, accessTTL, refreshTTL time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
	})
}

func clearTokenCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
		})
	}
}
