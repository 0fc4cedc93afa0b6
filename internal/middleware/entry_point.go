package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/sirupsen/logrus"
)

// noReasonMessage is shown on the interactive path when no failure reason
// was attached at all (a bare unauthenticated page visit).
const noReasonMessage = "로그인 해주세요"

// AuthEntryPoint answers every request that reached a protected resource
// without valid authentication. API callers get a structured 401 body; a
// browser navigation gets an alert script that sends it back to the home
// page.
type AuthEntryPoint struct {
	authCfg *config.AuthConfig
	logger  *logrus.Logger
}

func NewAuthEntryPoint(authCfg *config.AuthConfig, logger *logrus.Logger) *AuthEntryPoint {
	return &AuthEntryPoint{
		authCfg: authCfg,
		logger:  logger,
	}
}

type authErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Commence dispatches the failure. reason may be empty when nothing
// upstream attached one.
func (e *AuthEntryPoint) Commence(w http.ResponseWriter, r *http.Request, reason FailureReason) {
	if isAPIRequest(r) {
		e.handleAPIResponse(w, r, reason)
	} else {
		e.handlePageResponse(w, reason)
	}
}

// isAPIRequest classifies the caller: the XHR marker header or the API path
// prefix means a programmatic client, everything else is a browser
// navigation.
func isAPIRequest(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (e *AuthEntryPoint) handleAPIResponse(w http.ResponseWriter, r *http.Request, reason FailureReason) {
	if reason == "" {
		reason = ReasonUnknown
	}

	e.logger.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"reason": string(reason),
	}).Error("Unauthenticated API request")

	// The sign-in location rides alongside the 401 body.
	w.Header().Set("Location", e.authCfg.SignInURL)
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(authErrorBody{
		Message: reason.Message(),
		Code:    string(reason),
	})
}

func (e *AuthEntryPoint) handlePageResponse(w http.ResponseWriter, reason FailureReason) {
	alertMessage := noReasonMessage
	if reason != "" {
		alertMessage = reason.Message()
	}

	script := "<script type='text/javascript'>" +
		"alert('" + alertMessage + "');" +
		"window.location.href='" + e.authCfg.HomeURL + "';" +
		"</script>"

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.Write([]byte(script))
}
