package middleware

import (
	"errors"

	"github.com/kimoju01/omg-project/internal/service"
)

// FailureReason classifies why authentication failed. It is attached to the
// request context at the point of detection and consumed by the entry point,
// which turns it into a client-appropriate response.
type FailureReason string

const (
	ReasonInvalidToken     FailureReason = "INVALID_TOKEN"
	ReasonExpiredToken     FailureReason = "EXPIRED_TOKEN"
	ReasonUnsupportedToken FailureReason = "UNSUPPORTED_TOKEN"
	ReasonTokenNotFound    FailureReason = "NOT_FOUND_TOKEN"
	ReasonUnknown          FailureReason = "UNKNOWN_ERROR"
)

// reasonMessages are the user-facing messages, one per reason plus the
// unknown fallback.
var reasonMessages = map[FailureReason]string{
	ReasonInvalidToken:     "유효하지 않은 토큰입니다. 다시 로그인해주세요.",
	ReasonExpiredToken:     "토큰이 만료되었습니다. 다시 로그인해주세요.",
	ReasonUnsupportedToken: "지원되지 않는 토큰입니다. 다시 로그인해주세요.",
	ReasonTokenNotFound:    "로그인 후 이용해주세요",
	ReasonUnknown:          "알 수 없는 오류가 발생했습니다. 다시 시도해주세요.",
}

// Message returns the localized message for the reason, falling back to the
// unknown-error message.
func (r FailureReason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return reasonMessages[ReasonUnknown]
}

// reasonFromError maps token-codec verification errors onto reasons.
func reasonFromError(err error) FailureReason {
	switch {
	case errors.Is(err, service.ErrExpiredToken):
		return ReasonExpiredToken
	case errors.Is(err, service.ErrUnsupportedToken):
		return ReasonUnsupportedToken
	case errors.Is(err, service.ErrInvalidToken):
		return ReasonInvalidToken
	default:
		return ReasonUnknown
	}
}
