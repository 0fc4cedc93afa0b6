package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

type MailHandlers struct {
	mailService *service.MailService
	userService *service.UserService
	logger      *logrus.Logger
}

func NewMailHandlers(mailService *service.MailService, userService *service.UserService, logger *logrus.Logger) *MailHandlers {
	return &MailHandlers{
		mailService: mailService,
		userService: userService,
		logger:      logger,
	}
}

type MailRequest struct {
	Mail string `json:"mail"`
}

type VerificationRequest struct {
	Mail string `json:"mail"`
	Code string `json:"code"`
}

// SendCode dispatches a verification code to the given address.
func (h *MailHandlers) SendCode(w http.ResponseWriter, r *http.Request) {
	var req MailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mail == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.mailService.SendCode(r.Context(), req.Mail); err != nil {
		h.logger.WithError(err).Error("Failed to send verification code")
		respondWithError(w, http.StatusInternalServerError, "MAIL_SEND_FAILED", "Failed to send verification code")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "verification code sent"})
}

// VerifyCode checks a submitted verification code.
func (h *MailHandlers) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mail == "" || req.Code == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	verified, err := h.mailService.VerifyCode(r.Context(), req.Mail, req.Code)
	if err != nil && !errors.Is(err, service.ErrCodeMismatch) && !errors.Is(err, service.ErrCodeNotFound) && !errors.Is(err, service.ErrTooManyAttempts) {
		h.logger.WithError(err).Error("Failed to verify code")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify code")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

// CheckEmail reports whether an account with the address already exists.
func (h *MailHandlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req MailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Mail == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	exists, err := h.userService.ExistsByUsername(r.Context(), req.Mail)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check email")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check email")
		return
	}

	message := "사용 가능한 아이디입니다."
	if exists {
		message = "아이디가 이미 존재합니다."
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"exists": exists, "message": message})
}

// CheckUsernick reports whether a nickname is taken.
func (h *MailHandlers) CheckUsernick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Usernick string `json:"usernick"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Usernick == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	exists, err := h.userService.ExistsByUsernick(r.Context(), req.Usernick)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check usernick")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check usernick")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
