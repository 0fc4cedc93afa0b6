package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/gomail.v2"
)

var (
	ErrCodeNotFound    = errors.New("verification code not found or expired")
	ErrCodeMismatch    = errors.New("verification code mismatch")
	ErrTooManyAttempts = errors.New("maximum verification attempts exceeded")
)

// MailSender delivers mail. The gomail implementation is used in production;
// tests substitute a recorder.
type MailSender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

// MailService issues and verifies email verification codes. Codes live in
// the same kind of Redis TTL registry as refresh tokens: a bcrypt hash with
// an attempt counter, evicted by key expiry.
type MailService struct {
	client *redis.Client
	sender MailSender
	cfg    *config.MailConfig
	logger *logrus.Logger
}

func NewMailService(client *redis.Client, sender MailSender, cfg *config.MailConfig, logger *logrus.Logger) *MailService {
	return &MailService{
		client: client,
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

func mailCodeKey(mail string) string {
	return fmt.Sprintf("mail_code:%s", mail)
}

// SendCode generates a code, registers it and dispatches the mail in the
// background so the request does not wait on SMTP.
func (s *MailService) SendCode(ctx context.Context, mail string) error {
	code, err := s.generateCode(s.cfg.CodeLength)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	codeData := models.MailCodeData{
		CodeHash:  string(hashed),
		Mail:      mail,
		Attempts:  0,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(s.cfg.CodeExpiry),
	}

	dataJSON, err := json.Marshal(codeData)
	if err != nil {
		return fmt.Errorf("failed to marshal code data: %w", err)
	}

	if err := s.client.Set(ctx, mailCodeKey(mail), dataJSON, s.cfg.CodeExpiry).Err(); err != nil {
		s.logger.WithError(err).Error("Failed to store verification code")
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	go func() {
		body := fmt.Sprintf("인증번호는 %s 입니다. %d분 안에 입력해주세요.", code, int(s.cfg.CodeExpiry.Minutes()))
		if err := s.sender.Send(mail, "OMG 이메일 인증번호", body); err != nil {
			s.logger.WithError(err).WithField("mail", mail).Error("Failed to send verification mail")
		}
	}()

	return nil
}

// VerifyCode checks the submitted code and consumes it on success. A wrong
// code burns an attempt; hitting the attempt cap deletes the entry.
func (s *MailService) VerifyCode(ctx context.Context, mail, code string) (bool, error) {
	key := mailCodeKey(mail)

	dataJSON, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, ErrCodeNotFound
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get verification code")
		return false, fmt.Errorf("failed to get verification code: %w", err)
	}

	var codeData models.MailCodeData
	if err := json.Unmarshal([]byte(dataJSON), &codeData); err != nil {
		return false, fmt.Errorf("failed to unmarshal code data: %w", err)
	}

	if time.Now().After(codeData.ExpiresAt) {
		s.client.Del(ctx, key)
		return false, ErrCodeNotFound
	}

	if codeData.Attempts >= s.cfg.MaxAttempts {
		s.client.Del(ctx, key)
		return false, ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword([]byte(codeData.CodeHash), []byte(code)); err != nil {
		codeData.Attempts++
		updatedJSON, _ := json.Marshal(codeData)
		s.client.Set(ctx, key, updatedJSON, time.Until(codeData.ExpiresAt))
		return false, ErrCodeMismatch
	}

	s.client.Del(ctx, key)
	return true, nil
}

func (s *MailService) generateCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += num.String()
	}
	return code, nil
}
