package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures the outgoing mail so tests can read the code
// back out of the body. Sends happen on a goroutine, hence the channel.
type recordingSender struct {
	sent chan sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan sentMail, 1)}
}

func (r *recordingSender) Send(to, subject, body string) error {
	r.sent <- sentMail{To: to, Subject: subject, Body: body}
	return nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (r *recordingSender) waitForCode(t *testing.T) string {
	t.Helper()
	select {
	case m := <-r.sent:
		code := codePattern.FindString(m.Body)
		require.NotEmpty(t, code, "mail body should carry the code: %q", m.Body)
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for verification mail")
		return ""
	}
}

func newTestMailService(t *testing.T) (*MailService, *recordingSender, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	sender := newRecordingSender()
	cfg := &config.MailConfig{
		From:        "noreply@omg.example.com",
		CodeLength:  6,
		CodeExpiry:  3 * time.Minute,
		MaxAttempts: 3,
	}
	return NewMailService(client, sender, cfg, testLogger()), sender, mr
}

func TestMailCodeRoundTrip(t *testing.T) {
	svc, sender, _ := newTestMailService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "alice@example.com"))
	code := sender.waitForCode(t)

	ok, err := svc.VerifyCode(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	// A code is single use.
	_, err = svc.VerifyCode(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestMailCodeMismatch(t *testing.T) {
	svc, sender, _ := newTestMailService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "alice@example.com"))
	code := sender.waitForCode(t)

	ok, err := svc.VerifyCode(ctx, "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrCodeMismatch)
	assert.False(t, ok)

	// Wrong attempts do not consume the code.
	ok, err = svc.VerifyCode(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMailCodeAttemptCap(t *testing.T) {
	svc, sender, _ := newTestMailService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "alice@example.com"))
	code := sender.waitForCode(t)

	for i := 0; i < 3; i++ {
		_, err := svc.VerifyCode(ctx, "alice@example.com", "000000")
		assert.ErrorIs(t, err, ErrCodeMismatch)
	}

	// The cap burns the entry, even for the right code.
	_, err := svc.VerifyCode(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	_, err = svc.VerifyCode(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestMailCodeExpiry(t *testing.T) {
	svc, sender, mr := newTestMailService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "alice@example.com"))
	code := sender.waitForCode(t)

	mr.FastForward(4 * time.Minute)

	_, err := svc.VerifyCode(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestMailCodeUnknownMail(t *testing.T) {
	svc, _, _ := newTestMailService(t)

	_, err := svc.VerifyCode(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}
