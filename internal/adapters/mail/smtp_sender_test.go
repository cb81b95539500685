package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	domainMail "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/mail"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSender(t *testing.T) *SMTPSender {
	s, err := NewSMTPSender(&config.Config{
		SMTPHost: "smtp.local", SMTPPort: 2525,
		SMTPUsername: "u", SMTPPassword: "p", SMTPFrom: "noreply@lms.local",
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSMTPSender_SendActivation(t *testing.T) {
	s := newSender(t)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	orig := sendMail
	sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}
	t.Cleanup(func() { sendMail = orig })

	err := s.Send(context.Background(), domainMail.Message{
		To:       "a@x.com",
		Subject:  "Activate your account",
		Template: domainMail.TemplateActivation,
		Data: map[string]any{
			"user":           map[string]any{"name": "A"},
			"activationCode": "4821",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "smtp.local:2525", gotAddr)
	require.Equal(t, []string{"a@x.com"}, gotTo)
	require.Contains(t, gotMsg, "Hello A,")
	require.Contains(t, gotMsg, "4821")
	require.True(t, strings.HasPrefix(gotMsg, "From: noreply@lms.local\r\n"))
}

func TestSMTPSender_RenderOrder(t *testing.T) {
	s := newSender(t)

	body, err := s.Render(domainMail.TemplateOrderConfirmation, map[string]any{
		"order": map[string]any{"id": "abc123", "name": "Go", "price": 10, "date": "Jan 2, 2026"},
	})
	require.NoError(t, err)
	require.Contains(t, string(body), "#abc123")
	require.Contains(t, string(body), "$10")
}

func TestSMTPSender_UnknownTemplate(t *testing.T) {
	s := newSender(t)
	_, err := s.Render("missing.html", nil)
	require.Error(t, err)
}

func TestSMTPSender_TransportError(t *testing.T) {
	s := newSender(t)
	orig := sendMail
	sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	t.Cleanup(func() { sendMail = orig })

	err := s.Send(context.Background(), domainMail.Message{
		To: "a@x.com", Template: domainMail.TemplateActivation,
		Data: map[string]any{"user": map[string]any{"name": "A"}, "activationCode": "1"},
	})
	require.ErrorContains(t, err, "refused")
}
