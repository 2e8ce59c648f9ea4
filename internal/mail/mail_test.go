package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
)

func TestRenderInvitation(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	m, err := r.Render(core.Notification{
		Kind:       core.NotifyInvitation,
		To:         "guest@example.com",
		BudgetName: `Trip "Rome"`,
		SenderName: "<Ada>",
		Link:       "http://frontend/invitations?token=abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", m.To)
	assert.Equal(t, `Invitation to join the budget "Trip "Rome""`, m.Subject)
	assert.Contains(t, m.HTML, "&lt;Ada&gt;")
	assert.Contains(t, m.HTML, `href="http://frontend/invitations?token=abc"`)
}

func TestRenderVerifyEmail(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	m, err := r.Render(core.Notification{
		Kind:          core.NotifyVerifyEmail,
		To:            "ada@example.com",
		RecipientName: "Ada",
		Link:          "http://frontend/verify-email?token=xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, "Verify your Budget Planner account", m.Subject)
	assert.Contains(t, m.HTML, "Welcome Ada!")
	assert.Contains(t, m.HTML, "verify-email?token=xyz")
}

func TestRenderUnknownKind(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(core.Notification{Kind: "sms", To: "x"})
	assert.Error(t, err)
}

func TestSMTPSender(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	err := s.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\n<p>hi</p>"))
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html")

	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	assert.Error(t, s.Send(context.Background(), Message{To: "ada@example.com"}))
}

func TestComposeEncodesSubject(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{From: "noreply@example.com"})
	msg := string(s.compose(Message{To: "a@b.c", Subject: "Vérifiez", HTML: "x"}, time.Unix(0, 0)))
	assert.Contains(t, msg, "Subject: =?utf-8?q?V=C3=A9rifiez?=")
}
