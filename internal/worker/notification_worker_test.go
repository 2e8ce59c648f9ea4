package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/core"
	"budgetplanner/internal/mail"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func TestHandleNotification(t *testing.T) {
	renderer, err := mail.NewRenderer()
	require.NoError(t, err)
	sender := &fakeSender{}
	w := NewNotificationWorker(renderer, sender, nil)

	msg := amqp.NewNotificationMessage(core.Notification{
		Kind:          core.NotifyVerifyEmail,
		To:            "ada@example.com",
		RecipientName: "Ada",
		Link:          "http://frontend/verify-email?token=t",
	})
	require.NoError(t, w.HandleNotification(context.Background(), msg))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "verify-email?token=t")
}

func TestHandleNotificationFailures(t *testing.T) {
	renderer, err := mail.NewRenderer()
	require.NoError(t, err)

	t.Run("send error is returned for requeue", func(t *testing.T) {
		w := NewNotificationWorker(renderer, &fakeSender{err: errors.New("relay down")}, nil)
		msg := amqp.NewNotificationMessage(core.Notification{Kind: core.NotifyInvitation, To: "g@example.com", Link: "l"})
		assert.Error(t, w.HandleNotification(context.Background(), msg))
	})

	t.Run("unknown kind cannot be rendered", func(t *testing.T) {
		sender := &fakeSender{}
		w := NewNotificationWorker(renderer, sender, nil)
		msg := amqp.NewNotificationMessage(core.Notification{Kind: "fax", To: "g@example.com"})
		assert.Error(t, w.HandleNotification(context.Background(), msg))
		assert.Empty(t, sender.sent)
	})
}
