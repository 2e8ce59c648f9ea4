package worker

import (
	"context"
	"fmt"

	"budgetplanner/internal/amqp"
	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/mail"
)

// Renderer turns a notification into a ready-to-send email.
type Renderer interface {
	Render(n core.Notification) (mail.Message, error)
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, m mail.Message) error
}

// NotificationWorker delivers the emails queued by the API.
type NotificationWorker struct {
	renderer Renderer
	sender   Sender
	logger   *log.Logger
	audit    *log.StructuredLogger
}

func NewNotificationWorker(renderer Renderer, sender Sender, logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentWorker)
	return &NotificationWorker{
		renderer: renderer,
		sender:   sender,
		logger:   logger,
		audit:    log.NewStructuredLogger(logger),
	}
}

// HandleNotification processes a single notification message from AMQP. A
// returned error makes the consumer requeue the message.
func (w *NotificationWorker) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	w.logger.DebugContext(ctx, "Processing notification message",
		log.FieldMessageID, msg.ID,
		log.FieldNotificationKind, msg.Kind)

	m, err := w.renderer.Render(msg.Notification)
	if err != nil {
		return fmt.Errorf("render notification %s: %w", msg.ID, err)
	}

	if err := w.sender.Send(ctx, m); err != nil {
		return fmt.Errorf("deliver notification %s: %w", msg.ID, err)
	}

	w.audit.LogNotification(ctx, string(msg.Kind), msg.To, msg.ID)
	return nil
}
