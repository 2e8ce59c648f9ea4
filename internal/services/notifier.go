package services

import (
	"context"
	"log/slog"

	"budgetplanner/internal/core"
)

// Notifier hands an email off for delivery. Implementations must not retry:
// an error aborts the transaction the call was made from.
type Notifier interface {
	Notify(ctx context.Context, n core.Notification) error
}

// LogNotifier writes notifications to the log instead of delivering them.
// It is used when no message broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg core.Notification) error {
	n.logger.InfoContext(ctx, "Notification not delivered, broker disabled",
		"kind", msg.Kind,
		"to", msg.To,
		"link", msg.Link)
	return nil
}
