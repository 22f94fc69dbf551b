package notification

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log instead of delivering them.
// It is intended for development and testing purposes.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only notification sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Name returns the sender name.
func (s *LogSender) Name() string {
	return "log"
}

// Send logs the notification.
func (s *LogSender) Send(ctx context.Context, n *Notification) error {
	s.logger.InfoContext(ctx, "notification",
		slog.String("kind", string(n.Kind)),
		slog.String("recipient", n.Recipient),
		slog.String("order_number", n.Order.OrderNumber),
		slog.Int64("total_pence", n.Order.TotalPence),
	)
	return nil
}
