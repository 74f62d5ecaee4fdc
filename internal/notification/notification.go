package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransferReceived indicates funds arrived from another wallet.
	KindTransferReceived = "transfer_received"
	// KindAccountVerified indicates the user completed email verification.
	KindAccountVerified = "account_verified"
	// KindAccountStatusChanged indicates an admin activated or deactivated the account.
	KindAccountStatusChanged = "account_status_changed"
	// KindPasswordReset carries the password reset link.
	KindPasswordReset = "password_reset"
	// KindPasswordChanged confirms the password was updated.
	KindPasswordChanged = "password_changed"
)

// Message describes a notification payload. Destination is the target user id;
// the delivery channel (email, push) is an implementation concern.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger. It stands in
// for the email sender in development and tests.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
