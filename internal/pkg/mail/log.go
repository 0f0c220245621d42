package mail

import (
	"context"
	"log/slog"
)

// Log writes messages to the structured logger instead of a relay. Only meant
// for local development where no SMTP server is running.
type Log struct{}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	if !msg.hasRecipient() {
		return ErrSMTPNoRecipients
	}

	slog.InfoContext(ctx, "mail captured by log driver",
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}

func (l *Log) Close() error {
	return nil
}
