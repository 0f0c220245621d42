package mail

import (
	"context"
	"io"
)

// Message is a transport agnostic email. When From is empty the transport
// uses its configured sender. HTMLBody wins over TextBody when both are set.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// hasRecipient reports whether any of To, Cc or Bcc is set.
func (m Message) hasRecipient() bool {
	return len(m.To)+len(m.Cc)+len(m.Bcc) > 0
}

// Mail sends a Message through a transport.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
