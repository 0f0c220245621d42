package email

import (
	"context"

	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

// Mail sends one-time code emails synchronously. There is no retry: a failed
// send is reported to the caller, who asks for a new code.
type Mail struct {
	client mail.Mail
	from   string
	ins    instrument.Instrumentation
}

func New(client mail.Mail, from string, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, from: from, ins: ins}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("identity.outbound.email").Start(ctx, "Send")
	defer span.End()

	if msg.From == "" {
		msg.From = m.from
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
