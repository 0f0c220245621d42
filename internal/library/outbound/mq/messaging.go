package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/libris/internal/library/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/messaging"
	"github.com/shandysiswandi/libris/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishLoanCreated(ctx context.Context, msg usecase.LoanEvent) error {
	return m.publish(ctx, "PublishLoanCreated", event.LoanCreatedDestination, msg)
}

func (m *Messaging) PublishLoanReturned(ctx context.Context, msg usecase.LoanEvent) error {
	return m.publish(ctx, "PublishLoanReturned", event.LoanReturnedDestination, msg)
}

func (m *Messaging) PublishLoanOverdue(ctx context.Context, msg usecase.LoanEvent) error {
	return m.publish(ctx, "PublishLoanOverdue", event.LoanOverdueDestination, msg)
}

// publish keys every loan event by loan id so one loan's events stay ordered
// on partitioned drivers.
func (m *Messaging) publish(ctx context.Context, op, destination string, msg usecase.LoanEvent) error {
	ctx, span := m.ins.Tracer("library.outbound.mq").Start(ctx, op)
	defer span.End()

	body, err := json.Marshal(event.LoanMessage{
		LoanID:     msg.LoanID,
		UserID:     msg.UserID,
		Email:      msg.Email,
		FullName:   msg.FullName,
		CopyID:     msg.CopyID,
		BookID:     msg.BookID,
		BookTitle:  msg.BookTitle,
		BorrowedAt: msg.BorrowedAt,
		DueAt:      msg.DueAt,
		ReturnedAt: msg.ReturnedAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.LoanID, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
