package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/notification/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/messaging"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucConsumer
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if v := messaging.HeaderValue(msg, keyOfCorrelationID); len(v) > 0 {
		return instrument.SetCorrelationID(ctx, string(v))
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) UserRegistration(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "UserRegistration")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: user registration notification", "topic", msg.Topic())

	var payload event.UserRegistrationMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of user registration", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeUserRegistration(ctx, usecase.ConsumeUserRegistrationInput{
		UserID:   payload.UserID,
		Username: payload.Username,
		Email:    payload.Email,
		FullName: payload.FullName,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume user registration", "user_id", payload.UserID, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) LoanCreated(ctx context.Context, msg messaging.Message) error {
	return h.loan(ctx, "LoanCreated", entity.TriggerKeyLoanCreated, msg)
}

func (h *MQHandler) LoanReturned(ctx context.Context, msg messaging.Message) error {
	return h.loan(ctx, "LoanReturned", entity.TriggerKeyLoanReturned, msg)
}

func (h *MQHandler) LoanOverdue(ctx context.Context, msg messaging.Message) error {
	return h.loan(ctx, "LoanOverdue", entity.TriggerKeyLoanOverdue, msg)
}

func (h *MQHandler) loan(ctx context.Context, op string, tk entity.TriggerKey, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, op)
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: loan notification", "trigger_key", tk.String())

	var payload event.LoanMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of loan event", "trigger_key", tk.String(), "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeLoan(ctx, usecase.ConsumeLoanInput{
		TriggerKey: tk,
		LoanID:     payload.LoanID,
		UserID:     payload.UserID,
		Email:      payload.Email,
		FullName:   payload.FullName,
		BookID:     payload.BookID,
		BookTitle:  payload.BookTitle,
		DueAt:      payload.DueAt,
		ReturnedAt: payload.ReturnedAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume loan event", "trigger_key", tk.String(), "loan_id", payload.LoanID, "error", err)
		return err
	}

	return nil
}
