package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/libris/internal/pkg/config"
	"github.com/shandysiswandi/libris/internal/pkg/goroutine"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/messaging"
	"github.com/shandysiswandi/libris/internal/pkg/uid"
	"github.com/shandysiswandi/libris/internal/shared/event"
)

// RegisterMQConsumer starts one consumer per enabled name in
// modules.notification.consumer_names. An empty list enables none.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc ucConsumer,
	ins instrument.Instrumentation,
) {
	h := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")

	consumers := []struct {
		name    string // consumer group on kafka, queue group on nats
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.UserRegistrationConsumerNotification,
			topic:   event.UserRegistrationDestination,
			handler: h.UserRegistration,
		},
		{
			name:    event.LoanCreatedConsumerNotification,
			topic:   event.LoanCreatedDestination,
			handler: h.LoanCreated,
		},
		{
			name:    event.LoanReturnedConsumerNotification,
			topic:   event.LoanReturnedDestination,
			handler: h.LoanReturned,
		},
		{
			name:    event.LoanOverdueConsumerNotification,
			topic:   event.LoanOverdueDestination,
			handler: h.LoanOverdue,
		},
	}

	for _, c := range consumers {
		if !slices.Contains(enabled, c.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "running job for handling consumer", "consumer", c.name)
			return consumer.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithGroup(c.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(10),
				messaging.WithMaxInFlight(10),
			)
		})
	}
}
