package mq_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/identity/outbound/mq"
	"github.com/shandysiswandi/libris/internal/identity/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/messaging"
	"github.com/shandysiswandi/libris/internal/shared/event"
)

type recordPublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (p *recordPublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.destination = destination
	p.msg = msg
	return messaging.PublishResult{Topic: destination}, p.err
}

func TestMessaging_PublishUserRegistration(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		pub := &recordPublisher{}
		m := mq.NewMessaging(pub, instrument.NewNoop())
		ctx := instrument.SetCorrelationID(context.Background(), "cid-1")

		// Act
		err := m.PublishUserRegistration(ctx, usecase.UserRegistrationEvent{UserID: 7, Username: "alice", Email: "alice@example.com", FullName: "Alice"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, event.UserRegistrationDestination, pub.destination)
		assert.Equal(t, []byte("7"), pub.msg.Key)
		assert.Equal(t, []messaging.Header{{Key: "cID", Value: []byte("cid-1")}}, pub.msg.Headers)

		var body event.UserRegistrationMessage
		require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
		assert.Equal(t, event.UserRegistrationMessage{UserID: 7, Username: "alice", Email: "alice@example.com", FullName: "Alice"}, body)
	})

	t.Run("BrokerError", func(t *testing.T) {
		boom := errors.New("broker down")
		m := mq.NewMessaging(&recordPublisher{err: boom}, instrument.NewNoop())

		err := m.PublishUserRegistration(context.Background(), usecase.UserRegistrationEvent{UserID: 1})

		assert.ErrorIs(t, err, boom)
	})
}
