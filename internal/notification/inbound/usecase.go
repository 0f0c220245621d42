package inbound

import (
	"context"

	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/notification/usecase"
)

type ucConsumer interface {
	ConsumeUserRegistration(ctx context.Context, in usecase.ConsumeUserRegistrationInput) error
	ConsumeLoan(ctx context.Context, in usecase.ConsumeLoanInput) error
}

type ucStream interface {
	StreamNotifications(ctx context.Context, userID int64) <-chan usecase.StreamEvent
}

type uc interface {
	ucConsumer
	ucStream

	ListInbox(ctx context.Context, in usecase.ListInboxInput) ([]entity.Notification, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkInboxRead(ctx context.Context, in usecase.MarkInboxReadInput) error
	MarkAllInboxRead(ctx context.Context) (int64, error)
	DeleteInbox(ctx context.Context, in usecase.DeleteInboxInput) error
}
