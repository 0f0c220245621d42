package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/libris/internal/notification/entity"
)

const dateLayout = "January 2, 2006"

type ConsumeUserRegistrationInput struct {
	UserID   int64  `validate:"required,gt=0"`
	Username string `validate:"required"`
	Email    string `validate:"required,email"`
	FullName string
}

// ConsumeUserRegistration welcomes a new member. Invalid payloads are dropped
// so a malformed message cannot block the consumer.
func (s *Usecase) ConsumeUserRegistration(ctx context.Context, in ConsumeUserRegistrationInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserRegistration")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid user registration event", "user_id", in.UserID, "error", err)
		return nil
	}

	fullName := in.FullName
	if fullName == "" {
		fullName = in.Username
	}

	s.deliver(ctx, delivery{
		UserID:     in.UserID,
		Email:      in.Email,
		TriggerKey: entity.TriggerKeyUserRegistration,
		Data: map[string]any{
			"user_id":   strconv.FormatInt(in.UserID, 10),
			"username":  in.Username,
			"full_name": fullName,
		},
	})

	return nil
}

type ConsumeLoanInput struct {
	TriggerKey entity.TriggerKey `validate:"required,oneof=loan_created loan_returned loan_overdue"`
	LoanID     int64             `validate:"required,gt=0"`
	UserID     int64             `validate:"required,gt=0"`
	Email      string            `validate:"required,email"`
	FullName   string
	BookID     int64
	BookTitle  string `validate:"required"`
	DueAt      time.Time
	ReturnedAt *time.Time
}

// ConsumeLoan notifies the borrower about a loan lifecycle change.
func (s *Usecase) ConsumeLoan(ctx context.Context, in ConsumeLoanInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeLoan")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid loan event", "trigger_key", in.TriggerKey.String(), "loan_id", in.LoanID, "error", err)
		return nil
	}

	data := map[string]any{
		"loan_id":    strconv.FormatInt(in.LoanID, 10),
		"book_id":    strconv.FormatInt(in.BookID, 10),
		"book_title": in.BookTitle,
		"full_name":  in.FullName,
		"due_at":     in.DueAt.Format(dateLayout),
	}
	if in.ReturnedAt != nil {
		data["returned_at"] = in.ReturnedAt.Format(dateLayout)
	}

	s.deliver(ctx, delivery{
		UserID:     in.UserID,
		Email:      in.Email,
		TriggerKey: in.TriggerKey,
		Data:       data,
	})

	return nil
}
