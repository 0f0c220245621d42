package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/idempotency"
)

var (
	errCopyUnavailable = goerror.NewBusiness("copy is not available", goerror.CodeConflict)
	errLoanReturned    = goerror.NewBusiness("loan is already returned", goerror.CodeConflict)
	errLoanInFlight    = goerror.NewBusiness("a request with this idempotency key is still in progress", goerror.CodeConflict)
)

type CreateLoanInput struct {
	IdempotencyKey string    `validate:"required,max=128"`
	CopyID         int64     `validate:"required"`
	DueAt          time.Time `validate:"required"`
	Remarks        string    `validate:"max=1000"`
}

type ListLoansInput struct {
	UserID int64
	Status string `validate:"omitempty,oneof=in_progress returned overdue"`
	ListInput
}

type UpdateLoanInput struct {
	ID         int64
	DueAt      time.Time `validate:"required"`
	ReturnedAt *time.Time
	Status     string `validate:"required,oneof=in_progress returned overdue"`
	Remarks    string `validate:"max=1000"`
}

// CreateLoan borrows a copy for the caller. Replaying the same idempotency key
// returns the loan created by the first request.
func (s *Usecase) CreateLoan(ctx context.Context, in CreateLoanInput) (*entity.Loan, error) {
	ctx, span := s.startSpan(ctx, "CreateLoan")
	defer span.End()

	clm, err := s.authorize(ctx, objLoan, actCreate)
	if err != nil {
		return nil, err
	}

	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.Remarks = strings.TrimSpace(in.Remarks)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	if in.DueAt.Before(now) {
		return nil, goerror.NewInvalidInput(nil, "due_at", "due_at must not be in the past")
	}

	key := "library.loan:" + subject(clm.UserID) + ":" + in.IdempotencyKey
	stored, err := s.idempotency.Exec(ctx, key, func(ctx context.Context) (string, error) {
		loan := entity.Loan{
			ID:         s.uid.Generate(),
			CopyID:     in.CopyID,
			UserID:     clm.UserID,
			BorrowedAt: now,
			DueAt:      in.DueAt,
			Status:     entity.LoanStatusInProgress,
			Remarks:    in.Remarks,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err := s.repoDB.CreateLoan(ctx, loan)
		switch {
		case errors.Is(err, goerror.ErrNotFound):
			return "", goerror.NewBusiness("copy not found", goerror.CodeNotFound)
		case errors.Is(err, goerror.ErrConflict):
			slog.WarnContext(ctx, "copy is not available", "copy_id", in.CopyID, "user_id", clm.UserID)
			return "", errCopyUnavailable
		case err != nil:
			slog.ErrorContext(ctx, "failed to repo create loan", "copy_id", in.CopyID, "error", err)
			return "", goerror.NewServer(err)
		}

		s.publishLoan(ctx, loan.ID, s.repoMessaging.PublishLoanCreated)
		return strconv.FormatInt(loan.ID, 10), nil
	})

	var gerr *goerror.Error
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, errLoanInFlight
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "replayed loan request", "user_id", clm.UserID, "loan_id", stored)
	case errors.As(err, &gerr):
		return nil, err
	case err != nil && stored == "":
		slog.ErrorContext(ctx, "failed to run idempotent loan", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	case err != nil:
		// the loan exists, only remembering the key failed
		slog.WarnContext(ctx, "failed to store idempotency result", "loan_id", stored, "error", err)
	}

	loanID, err := strconv.ParseInt(stored, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "invalid stored idempotency result", "value", stored, "error", err)
		return nil, goerror.NewServer(err)
	}

	loan, err := s.repoDB.GetLoan(ctx, loanID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "loan", loanID)
	}

	return loan, nil
}

// GetLoan returns a loan to its borrower or to a librarian.
func (s *Usecase) GetLoan(ctx context.Context, id int64) (*entity.Loan, error) {
	ctx, span := s.startSpan(ctx, "GetLoan")
	defer span.End()

	clm, err := s.authorize(ctx, objLoan, actRead)
	if err != nil {
		return nil, err
	}

	loan, err := s.repoDB.GetLoan(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "loan", id)
	}
	if loan.UserID != clm.UserID && !s.can(ctx, clm.UserID, objLoan, actManage) {
		return nil, goerror.NewBusiness("loan not found", goerror.CodeNotFound)
	}

	return loan, nil
}

// ListLoans lists the caller's loans. Librarians see every loan and may filter by user.
func (s *Usecase) ListLoans(ctx context.Context, in ListLoansInput) (*entity.PageResult[entity.Loan], error) {
	ctx, span := s.startSpan(ctx, "ListLoans")
	defer span.End()

	clm, err := s.authorize(ctx, objLoan, actRead)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	filter := entity.LoanFilter{UserID: in.UserID, Status: entity.LoanStatus(in.Status), Page: in.page()}
	if !s.can(ctx, clm.UserID, objLoan, actManage) {
		filter.UserID = clm.UserID
	}

	out, err := s.repoDB.ListLoans(ctx, filter)
	if err != nil {
		return nil, repoError(ctx, err, "list", "loan", filter.UserID)
	}

	return out, nil
}

// ReturnLoan closes a loan and makes the copy available again.
func (s *Usecase) ReturnLoan(ctx context.Context, id int64) (*entity.Loan, error) {
	ctx, span := s.startSpan(ctx, "ReturnLoan")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	loan, err := s.repoDB.GetLoan(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "loan", id)
	}
	if loan.UserID != clm.UserID && !s.can(ctx, clm.UserID, objLoan, actManage) {
		return nil, errForbidden
	}
	if loan.Status == entity.LoanStatusReturned {
		return nil, errLoanReturned
	}

	now := s.clock.Now()
	err = s.repoDB.ReturnLoan(ctx, id, now)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, errLoanReturned
	}
	if err != nil {
		return nil, repoError(ctx, err, actUpdate, "loan", id)
	}

	loan.Status = entity.LoanStatusReturned
	loan.ReturnedAt = &now
	loan.UpdatedAt = now

	s.publishLoan(ctx, id, s.repoMessaging.PublishLoanReturned)
	return loan, nil
}

// UpdateLoan lets a librarian change the due date, status and remarks.
func (s *Usecase) UpdateLoan(ctx context.Context, in UpdateLoanInput) (*entity.Loan, error) {
	ctx, span := s.startSpan(ctx, "UpdateLoan")
	defer span.End()

	if _, err := s.authorize(ctx, objLoan, actManage); err != nil {
		return nil, err
	}

	in.Remarks = strings.TrimSpace(in.Remarks)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	loan, err := s.repoDB.GetLoan(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "loan", in.ID)
	}

	now := s.clock.Now()
	if err := checkLoanUpdate(loan, in, now); err != nil {
		return nil, err
	}

	status := entity.LoanStatus(in.Status)
	returnedAt := in.ReturnedAt
	if status == entity.LoanStatusReturned && returnedAt == nil {
		returnedAt = loan.ReturnedAt
		if returnedAt == nil {
			returnedAt = &now
		}
	}

	up := entity.UpdateLoan{
		ID:         loan.ID,
		DueAt:      in.DueAt,
		ReturnedAt: returnedAt,
		Status:     status,
		Remarks:    in.Remarks,
		UpdatedAt:  now,
	}
	if err := s.repoDB.UpdateLoan(ctx, up); err != nil {
		return nil, repoError(ctx, err, actUpdate, "loan", in.ID)
	}

	wasReturned := loan.Status == entity.LoanStatusReturned
	loan.DueAt = up.DueAt
	loan.ReturnedAt = up.ReturnedAt
	loan.Status = up.Status
	loan.Remarks = up.Remarks
	loan.UpdatedAt = now

	if !wasReturned && status == entity.LoanStatusReturned {
		s.publishLoan(ctx, loan.ID, s.repoMessaging.PublishLoanReturned)
	}

	return loan, nil
}

func checkLoanUpdate(loan *entity.Loan, in UpdateLoanInput, now time.Time) error {
	status := entity.LoanStatus(in.Status)

	if loan.Status == entity.LoanStatusReturned && status != entity.LoanStatusReturned {
		return goerror.NewBusiness("a returned loan cannot be reopened", goerror.CodeConflict)
	}
	if !in.DueAt.Equal(loan.DueAt) && in.DueAt.Before(now) {
		return goerror.NewInvalidInput(nil, "due_at", "due_at must not be in the past")
	}
	if in.ReturnedAt == nil {
		return nil
	}
	if status != entity.LoanStatusReturned {
		return goerror.NewInvalidInput(nil, "returned_at", "returned_at requires status returned")
	}
	if in.ReturnedAt.Before(loan.BorrowedAt) {
		return goerror.NewInvalidInput(nil, "returned_at", "returned_at must not be before borrowed_at")
	}
	if in.ReturnedAt.Before(in.DueAt) {
		return goerror.NewInvalidInput(nil, "returned_at", "returned_at must not be before due_at")
	}
	return nil
}

// MarkOverdueLoans flags loans past their due date and announces each one.
// It runs as a background job.
func (s *Usecase) MarkOverdueLoans(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "MarkOverdueLoans")
	defer span.End()

	notices, err := s.repoDB.MarkOverdueLoans(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark overdue loans", "error", err)
		return err
	}

	for _, n := range notices {
		if err := s.repoMessaging.PublishLoanOverdue(ctx, loanEvent(n)); err != nil {
			slog.ErrorContext(ctx, "failed to publish loan overdue", "loan_id", n.ID, "error", err)
		}
	}

	if len(notices) > 0 {
		slog.InfoContext(ctx, "loans marked overdue", "count", len(notices))
	}

	return nil
}

// publishLoan loads the borrower and book details and publishes the event.
// Failures are logged, the loan change itself is already committed.
func (s *Usecase) publishLoan(ctx context.Context, loanID int64, publish func(context.Context, LoanEvent) error) {
	n, err := s.repoDB.GetLoanNotice(ctx, loanID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get loan notice", "loan_id", loanID, "error", err)
		return
	}

	if err := publish(ctx, loanEvent(*n)); err != nil {
		slog.ErrorContext(ctx, "failed to publish loan event", "loan_id", loanID, "error", err)
	}
}

func loanEvent(n entity.LoanNotice) LoanEvent {
	return LoanEvent{
		LoanID:     n.ID,
		UserID:     n.UserID,
		Email:      n.Email,
		FullName:   n.FullName,
		CopyID:     n.CopyID,
		BookID:     n.BookID,
		BookTitle:  n.BookTitle,
		BorrowedAt: n.BorrowedAt,
		DueAt:      n.DueAt,
		ReturnedAt: n.ReturnedAt,
	}
}
