package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type ListCopiesInput struct {
	BookID int64
	ListInput
}

type CopyInput struct {
	ID              int64
	BookID          int64     `validate:"required"`
	Condition       string    `validate:"required,max=50"`
	AcquisitionDate time.Time `validate:"required"`
	Location        string    `validate:"required,max=255"`
}

// ListCopies lists copies, optionally of a single book.
func (s *Usecase) ListCopies(ctx context.Context, in ListCopiesInput) (*entity.PageResult[entity.Copy], error) {
	ctx, span := s.startSpan(ctx, "ListCopies")
	defer span.End()

	out, err := s.repoDB.ListCopies(ctx, in.BookID, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "copy", in.BookID)
	}

	return out, nil
}

func (s *Usecase) GetCopy(ctx context.Context, id int64) (*entity.Copy, error) {
	ctx, span := s.startSpan(ctx, "GetCopy")
	defer span.End()

	cp, err := s.repoDB.GetCopy(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "copy", id)
	}

	return cp, nil
}

func (s *Usecase) CreateCopy(ctx context.Context, in CopyInput) (*entity.Copy, error) {
	ctx, span := s.startSpan(ctx, "CreateCopy")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actCreate); err != nil {
		return nil, err
	}

	in.Condition = strings.TrimSpace(in.Condition)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	cp := entity.Copy{
		ID:              s.uid.Generate(),
		BookID:          in.BookID,
		Condition:       in.Condition,
		AcquisitionDate: in.AcquisitionDate,
		Location:        in.Location,
		Available:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repoDB.CreateCopy(ctx, cp); err != nil {
		return nil, repoError(ctx, err, actCreate, "copy", cp.ID)
	}

	return &cp, nil
}

// UpdateCopy edits the descriptive fields. Availability only changes through loans.
func (s *Usecase) UpdateCopy(ctx context.Context, in CopyInput) (*entity.Copy, error) {
	ctx, span := s.startSpan(ctx, "UpdateCopy")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	in.Condition = strings.TrimSpace(in.Condition)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cp, err := s.repoDB.GetCopy(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "copy", in.ID)
	}

	cp.BookID = in.BookID
	cp.Condition = in.Condition
	cp.AcquisitionDate = in.AcquisitionDate
	cp.Location = in.Location
	cp.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdateCopy(ctx, *cp); err != nil {
		return nil, repoError(ctx, err, actUpdate, "copy", in.ID)
	}

	return cp, nil
}

func (s *Usecase) DeleteCopy(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteCopy")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actDelete); err != nil {
		return err
	}

	if err := s.repoDB.DeleteCopy(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "copy", id)
	}

	return nil
}
