package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type ListInput struct {
	Page int
	Size int
}

func (in ListInput) page() entity.Page {
	return entity.Page{Page: in.Page, Size: in.Size}.Normalize()
}

type AuthorInput struct {
	ID          int64
	Name        string     `validate:"required,max=255"`
	Biography   string     `validate:"required"`
	BirthDate   time.Time  `validate:"required"`
	DeathDate   *time.Time `validate:"omitempty"`
	Nationality string     `validate:"required,max=100"`
}

func (in *AuthorInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Biography = strings.TrimSpace(in.Biography)
	in.Nationality = strings.TrimSpace(in.Nationality)
}

func (s *Usecase) validateAuthor(in AuthorInput) error {
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if in.DeathDate != nil && in.DeathDate.Before(in.BirthDate) {
		return goerror.NewInvalidInput(nil, "death_date", "death_date must not be before birth_date")
	}
	return nil
}

func (s *Usecase) ListAuthors(ctx context.Context, in ListInput) (*entity.PageResult[entity.Author], error) {
	ctx, span := s.startSpan(ctx, "ListAuthors")
	defer span.End()

	out, err := s.repoDB.ListAuthors(ctx, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "author", 0)
	}

	return out, nil
}

func (s *Usecase) GetAuthor(ctx context.Context, id int64) (*entity.Author, error) {
	ctx, span := s.startSpan(ctx, "GetAuthor")
	defer span.End()

	author, err := s.repoDB.GetAuthor(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "author", id)
	}

	return author, nil
}

func (s *Usecase) CreateAuthor(ctx context.Context, in AuthorInput) (*entity.Author, error) {
	ctx, span := s.startSpan(ctx, "CreateAuthor")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actCreate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validateAuthor(in); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	author := entity.Author{
		ID:          s.uid.Generate(),
		Name:        in.Name,
		Biography:   in.Biography,
		BirthDate:   in.BirthDate,
		DeathDate:   in.DeathDate,
		Nationality: in.Nationality,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repoDB.CreateAuthor(ctx, author); err != nil {
		return nil, repoError(ctx, err, actCreate, "author", author.ID)
	}

	return &author, nil
}

func (s *Usecase) UpdateAuthor(ctx context.Context, in AuthorInput) (*entity.Author, error) {
	ctx, span := s.startSpan(ctx, "UpdateAuthor")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validateAuthor(in); err != nil {
		return nil, err
	}

	author, err := s.repoDB.GetAuthor(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "author", in.ID)
	}

	author.Name = in.Name
	author.Biography = in.Biography
	author.BirthDate = in.BirthDate
	author.DeathDate = in.DeathDate
	author.Nationality = in.Nationality
	author.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdateAuthor(ctx, *author); err != nil {
		return nil, repoError(ctx, err, actUpdate, "author", in.ID)
	}

	return author, nil
}

func (s *Usecase) DeleteAuthor(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteAuthor")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actDelete); err != nil {
		return err
	}

	if err := s.repoDB.DeleteAuthor(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "author", id)
	}

	return nil
}
