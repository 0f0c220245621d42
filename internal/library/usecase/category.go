package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type CategoryInput struct {
	ID          int64
	Name        string `validate:"required,max=255"`
	Description string `validate:"required"`
	Slug        string `validate:"required,max=255,slug"`
}

func (s *Usecase) ListCategories(ctx context.Context, in ListInput) (*entity.PageResult[entity.Category], error) {
	ctx, span := s.startSpan(ctx, "ListCategories")
	defer span.End()

	out, err := s.repoDB.ListCategories(ctx, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "category", 0)
	}

	return out, nil
}

func (s *Usecase) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "GetCategory")
	defer span.End()

	cat, err := s.repoDB.GetCategory(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "category", id)
	}

	return cat, nil
}

// CreateCategory stores a category. A slug already taken is a conflict.
func (s *Usecase) CreateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "CreateCategory")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actCreate); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	cat := entity.Category{
		ID:          s.uid.Generate(),
		Name:        in.Name,
		Description: in.Description,
		Slug:        in.Slug,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repoDB.CreateCategory(ctx, cat); err != nil {
		return nil, repoError(ctx, err, actCreate, "category", cat.ID)
	}

	return &cat, nil
}

func (s *Usecase) UpdateCategory(ctx context.Context, in CategoryInput) (*entity.Category, error) {
	ctx, span := s.startSpan(ctx, "UpdateCategory")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cat, err := s.repoDB.GetCategory(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "category", in.ID)
	}

	cat.Name = in.Name
	cat.Description = in.Description
	cat.Slug = in.Slug
	cat.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdateCategory(ctx, *cat); err != nil {
		return nil, repoError(ctx, err, actUpdate, "category", in.ID)
	}

	return cat, nil
}

func (s *Usecase) DeleteCategory(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteCategory")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actDelete); err != nil {
		return err
	}

	if err := s.repoDB.DeleteCategory(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "category", id)
	}

	return nil
}
