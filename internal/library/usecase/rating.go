package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type ListRatingsInput struct {
	BookID int64
	ListInput
}

type RatingInput struct {
	BookID      int64
	Rating      int16  `validate:"gte=1,lte=5"`
	Title       string `validate:"required,max=255"`
	Comment     string `validate:"max=5000"`
	Recommended bool
}

func (s *Usecase) ListRatings(ctx context.Context, in ListRatingsInput) (*entity.PageResult[entity.Rating], error) {
	ctx, span := s.startSpan(ctx, "ListRatings")
	defer span.End()

	if _, err := s.repoDB.GetBook(ctx, in.BookID); err != nil {
		return nil, repoError(ctx, err, "get", "book", in.BookID)
	}

	out, err := s.repoDB.ListRatings(ctx, in.BookID, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "rating", in.BookID)
	}

	return out, nil
}

// CreateRating records the caller's rating. Each user rates a book once.
func (s *Usecase) CreateRating(ctx context.Context, in RatingInput) (*entity.Rating, error) {
	ctx, span := s.startSpan(ctx, "CreateRating")
	defer span.End()

	clm, err := s.authorize(ctx, objRating, actCreate)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	r := entity.Rating{
		ID:          s.uid.Generate(),
		UserID:      clm.UserID,
		BookID:      in.BookID,
		Rating:      in.Rating,
		Title:       in.Title,
		Comment:     in.Comment,
		Recommended: in.Recommended,
		RatedAt:     s.clock.Now(),
	}

	err = s.repoDB.CreateRating(ctx, r)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("you have already rated this book", goerror.CodeConflict)
	}
	if err != nil {
		return nil, repoError(ctx, err, actCreate, "rating", r.ID)
	}

	return &r, nil
}

// DeleteRating removes the caller's own rating.
func (s *Usecase) DeleteRating(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteRating")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	r, err := s.repoDB.GetRating(ctx, id)
	if err != nil {
		return repoError(ctx, err, "get", "rating", id)
	}
	if r.UserID != clm.UserID {
		return errForbidden
	}

	if err := s.repoDB.DeleteRating(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "rating", id)
	}

	return nil
}
