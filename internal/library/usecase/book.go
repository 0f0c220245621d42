package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type BookInput struct {
	ID              int64
	Title           string    `validate:"required,max=255"`
	Summary         string    `validate:"required"`
	PublicationDate time.Time `validate:"required"`
	ISBN            string    `validate:"required,isbn13"`
	Pages           int32     `validate:"gt=0"`
	Language        string    `validate:"required,max=50"`
	PublisherID     int64     `validate:"required"`
	Format          string    `validate:"required,max=50"`
	AuthorIDs       []int64   `validate:"dive,required"`
	CategoryIDs     []int64   `validate:"dive,required"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Language = strings.TrimSpace(in.Language)
	in.Format = strings.TrimSpace(in.Format)
	in.AuthorIDs = uniqueIDs(in.AuthorIDs)
	in.CategoryIDs = uniqueIDs(in.CategoryIDs)
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func (s *Usecase) ListBooks(ctx context.Context, in ListInput) (*entity.PageResult[entity.Book], error) {
	ctx, span := s.startSpan(ctx, "ListBooks")
	defer span.End()

	out, err := s.repoDB.ListBooks(ctx, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "book", 0)
	}

	return out, nil
}

// GetBook returns the book with its average rating and rating count.
func (s *Usecase) GetBook(ctx context.Context, id int64) (*entity.BookDetail, error) {
	ctx, span := s.startSpan(ctx, "GetBook")
	defer span.End()

	book, err := s.repoDB.GetBook(ctx, id)
	if err != nil {
		return nil, repoError(ctx, err, "get", "book", id)
	}

	return book, nil
}

func (s *Usecase) CreateBook(ctx context.Context, in BookInput) (*entity.Book, error) {
	ctx, span := s.startSpan(ctx, "CreateBook")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actCreate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	book := entity.Book{
		ID:              s.uid.Generate(),
		Title:           in.Title,
		Summary:         in.Summary,
		PublicationDate: in.PublicationDate,
		ISBN:            in.ISBN,
		Pages:           in.Pages,
		Language:        in.Language,
		PublisherID:     in.PublisherID,
		Format:          in.Format,
		AuthorIDs:       in.AuthorIDs,
		CategoryIDs:     in.CategoryIDs,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repoDB.CreateBook(ctx, book); err != nil {
		return nil, repoError(ctx, err, actCreate, "book", book.ID)
	}

	return &book, nil
}

func (s *Usecase) UpdateBook(ctx context.Context, in BookInput) (*entity.Book, error) {
	ctx, span := s.startSpan(ctx, "UpdateBook")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	current, err := s.repoDB.GetBook(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "book", in.ID)
	}

	book := current.Book
	book.Title = in.Title
	book.Summary = in.Summary
	book.PublicationDate = in.PublicationDate
	book.ISBN = in.ISBN
	book.Pages = in.Pages
	book.Language = in.Language
	book.PublisherID = in.PublisherID
	book.Format = in.Format
	book.AuthorIDs = in.AuthorIDs
	book.CategoryIDs = in.CategoryIDs
	book.UpdatedAt = s.clock.Now()

	if err := s.repoDB.UpdateBook(ctx, book); err != nil {
		return nil, repoError(ctx, err, actUpdate, "book", in.ID)
	}

	return &book, nil
}

func (s *Usecase) DeleteBook(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteBook")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actDelete); err != nil {
		return err
	}

	if err := s.repoDB.DeleteBook(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "book", id)
	}

	return nil
}
