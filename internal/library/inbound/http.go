package inbound

import (
	"context"
	"strconv"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/library/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

type uc interface {
	ListAuthors(ctx context.Context, in usecase.ListInput) (*entity.PageResult[entity.Author], error)
	GetAuthor(ctx context.Context, id int64) (*entity.Author, error)
	CreateAuthor(ctx context.Context, in usecase.AuthorInput) (*entity.Author, error)
	UpdateAuthor(ctx context.Context, in usecase.AuthorInput) (*entity.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error

	ListPublishers(ctx context.Context, in usecase.ListInput) (*entity.PageResult[entity.Publisher], error)
	GetPublisher(ctx context.Context, id int64) (*entity.Publisher, error)
	CreatePublisher(ctx context.Context, in usecase.PublisherInput) (*entity.Publisher, error)
	UpdatePublisher(ctx context.Context, in usecase.PublisherInput) (*entity.Publisher, error)
	DeletePublisher(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, in usecase.ListInput) (*entity.PageResult[entity.Category], error)
	GetCategory(ctx context.Context, id int64) (*entity.Category, error)
	CreateCategory(ctx context.Context, in usecase.CategoryInput) (*entity.Category, error)
	UpdateCategory(ctx context.Context, in usecase.CategoryInput) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListBooks(ctx context.Context, in usecase.ListInput) (*entity.PageResult[entity.Book], error)
	GetBook(ctx context.Context, id int64) (*entity.BookDetail, error)
	CreateBook(ctx context.Context, in usecase.BookInput) (*entity.Book, error)
	UpdateBook(ctx context.Context, in usecase.BookInput) (*entity.Book, error)
	DeleteBook(ctx context.Context, id int64) error

	ListCopies(ctx context.Context, in usecase.ListCopiesInput) (*entity.PageResult[entity.Copy], error)
	GetCopy(ctx context.Context, id int64) (*entity.Copy, error)
	CreateCopy(ctx context.Context, in usecase.CopyInput) (*entity.Copy, error)
	UpdateCopy(ctx context.Context, in usecase.CopyInput) (*entity.Copy, error)
	DeleteCopy(ctx context.Context, id int64) error

	UploadAsset(ctx context.Context, in usecase.UploadInput) (*usecase.UploadOutput, error)

	CreateLoan(ctx context.Context, in usecase.CreateLoanInput) (*entity.Loan, error)
	GetLoan(ctx context.Context, id int64) (*entity.Loan, error)
	ListLoans(ctx context.Context, in usecase.ListLoansInput) (*entity.PageResult[entity.Loan], error)
	ReturnLoan(ctx context.Context, id int64) (*entity.Loan, error)
	UpdateLoan(ctx context.Context, in usecase.UpdateLoanInput) (*entity.Loan, error)

	ListComments(ctx context.Context, in usecase.ListCommentsInput) (*entity.PageResult[entity.Comment], error)
	CreateComment(ctx context.Context, in usecase.CommentInput) (*entity.Comment, error)
	UpdateComment(ctx context.Context, in usecase.CommentInput) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ModerateComment(ctx context.Context, in usecase.ModerateCommentInput) (*entity.Comment, error)

	ListRatings(ctx context.Context, in usecase.ListRatingsInput) (*entity.PageResult[entity.Rating], error)
	CreateRating(ctx context.Context, in usecase.RatingInput) (*entity.Rating, error)
	DeleteRating(ctx context.Context, id int64) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Catalogue (reads are public)
	r.GET("/api/v1/library/authors", end.ListAuthors)
	r.GET("/api/v1/library/authors/:id", end.GetAuthor)
	r.POST("/api/v1/library/authors", end.CreateAuthor)
	r.PUT("/api/v1/library/authors/:id", end.UpdateAuthor)
	r.DELETE("/api/v1/library/authors/:id", end.DeleteAuthor)
	r.PUT("/api/v1/library/authors/:id/photo", end.UploadAuthorPhoto)

	r.GET("/api/v1/library/publishers", end.ListPublishers)
	r.GET("/api/v1/library/publishers/:id", end.GetPublisher)
	r.POST("/api/v1/library/publishers", end.CreatePublisher)
	r.PUT("/api/v1/library/publishers/:id", end.UpdatePublisher)
	r.DELETE("/api/v1/library/publishers/:id", end.DeletePublisher)
	r.PUT("/api/v1/library/publishers/:id/logo", end.UploadPublisherLogo)

	r.GET("/api/v1/library/categories", end.ListCategories)
	r.GET("/api/v1/library/categories/:id", end.GetCategory)
	r.POST("/api/v1/library/categories", end.CreateCategory)
	r.PUT("/api/v1/library/categories/:id", end.UpdateCategory)
	r.DELETE("/api/v1/library/categories/:id", end.DeleteCategory)

	r.GET("/api/v1/library/books", end.ListBooks)
	r.GET("/api/v1/library/books/:id", end.GetBook)
	r.POST("/api/v1/library/books", end.CreateBook)
	r.PUT("/api/v1/library/books/:id", end.UpdateBook)
	r.DELETE("/api/v1/library/books/:id", end.DeleteBook)
	r.PUT("/api/v1/library/books/:id/cover", end.UploadBookCover)

	r.GET("/api/v1/library/copies", end.ListCopies)
	r.GET("/api/v1/library/copies/:id", end.GetCopy)
	r.POST("/api/v1/library/copies", end.CreateCopy)
	r.PUT("/api/v1/library/copies/:id", end.UpdateCopy)
	r.DELETE("/api/v1/library/copies/:id", end.DeleteCopy)

	// Loans (need authenticated)
	r.POST("/api/v1/library/loans", end.CreateLoan)
	r.GET("/api/v1/library/loans", end.ListLoans)
	r.GET("/api/v1/library/loans/:id", end.GetLoan)
	r.PUT("/api/v1/library/loans/:id", end.UpdateLoan)
	r.POST("/api/v1/library/loans/:id/return", end.ReturnLoan)

	// Reviews
	r.GET("/api/v1/library/books/:id/comments", end.ListComments)
	r.POST("/api/v1/library/books/:id/comments", end.CreateComment)
	r.PUT("/api/v1/library/comments/:id", end.UpdateComment)
	r.DELETE("/api/v1/library/comments/:id", end.DeleteComment)
	r.PATCH("/api/v1/library/comments/:id/moderation", end.ModerateComment)

	r.GET("/api/v1/library/books/:id/ratings", end.ListRatings)
	r.POST("/api/v1/library/books/:id/ratings", end.CreateRating)
	r.DELETE("/api/v1/library/ratings/:id", end.DeleteRating)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseIDs(field string, raw []string) ([]int64, error) {
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, goerror.NewInvalidInput(nil, field, field+" must contain numeric ids")
		}
		out = append(out, id)
	}
	return out, nil
}

func listInput(r *router.Request) (usecase.ListInput, error) {
	page, err := r.GetQueryInt("page")
	if err != nil {
		return usecase.ListInput{}, err
	}
	size, err := r.GetQueryInt("size")
	if err != nil {
		return usecase.ListInput{}, err
	}
	return usecase.ListInput{Page: page, Size: size}, nil
}
