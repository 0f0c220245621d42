package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

type ListCommentsInput struct {
	BookID int64
	ListInput
}

type CommentInput struct {
	ID      int64
	BookID  int64
	Content string `validate:"required,max=5000"`
	Rating  int16  `validate:"gte=1,lte=5"`
}

type ModerateCommentInput struct {
	ID      int64
	Visible bool
}

// ListComments returns the visible comments of a book.
func (s *Usecase) ListComments(ctx context.Context, in ListCommentsInput) (*entity.PageResult[entity.Comment], error) {
	ctx, span := s.startSpan(ctx, "ListComments")
	defer span.End()

	if _, err := s.repoDB.GetBook(ctx, in.BookID); err != nil {
		return nil, repoError(ctx, err, "get", "book", in.BookID)
	}

	out, err := s.repoDB.ListComments(ctx, in.BookID, in.page())
	if err != nil {
		return nil, repoError(ctx, err, "list", "comment", in.BookID)
	}

	return out, nil
}

func (s *Usecase) CreateComment(ctx context.Context, in CommentInput) (*entity.Comment, error) {
	ctx, span := s.startSpan(ctx, "CreateComment")
	defer span.End()

	clm, err := s.authorize(ctx, objComment, actCreate)
	if err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	c := entity.Comment{
		ID:          s.uid.Generate(),
		BookID:      in.BookID,
		UserID:      clm.UserID,
		Content:     in.Content,
		Rating:      in.Rating,
		PublishedAt: now,
		Visible:     true,
		UpdatedAt:   now,
	}
	if err := s.repoDB.CreateComment(ctx, c); err != nil {
		return nil, repoError(ctx, err, actCreate, "comment", c.ID)
	}

	return &c, nil
}

// UpdateComment edits the caller's own comment.
func (s *Usecase) UpdateComment(ctx context.Context, in CommentInput) (*entity.Comment, error) {
	ctx, span := s.startSpan(ctx, "UpdateComment")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	c, err := s.repoDB.GetComment(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "comment", in.ID)
	}
	if c.UserID != clm.UserID {
		return nil, errForbidden
	}

	c.Content = in.Content
	c.Rating = in.Rating
	c.UpdatedAt = s.clock.Now()
	if err := s.repoDB.UpdateComment(ctx, *c); err != nil {
		return nil, repoError(ctx, err, actUpdate, "comment", in.ID)
	}

	return c, nil
}

// DeleteComment removes a comment. Owners and moderators may delete.
func (s *Usecase) DeleteComment(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "DeleteComment")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	c, err := s.repoDB.GetComment(ctx, id)
	if err != nil {
		return repoError(ctx, err, "get", "comment", id)
	}
	if c.UserID != clm.UserID && !s.can(ctx, clm.UserID, objComment, actModerate) {
		return errForbidden
	}

	if err := s.repoDB.DeleteComment(ctx, id); err != nil {
		return repoError(ctx, err, actDelete, "comment", id)
	}

	return nil
}

// ModerateComment sets the visibility and marks the comment as moderated.
func (s *Usecase) ModerateComment(ctx context.Context, in ModerateCommentInput) (*entity.Comment, error) {
	ctx, span := s.startSpan(ctx, "ModerateComment")
	defer span.End()

	if _, err := s.authorize(ctx, objComment, actModerate); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repoDB.ModerateComment(ctx, in.ID, in.Visible, now); err != nil {
		return nil, repoError(ctx, err, actUpdate, "comment", in.ID)
	}

	c, err := s.repoDB.GetComment(ctx, in.ID)
	if err != nil {
		return nil, repoError(ctx, err, "get", "comment", in.ID)
	}

	return c, nil
}
