package inbound

import (
	"github.com/shandysiswandi/libris/internal/library/usecase"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

// ListComments returns the visible comments of a book.
// @Summary List comments
// @Tags Library, Reviews
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} router.successResponse{data=[]CommentResponse} "Comments"
// @Router /api/v1/library/books/{id}/comments [get]
func (h *HTTPEndpoint) ListComments(r *router.Request) (any, error) {
	bookID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListComments(r.Context(), usecase.ListCommentsInput{BookID: bookID, ListInput: in})
	if err != nil {
		return nil, err
	}

	return toPage(out, toComment), nil
}

// @Router /api/v1/library/books/{id}/comments [post]
func (h *HTTPEndpoint) CreateComment(r *router.Request) (any, error) {
	bookID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req CommentRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreateComment(r.Context(), usecase.CommentInput{BookID: bookID, Content: req.Content, Rating: req.Rating})
	if err != nil {
		return nil, err
	}

	return Created[CommentResponse]{v: toComment(*out)}, nil
}

// @Router /api/v1/library/comments/{id} [put]
func (h *HTTPEndpoint) UpdateComment(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req CommentRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.UpdateComment(r.Context(), usecase.CommentInput{ID: id, Content: req.Content, Rating: req.Rating})
	if err != nil {
		return nil, err
	}

	return toComment(*out), nil
}

// @Router /api/v1/library/comments/{id} [delete]
func (h *HTTPEndpoint) DeleteComment(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteComment(r.Context(), id)
}

// ModerateComment shows or hides a comment.
// @Summary Moderate comment
// @Tags Library, Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body ModerationRequest true "Visibility"
// @Success 200 {object} router.successResponse{data=CommentResponse} "Moderated"
// @Failure 403 {object} router.errorResponse "Librarian only"
// @Router /api/v1/library/comments/{id}/moderation [patch]
func (h *HTTPEndpoint) ModerateComment(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req ModerationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.ModerateComment(r.Context(), usecase.ModerateCommentInput{ID: id, Visible: req.Visible})
	if err != nil {
		return nil, err
	}

	return toComment(*out), nil
}

func (h *HTTPEndpoint) ListRatings(r *router.Request) (any, error) {
	bookID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}
	in, err := listInput(r)
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListRatings(r.Context(), usecase.ListRatingsInput{BookID: bookID, ListInput: in})
	if err != nil {
		return nil, err
	}

	return toPage(out, toRating), nil
}

// CreateRating rates a book once per user.
// @Summary Rate book
// @Tags Library, Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Param request body RatingRequest true "Rating payload"
// @Success 201 {object} router.successResponse{data=RatingResponse} "Rated"
// @Failure 409 {object} router.errorResponse "Already rated"
// @Router /api/v1/library/books/{id}/ratings [post]
func (h *HTTPEndpoint) CreateRating(r *router.Request) (any, error) {
	bookID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req RatingRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.CreateRating(r.Context(), usecase.RatingInput{
		BookID:      bookID,
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		Recommended: req.Recommended,
	})
	if err != nil {
		return nil, err
	}

	return Created[RatingResponse]{v: toRating(*out)}, nil
}

// @Router /api/v1/library/ratings/{id} [delete]
func (h *HTTPEndpoint) DeleteRating(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.DeleteRating(r.Context(), id)
}
