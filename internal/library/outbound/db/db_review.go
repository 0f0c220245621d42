package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/library/entity"
)

const (
	commentColumns = `id, book_id, user_id, content, rating, published_at, visible, moderated, updated_at`
	ratingColumns  = `id, user_id, book_id, rating, title, comment, recommended, rated_at`
)

func scanComment(row pgx.CollectableRow) (entity.Comment, error) {
	var c entity.Comment
	err := row.Scan(&c.ID, &c.BookID, &c.UserID, &c.Content, &c.Rating, &c.PublishedAt, &c.Visible, &c.Moderated, &c.UpdatedAt)
	return c, err
}

func scanRating(row pgx.CollectableRow) (entity.Rating, error) {
	var r entity.Rating
	err := row.Scan(&r.ID, &r.UserID, &r.BookID, &r.Rating, &r.Title, &r.Comment, &r.Recommended, &r.RatedAt)
	return r, err
}

// ListComments returns only visible comments, newest first.
func (s *DB) ListComments(ctx context.Context, bookID int64, page entity.Page) (_ *entity.PageResult[entity.Comment], err error) {
	ctx, span := s.startSpan(ctx, "ListComments")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_comments WHERE book_id = $1 AND visible`,
		`SELECT `+commentColumns+` FROM library_comments WHERE book_id = $1 AND visible
		ORDER BY published_at DESC, id DESC LIMIT $2 OFFSET $3`,
		page, scanComment, bookID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetComment(ctx context.Context, id int64) (_ *entity.Comment, err error) {
	ctx, span := s.startSpan(ctx, "GetComment")
	defer func() { s.endSpan(span, err) }()

	c, err := getOne(ctx, s, `SELECT `+commentColumns+` FROM library_comments WHERE id = $1`, scanComment, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return c, nil
}

func (s *DB) CreateComment(ctx context.Context, in entity.Comment) (err error) {
	ctx, span := s.startSpan(ctx, "CreateComment")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_comments (id, book_id, user_id, content, rating, published_at, visible, moderated, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		in.ID, in.BookID, in.UserID, in.Content, in.Rating, in.PublishedAt, in.Visible, in.Moderated, in.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateComment(ctx context.Context, in entity.Comment) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateComment")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE library_comments SET content = $2, rating = $3, updated_at = $4 WHERE id = $1`,
		in.ID, in.Content, in.Rating, in.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) ModerateComment(ctx context.Context, id int64, visible bool, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ModerateComment")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE library_comments SET visible = $2, moderated = TRUE, updated_at = $3 WHERE id = $1`,
		id, visible, at)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) DeleteComment(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteComment")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_comments", id))
}

func (s *DB) ListRatings(ctx context.Context, bookID int64, page entity.Page) (_ *entity.PageResult[entity.Rating], err error) {
	ctx, span := s.startSpan(ctx, "ListRatings")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_ratings WHERE book_id = $1`,
		`SELECT `+ratingColumns+` FROM library_ratings WHERE book_id = $1 ORDER BY rated_at DESC, id DESC LIMIT $2 OFFSET $3`,
		page, scanRating, bookID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetRating(ctx context.Context, id int64) (_ *entity.Rating, err error) {
	ctx, span := s.startSpan(ctx, "GetRating")
	defer func() { s.endSpan(span, err) }()

	r, err := getOne(ctx, s, `SELECT `+ratingColumns+` FROM library_ratings WHERE id = $1`, scanRating, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return r, nil
}

// CreateRating inserts a rating. A second rating by the same user for the same
// book violates the unique key and comes back as ErrConflict.
func (s *DB) CreateRating(ctx context.Context, in entity.Rating) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRating")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_ratings (id, user_id, book_id, rating, title, comment, recommended, rated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.UserID, in.BookID, in.Rating, in.Title, in.Comment, in.Recommended, in.RatedAt)

	return s.mapError(err)
}

func (s *DB) DeleteRating(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteRating")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_ratings", id))
}
