package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/library/entity"
)

const (
	bookColumns = `b.id, b.title, b.summary, b.publication_date, b.isbn, b.pages, b.language, b.cover_url,
		b.publisher_id, b.format, b.created_at, b.updated_at,
		COALESCE((SELECT array_agg(author_id ORDER BY author_id) FROM library_book_authors WHERE book_id = b.id), '{}'),
		COALESCE((SELECT array_agg(category_id ORDER BY category_id) FROM library_book_categories WHERE book_id = b.id), '{}')`
	copyColumns = `id, book_id, condition, acquisition_date, location, available, created_at, updated_at`
)

var assetStatements = map[entity.Asset]string{
	entity.AssetBookCover:     `UPDATE library_books SET cover_url = $2, updated_at = $3 WHERE id = $1`,
	entity.AssetAuthorPhoto:   `UPDATE library_authors SET photo_url = $2, updated_at = $3 WHERE id = $1`,
	entity.AssetPublisherLogo: `UPDATE library_publishers SET logo_url = $2, updated_at = $3 WHERE id = $1`,
}

func scanBook(row pgx.CollectableRow) (entity.Book, error) {
	var b entity.Book
	err := row.Scan(&b.ID, &b.Title, &b.Summary, &b.PublicationDate, &b.ISBN, &b.Pages, &b.Language, &b.CoverURL,
		&b.PublisherID, &b.Format, &b.CreatedAt, &b.UpdatedAt, &b.AuthorIDs, &b.CategoryIDs)
	return b, err
}

func scanBookDetail(row pgx.CollectableRow) (entity.BookDetail, error) {
	var d entity.BookDetail
	b := &d.Book
	err := row.Scan(&b.ID, &b.Title, &b.Summary, &b.PublicationDate, &b.ISBN, &b.Pages, &b.Language, &b.CoverURL,
		&b.PublisherID, &b.Format, &b.CreatedAt, &b.UpdatedAt, &b.AuthorIDs, &b.CategoryIDs,
		&d.RatingAverage, &d.RatingCount)
	return d, err
}

func scanCopy(row pgx.CollectableRow) (entity.Copy, error) {
	var c entity.Copy
	err := row.Scan(&c.ID, &c.BookID, &c.Condition, &c.AcquisitionDate, &c.Location, &c.Available, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *DB) ListBooks(ctx context.Context, page entity.Page) (_ *entity.PageResult[entity.Book], err error) {
	ctx, span := s.startSpan(ctx, "ListBooks")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_books`,
		`SELECT `+bookColumns+` FROM library_books b ORDER BY b.title, b.id LIMIT $1 OFFSET $2`,
		page, scanBook)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// GetBook loads the book with the average and count of its ratings.
func (s *DB) GetBook(ctx context.Context, id int64) (_ *entity.BookDetail, err error) {
	ctx, span := s.startSpan(ctx, "GetBook")
	defer func() { s.endSpan(span, err) }()

	d, err := getOne(ctx, s, `
		SELECT `+bookColumns+`,
			COALESCE((SELECT avg(rating)::float8 FROM library_ratings WHERE book_id = b.id), 0),
			(SELECT count(*) FROM library_ratings WHERE book_id = b.id)
		FROM library_books b WHERE b.id = $1`, scanBookDetail, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return d, nil
}

func (s *DB) CreateBook(ctx context.Context, in entity.Book) (err error) {
	ctx, span := s.startSpan(ctx, "CreateBook")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO library_books
				(id, title, summary, publication_date, isbn, pages, language, publisher_id, format, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			in.ID, in.Title, in.Summary, in.PublicationDate, in.ISBN, in.Pages, in.Language,
			in.PublisherID, in.Format, in.CreatedAt, in.UpdatedAt); err != nil {
			return err
		}

		return linkBook(ctx, tx, in)
	})

	return s.mapError(err)
}

// UpdateBook rewrites the book row and replaces its author and category links.
func (s *DB) UpdateBook(ctx context.Context, in entity.Book) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateBook")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE library_books
			SET title = $2, summary = $3, publication_date = $4, isbn = $5, pages = $6, language = $7,
				publisher_id = $8, format = $9, updated_at = $10
			WHERE id = $1`,
			in.ID, in.Title, in.Summary, in.PublicationDate, in.ISBN, in.Pages, in.Language,
			in.PublisherID, in.Format, in.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if _, err := tx.Exec(ctx, `DELETE FROM library_book_authors WHERE book_id = $1`, in.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM library_book_categories WHERE book_id = $1`, in.ID); err != nil {
			return err
		}

		return linkBook(ctx, tx, in)
	})

	return s.mapError(err)
}

func linkBook(ctx context.Context, tx pgx.Tx, in entity.Book) error {
	if len(in.AuthorIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO library_book_authors (book_id, author_id) SELECT $1, unnest($2::bigint[])`,
			in.ID, in.AuthorIDs); err != nil {
			return err
		}
	}

	if len(in.CategoryIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO library_book_categories (book_id, category_id) SELECT $1, unnest($2::bigint[])`,
			in.ID, in.CategoryIDs); err != nil {
			return err
		}
	}

	return nil
}

func (s *DB) DeleteBook(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteBook")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_books", id))
}

// ListCopies lists every copy, or only those of bookID when it is not zero.
func (s *DB) ListCopies(ctx context.Context, bookID int64, page entity.Page) (_ *entity.PageResult[entity.Copy], err error) {
	ctx, span := s.startSpan(ctx, "ListCopies")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_copies WHERE $1::bigint = 0 OR book_id = $1`,
		`SELECT `+copyColumns+` FROM library_copies WHERE $1::bigint = 0 OR book_id = $1
		ORDER BY acquisition_date, id LIMIT $2 OFFSET $3`,
		page, scanCopy, bookID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetCopy(ctx context.Context, id int64) (_ *entity.Copy, err error) {
	ctx, span := s.startSpan(ctx, "GetCopy")
	defer func() { s.endSpan(span, err) }()

	c, err := getOne(ctx, s, `SELECT `+copyColumns+` FROM library_copies WHERE id = $1`, scanCopy, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return c, nil
}

func (s *DB) CreateCopy(ctx context.Context, in entity.Copy) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCopy")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_copies (id, book_id, condition, acquisition_date, location, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.BookID, in.Condition, in.AcquisitionDate, in.Location, in.Available, in.CreatedAt, in.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateCopy(ctx context.Context, in entity.Copy) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateCopy")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE library_copies SET book_id = $2, condition = $3, acquisition_date = $4, location = $5, updated_at = $6
		WHERE id = $1`,
		in.ID, in.BookID, in.Condition, in.AcquisitionDate, in.Location, in.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) DeleteCopy(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCopy")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_copies", id))
}

func (s *DB) UpdateAssetURL(ctx context.Context, asset entity.Asset, id int64, url string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAssetURL")
	defer func() { s.endSpan(span, err) }()

	stmt, ok := assetStatements[asset]
	if !ok {
		return fmt.Errorf("unknown asset %q", asset)
	}

	tag, err := s.conn.Exec(ctx, stmt, id, url, at)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}
