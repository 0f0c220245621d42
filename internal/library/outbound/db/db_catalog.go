package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/library/entity"
)

const (
	authorColumns    = `id, name, biography, birth_date, death_date, nationality, photo_url, created_at, updated_at`
	publisherColumns = `id, name, address, website, contact_email, description, logo_url, created_at, updated_at`
	categoryColumns  = `id, name, description, slug, created_at, updated_at`
)

func scanAuthor(row pgx.CollectableRow) (entity.Author, error) {
	var a entity.Author
	err := row.Scan(&a.ID, &a.Name, &a.Biography, &a.BirthDate, &a.DeathDate, &a.Nationality, &a.PhotoURL, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanPublisher(row pgx.CollectableRow) (entity.Publisher, error) {
	var p entity.Publisher
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.Website, &p.ContactEmail, &p.Description, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanCategory(row pgx.CollectableRow) (entity.Category, error) {
	var c entity.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// getOne runs a single row query through a collectable scanner.
func getOne[T any](ctx context.Context, s *DB, query string, scan pgx.RowToFunc[T], args ...any) (*T, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	item, err := pgx.CollectExactlyOneRow(rows, scan)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *DB) ListAuthors(ctx context.Context, page entity.Page) (_ *entity.PageResult[entity.Author], err error) {
	ctx, span := s.startSpan(ctx, "ListAuthors")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_authors`,
		`SELECT `+authorColumns+` FROM library_authors ORDER BY name, id LIMIT $1 OFFSET $2`,
		page, scanAuthor)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetAuthor(ctx context.Context, id int64) (_ *entity.Author, err error) {
	ctx, span := s.startSpan(ctx, "GetAuthor")
	defer func() { s.endSpan(span, err) }()

	a, err := getOne(ctx, s, `SELECT `+authorColumns+` FROM library_authors WHERE id = $1`, scanAuthor, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return a, nil
}

func (s *DB) CreateAuthor(ctx context.Context, in entity.Author) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAuthor")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_authors (id, name, biography, birth_date, death_date, nationality, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.Name, in.Biography, in.BirthDate, in.DeathDate, in.Nationality, in.CreatedAt, in.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateAuthor(ctx context.Context, in entity.Author) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAuthor")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE library_authors
		SET name = $2, biography = $3, birth_date = $4, death_date = $5, nationality = $6, updated_at = $7
		WHERE id = $1`,
		in.ID, in.Name, in.Biography, in.BirthDate, in.DeathDate, in.Nationality, in.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) DeleteAuthor(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteAuthor")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_authors", id))
}

func (s *DB) ListPublishers(ctx context.Context, page entity.Page) (_ *entity.PageResult[entity.Publisher], err error) {
	ctx, span := s.startSpan(ctx, "ListPublishers")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_publishers`,
		`SELECT `+publisherColumns+` FROM library_publishers ORDER BY name, id LIMIT $1 OFFSET $2`,
		page, scanPublisher)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetPublisher(ctx context.Context, id int64) (_ *entity.Publisher, err error) {
	ctx, span := s.startSpan(ctx, "GetPublisher")
	defer func() { s.endSpan(span, err) }()

	p, err := getOne(ctx, s, `SELECT `+publisherColumns+` FROM library_publishers WHERE id = $1`, scanPublisher, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return p, nil
}

func (s *DB) CreatePublisher(ctx context.Context, in entity.Publisher) (err error) {
	ctx, span := s.startSpan(ctx, "CreatePublisher")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_publishers (id, name, address, website, contact_email, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.Name, in.Address, in.Website, in.ContactEmail, in.Description, in.CreatedAt, in.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdatePublisher(ctx context.Context, in entity.Publisher) (err error) {
	ctx, span := s.startSpan(ctx, "UpdatePublisher")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE library_publishers
		SET name = $2, address = $3, website = $4, contact_email = $5, description = $6, updated_at = $7
		WHERE id = $1`,
		in.ID, in.Name, in.Address, in.Website, in.ContactEmail, in.Description, in.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) DeletePublisher(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeletePublisher")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_publishers", id))
}

func (s *DB) ListCategories(ctx context.Context, page entity.Page) (_ *entity.PageResult[entity.Category], err error) {
	ctx, span := s.startSpan(ctx, "ListCategories")
	defer func() { s.endSpan(span, err) }()

	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_categories`,
		`SELECT `+categoryColumns+` FROM library_categories ORDER BY name, id LIMIT $1 OFFSET $2`,
		page, scanCategory)
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) GetCategory(ctx context.Context, id int64) (_ *entity.Category, err error) {
	ctx, span := s.startSpan(ctx, "GetCategory")
	defer func() { s.endSpan(span, err) }()

	c, err := getOne(ctx, s, `SELECT `+categoryColumns+` FROM library_categories WHERE id = $1`, scanCategory, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return c, nil
}

func (s *DB) CreateCategory(ctx context.Context, in entity.Category) (err error) {
	ctx, span := s.startSpan(ctx, "CreateCategory")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO library_categories (id, name, description, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID, in.Name, in.Description, in.Slug, in.CreatedAt, in.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateCategory(ctx context.Context, in entity.Category) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateCategory")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE library_categories SET name = $2, description = $3, slug = $4, updated_at = $5 WHERE id = $1`,
		in.ID, in.Name, in.Description, in.Slug, in.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

func (s *DB) DeleteCategory(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteCategory")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.deleteByID(ctx, "library_categories", id))
}
