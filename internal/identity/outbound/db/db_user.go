package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/identity/entity"
)

const userColumns = `id, username, email, full_name, status, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUserCredential(row pgx.Row) (*entity.UserCredential, error) {
	var u entity.UserCredential
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Status); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUser(s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserCredentialByUsername(ctx context.Context, username string) (_ *entity.UserCredential, err error) {
	ctx, span := s.startSpan(ctx, "GetUserCredentialByUsername")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUserCredential(s.conn.QueryRow(ctx,
		`SELECT id, username, email, password, status FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

func (s *DB) GetUserCredentialByID(ctx context.Context, id int64) (_ *entity.UserCredential, err error) {
	ctx, span := s.startSpan(ctx, "GetUserCredentialByID")
	defer func() { s.endSpan(span, err) }()

	user, err := scanUserCredential(s.conn.QueryRow(ctx,
		`SELECT id, username, email, password, status FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return user, nil
}

// NewUser inserts the user and its role binding in one transaction.
func (s *DB) NewUser(ctx context.Context, user entity.NewUser) (err error) {
	ctx, span := s.startSpan(ctx, "NewUser")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, username, email, full_name, password, status) VALUES ($1, $2, $3, $4, $5, $6)`,
			user.ID, user.Username, user.Email, user.FullName, user.Password, user.Status,
		); err != nil {
			return err
		}

		if user.Role == "" {
			return nil
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO casbin_rule (ptype, v0, v1) VALUES ('g', $1, $2) ON CONFLICT DO NOTHING`,
			subject(user.ID), user.Role,
		)
		return err
	})

	return s.mapError(err)
}

func (s *DB) UpdateUserPassword(ctx context.Context, userID int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `UPDATE users SET password = $2, updated_at = now() WHERE id = $1`, userID, hash)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}
