package db

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/identity/entity"
)

func subject(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *DB) CreateRefreshToken(ctx context.Context, in entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO identity_refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4)`,
		in.ID, in.UserID, in.Token, in.ExpiresAt,
	)

	return s.mapError(err)
}

func (s *DB) GetUserRefreshToken(ctx context.Context, token string) (_ *entity.UserRefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetUserRefreshToken")
	defer func() { s.endSpan(span, err) }()

	var rt entity.UserRefreshToken
	err = s.conn.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.status, t.id, t.revoked, t.replaced_by_token_id, t.expires_at
		 FROM identity_refresh_tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.token_hash = $1`, token,
	).Scan(&rt.UserID, &rt.Username, &rt.UserEmail, &rt.UserStatus,
		&rt.RefreshID, &rt.RefreshRevoked, &rt.RefreshReplacedByTokenID, &rt.RefreshExpiresAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rt, nil
}

// RotateRefreshToken revokes the old token and links it to its replacement.
// ErrNotFound means another request rotated or revoked it first.
func (s *DB) RotateRefreshToken(ctx context.Context, ro entity.RotateRefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "RotateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO identity_refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1, $2, $3, $4)`,
			ro.NewID, ro.UserID, ro.NewToken, ro.NewExpiresAt,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE identity_refresh_tokens SET revoked = TRUE, replaced_by_token_id = $3, updated_at = now()
			 WHERE id = $1 AND user_id = $2 AND revoked = FALSE`,
			ro.OldID, ro.UserID, ro.NewID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		return nil
	})

	return s.mapError(err)
}

func (s *DB) RevokeRefreshToken(ctx context.Context, userID int64, token string) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE identity_refresh_tokens SET revoked = TRUE, updated_at = now()
		 WHERE user_id = $1 AND token_hash = $2 AND revoked = FALSE`, userID, token)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return s.mapError(pgx.ErrNoRows)
	}

	return nil
}

func (s *DB) RevokeAllRefreshToken(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeAllRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE identity_refresh_tokens SET revoked = TRUE, updated_at = now() WHERE user_id = $1 AND revoked = FALSE`, userID)

	return s.mapError(err)
}
