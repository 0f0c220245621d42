package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/libris/internal/identity/entity"
)

func (s *DB) CreateOTP(ctx context.Context, in entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "CreateOTP")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO identity_otps (id, user_id, code_hash, purpose, used, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5, $6)`,
		in.ID, in.UserID, in.CodeHash, string(in.Purpose), in.CreatedAt, in.ExpiresAt,
	)

	return s.mapError(err)
}

// ConsumeOTP marks the newest matching code used in a single statement. Two
// concurrent calls with the same code cannot both succeed: the outer
// predicate re-checks used under the row lock.
func (s *DB) ConsumeOTP(ctx context.Context, in entity.ConsumeOTP) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeOTP")
	defer func() { s.endSpan(span, err) }()

	var id int64
	err = s.conn.QueryRow(ctx,
		`UPDATE identity_otps SET used = TRUE, used_at = $3
		 WHERE used = FALSE AND id = (
		     SELECT id FROM identity_otps
		     WHERE user_id = $1 AND code_hash = $2 AND used = FALSE AND expires_at > $3
		     ORDER BY created_at DESC, id DESC
		     LIMIT 1
		 )
		 RETURNING id`,
		in.UserID, in.CodeHash, in.Now,
	).Scan(&id)
	if err != nil {
		return 0, s.mapError(err)
	}

	return id, nil
}

func (s *DB) DeleteExpiredOTP(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredOTP")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM identity_otps WHERE expires_at < $1`, before)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
