package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/libris/internal/notification/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return goerror.ErrConflict
		case "23503":
			return goerror.ErrReference
		}
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) GetTemplate(ctx context.Context, tk entity.TriggerKey, ch entity.Channel) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplate")
	defer func() { s.endSpan(span, err) }()

	var t entity.Template
	err = s.conn.QueryRow(ctx, `
		SELECT id, trigger_key, channel, title, body
		FROM notification_templates
		WHERE trigger_key = $1 AND channel = $2 AND is_active`, tk, ch).
		Scan(&t.ID, &t.TriggerKey, &t.Channel, &t.Title, &t.Body)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &t, nil
}

func (s *DB) CreateNotification(ctx context.Context, n entity.Notification) (err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	data := n.Data
	if data == nil {
		data = map[string]any{}
	}

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notifications (id, user_id, trigger_key, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.TriggerKey, n.Title, n.Body, data, n.CreatedAt)

	return s.mapError(err)
}

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.DeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO notification_delivery_logs
			(id, user_id, trigger_key, channel, recipient, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		dl.ID, dl.UserID, dl.TriggerKey, dl.Channel, dl.Recipient, dl.Status, dl.Attempts, dl.LastError, dl.CreatedAt, dl.UpdatedAt)

	return s.mapError(err)
}

func (s *DB) UpdateDeliveryLog(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notification_delivery_logs
		SET status = $2, attempts = $3, last_error = $4, sent_at = $5, updated_at = $6
		WHERE id = $1`,
		u.ID, u.Status, u.Attempts, u.LastError, u.SentAt, u.UpdatedAt)
	if err == nil && tag.RowsAffected() == 0 {
		err = pgx.ErrNoRows
	}

	return s.mapError(err)
}

// GetDeliveryLog is used by operators and tests to inspect a delivery.
func (s *DB) GetDeliveryLog(ctx context.Context, id int64) (_ *entity.DeliveryLog, err error) {
	ctx, span := s.startSpan(ctx, "GetDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	var dl entity.DeliveryLog
	err = s.conn.QueryRow(ctx, `
		SELECT id, user_id, trigger_key, channel, recipient, status, attempts, last_error, sent_at, created_at, updated_at
		FROM notification_delivery_logs WHERE id = $1`, id).
		Scan(&dl.ID, &dl.UserID, &dl.TriggerKey, &dl.Channel, &dl.Recipient, &dl.Status, &dl.Attempts,
			&dl.LastError, &dl.SentAt, &dl.CreatedAt, &dl.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &dl, nil
}

func (s *DB) ListNotifications(ctx context.Context, f entity.InboxFilter) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, trigger_key, title, body, data, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL
			AND ($2::text = 'all' OR ($2::text = 'unread' AND read_at IS NULL) OR ($2::text = 'read' AND read_at IS NOT NULL))
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		f.UserID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Notification, error) {
		var n entity.Notification
		err := row.Scan(&n.ID, &n.UserID, &n.TriggerKey, &n.Title, &n.Body, &n.Data, &n.ReadAt, &n.CreatedAt)
		return n, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}

func (s *DB) CountUnreadNotifications(ctx context.Context, userID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountUnreadNotifications")
	defer func() { s.endSpan(span, err) }()

	var n int64
	err = s.conn.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND deleted_at IS NULL AND read_at IS NULL`, userID).Scan(&n)
	if err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

func (s *DB) MarkNotificationRead(ctx context.Context, userID, id int64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationRead")
	defer func() { s.endSpan(span, err) }()

	// already read still counts as found
	tag, err := s.conn.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID, at)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *DB) MarkNotificationsReadAll(ctx context.Context, userID int64, at time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationsReadAll")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notifications SET read_at = $2
		WHERE user_id = $1 AND deleted_at IS NULL AND read_at IS NULL`, userID, at)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func (s *DB) SoftDeleteNotification(ctx context.Context, userID, id int64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "SoftDeleteNotification")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE notifications SET deleted_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID, at)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
