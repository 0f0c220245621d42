package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

const loanColumns = `l.id, l.copy_id, l.user_id, l.borrowed_at, l.due_at, l.returned_at, l.status, l.remarks, l.created_at, l.updated_at`

const noticeJoin = `
	JOIN users u ON u.id = l.user_id
	JOIN library_copies c ON c.id = l.copy_id
	JOIN library_books b ON b.id = c.book_id`

func scanLoan(row pgx.CollectableRow) (entity.Loan, error) {
	var l entity.Loan
	err := row.Scan(&l.ID, &l.CopyID, &l.UserID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &l.Status, &l.Remarks, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func scanLoanNotice(row pgx.CollectableRow) (entity.LoanNotice, error) {
	var n entity.LoanNotice
	l := &n.Loan
	err := row.Scan(&l.ID, &l.CopyID, &l.UserID, &l.BorrowedAt, &l.DueAt, &l.ReturnedAt, &l.Status, &l.Remarks, &l.CreatedAt, &l.UpdatedAt,
		&n.Email, &n.FullName, &n.BookID, &n.BookTitle)
	return n, err
}

// CreateLoan takes the copy and inserts the loan in one transaction. The copy
// is only taken while still available: ErrConflict when it is already lent,
// ErrNotFound when it does not exist.
func (s *DB) CreateLoan(ctx context.Context, in entity.Loan) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLoan")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE library_copies SET available = FALSE, updated_at = $2 WHERE id = $1 AND available`,
			in.CopyID, in.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM library_copies WHERE id = $1)`, in.CopyID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return goerror.ErrNotFound
			}
			return goerror.ErrConflict
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO library_loans (id, copy_id, user_id, borrowed_at, due_at, status, remarks, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			in.ID, in.CopyID, in.UserID, in.BorrowedAt, in.DueAt, in.Status, in.Remarks, in.CreatedAt, in.UpdatedAt)
		return err
	})

	return s.mapError(err)
}

func (s *DB) GetLoan(ctx context.Context, id int64) (_ *entity.Loan, err error) {
	ctx, span := s.startSpan(ctx, "GetLoan")
	defer func() { s.endSpan(span, err) }()

	l, err := getOne(ctx, s, `SELECT `+loanColumns+` FROM library_loans l WHERE l.id = $1`, scanLoan, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return l, nil
}

func (s *DB) GetLoanNotice(ctx context.Context, id int64) (_ *entity.LoanNotice, err error) {
	ctx, span := s.startSpan(ctx, "GetLoanNotice")
	defer func() { s.endSpan(span, err) }()

	n, err := getOne(ctx, s, `
		SELECT `+loanColumns+`, u.email, u.full_name, b.id, b.title
		FROM library_loans l`+noticeJoin+`
		WHERE l.id = $1`, scanLoanNotice, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	return n, nil
}

func (s *DB) ListLoans(ctx context.Context, filter entity.LoanFilter) (_ *entity.PageResult[entity.Loan], err error) {
	ctx, span := s.startSpan(ctx, "ListLoans")
	defer func() { s.endSpan(span, err) }()

	const where = ` WHERE ($1::bigint = 0 OR l.user_id = $1) AND ($2::text = '' OR l.status = $2)`
	out, err := listPage(ctx, s,
		`SELECT count(*) FROM library_loans l`+where,
		`SELECT `+loanColumns+` FROM library_loans l`+where+` ORDER BY l.borrowed_at DESC, l.id DESC LIMIT $3 OFFSET $4`,
		filter.Page, scanLoan, filter.UserID, filter.Status.String())
	if err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// ReturnLoan closes an open loan and releases its copy. A loan already
// returned yields ErrConflict.
func (s *DB) ReturnLoan(ctx context.Context, id int64, returnedAt time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "ReturnLoan")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var copyID int64
		err := tx.QueryRow(ctx, `
			UPDATE library_loans SET status = 'returned', returned_at = $2, updated_at = $2
			WHERE id = $1 AND status <> 'returned'
			RETURNING copy_id`, id, returnedAt).Scan(&copyID)
		if errors.Is(err, pgx.ErrNoRows) {
			return goerror.ErrConflict
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `UPDATE library_copies SET available = TRUE, updated_at = $2 WHERE id = $1`, copyID, returnedAt)
		return err
	})

	return s.mapError(err)
}

// UpdateLoan applies a librarian edit. Moving a loan to returned releases the copy.
func (s *DB) UpdateLoan(ctx context.Context, in entity.UpdateLoan) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateLoan")
	defer func() { s.endSpan(span, err) }()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		var (
			copyID int64
			prev   entity.LoanStatus
		)
		if err := tx.QueryRow(ctx, `SELECT copy_id, status FROM library_loans WHERE id = $1 FOR UPDATE`, in.ID).
			Scan(&copyID, &prev); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE library_loans SET due_at = $2, returned_at = $3, status = $4, remarks = $5, updated_at = $6
			WHERE id = $1`,
			in.ID, in.DueAt, in.ReturnedAt, in.Status, in.Remarks, in.UpdatedAt); err != nil {
			return err
		}

		if prev == entity.LoanStatusReturned || in.Status != entity.LoanStatusReturned {
			return nil
		}

		_, err := tx.Exec(ctx, `UPDATE library_copies SET available = TRUE, updated_at = $2 WHERE id = $1`, copyID, in.UpdatedAt)
		return err
	})

	return s.mapError(err)
}

// MarkOverdueLoans flips every open loan due before now to overdue and returns
// them with the borrower and book details.
func (s *DB) MarkOverdueLoans(ctx context.Context, now time.Time) (_ []entity.LoanNotice, err error) {
	ctx, span := s.startSpan(ctx, "MarkOverdueLoans")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		WITH l AS (
			UPDATE library_loans SET status = 'overdue', updated_at = $1
			WHERE status = 'in_progress' AND due_at < $1
			RETURNING id, copy_id, user_id, borrowed_at, due_at, returned_at, status, remarks, created_at, updated_at
		)
		SELECT `+loanColumns+`, u.email, u.full_name, b.id, b.title
		FROM l`+noticeJoin+`
		ORDER BY l.due_at, l.id`, now)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, scanLoanNotice)
	if err != nil {
		return nil, s.mapError(err)
	}

	return items, nil
}
