package pgxcasbin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
)

const (
	defaultTableName = "casbin_rule"
	// fieldCount is the number of v0..vN columns of the rule table.
	fieldCount = 6
)

// Commander is the subset of pgxpool.Pool used by the store.
type Commander interface {
	Begin(context.Context) (pgx.Tx, error)
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type store struct {
	db    Commander
	table string
}

func newStore(db Commander) *store {
	return &store{db: db, table: defaultTableName}
}

// fields returns "v0,v1,...".
func fields() string {
	return strings.Join(lo.Times(fieldCount, func(i int) string { return "v" + strconv.Itoa(i) }), ",")
}

// matchAll returns "v0 = $from and v1 = $from+1 ...".
func matchAll(from int) string {
	return strings.Join(lo.Times(fieldCount, func(i int) string {
		return "v" + strconv.Itoa(i) + " = $" + strconv.Itoa(from+i)
	}), " and ")
}

func (s *store) insertSQL() string {
	placeholders := strings.Join(lo.Times(fieldCount, func(i int) string { return "$" + strconv.Itoa(i+2) }), ",")
	return fmt.Sprintf("insert into %s (ptype,%s) values ($1,%s) on conflict do nothing", s.table, fields(), placeholders)
}

func (s *store) deleteSQL() string {
	return fmt.Sprintf("delete from %s where ptype = $1 and %s", s.table, matchAll(2))
}

func (s *store) selectWhere(ctx context.Context, ptype string, fieldIndex int, values ...string) ([][]string, error) {
	if len(values) > fieldCount-fieldIndex {
		return nil, fmt.Errorf("%w: %d > %d", ErrArgsTooLong, len(values), fieldCount-fieldIndex)
	}

	var (
		conds []string
		args  []any
	)
	if ptype != "" {
		args = append(args, ptype)
		conds = append(conds, "ptype = $1")
	}
	for i, v := range values {
		if v == "" {
			continue
		}
		args = append(args, v)
		conds = append(conds, "v"+strconv.Itoa(fieldIndex+i)+" = $"+strconv.Itoa(len(args)))
	}

	query := fmt.Sprintf("select ptype,%s from %s", fields(), s.table)
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrSelect, err)
	}
	defer rows.Close()

	var lines [][]string
	for rows.Next() {
		cols := make([]*string, fieldCount+1)
		dest := lo.Map(cols, func(_ *string, i int) any { return &cols[i] })
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Join(ErrScanRow, err)
		}
		line := lo.Map(cols, func(c *string, _ int) string { return lo.FromPtr(c) })
		lines = append(lines, trimTrailingEmpty(line))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrSelect, err)
	}
	return lines, nil
}

func (s *store) insert(ctx context.Context, ptype string, rules ...[]string) error {
	return s.batch(ctx, s.db, s.insertSQL(), ptype, rules)
}

func (s *store) delete(ctx context.Context, ptype string, rules ...[]string) error {
	return s.batch(ctx, s.db, s.deleteSQL(), ptype, rules)
}

func (s *store) deleteWhere(ctx context.Context, ptype string, fieldIndex int, values ...string) error {
	if ptype == "" {
		return ErrEmptyPtype
	}
	if len(values) > fieldCount-fieldIndex {
		return fmt.Errorf("%w: %d > %d", ErrArgsTooLong, len(values), fieldCount-fieldIndex)
	}

	query := fmt.Sprintf("delete from %s where ptype = $1", s.table)
	args := []any{ptype}
	for i, v := range values {
		if v == "" {
			continue
		}
		args = append(args, v)
		query += " and v" + strconv.Itoa(fieldIndex+i) + " = $" + strconv.Itoa(len(args))
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return errors.Join(ErrDelete, err)
	}
	return nil
}

// replaceAll swaps the whole table for lines (ptype first) in one transaction.
func (s *store) replaceAll(ctx context.Context, lines [][]string) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTx, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, "delete from "+s.table); err != nil {
		return errors.Join(ErrDelete, err)
	}

	byType := lo.GroupBy(lines, func(line []string) string { return line[0] })
	for ptype, group := range byType {
		rules := lo.Map(group, func(line []string, _ int) []string { return line[1:] })
		if err = s.batch(ctx, tx, s.insertSQL(), ptype, rules); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitTx, err)
	}
	return nil
}

type batchSender interface {
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

func (s *store) batch(ctx context.Context, db batchSender, query, ptype string, rules [][]string) error {
	if len(rules) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, rule := range rules {
		args, err := ruleArgs(ptype, rule)
		if err != nil {
			return err
		}
		b.Queue(query, args...)
	}

	br := db.SendBatch(ctx, b)
	for range b.Len() {
		if _, err := br.Exec(); err != nil {
			return errors.Join(ErrBatchExec, err, br.Close())
		}
	}
	if err := br.Close(); err != nil {
		return errors.Join(ErrBatchExec, err)
	}
	return nil
}

// ruleArgs pads rule to fieldCount and prefixes ptype.
func ruleArgs(ptype string, rule []string) ([]any, error) {
	if len(rule) > fieldCount {
		return nil, fmt.Errorf("%w: %d > %d", ErrRuleTooLong, len(rule), fieldCount)
	}
	padded := make([]string, fieldCount)
	copy(padded, rule)
	return append([]any{ptype}, lo.ToAnySlice(padded)...), nil
}

func trimTrailingEmpty(line []string) []string {
	last := len(line) - 1
	for last >= 0 && line[last] == "" {
		last--
	}
	return line[:last+1]
}
