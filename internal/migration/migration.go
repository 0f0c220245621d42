// Package migration applies the embedded Postgres schema with goose.
package migration

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var embedded embed.FS

func provider(pool *pgxpool.Pool) (*goose.Provider, func() error, error) {
	fsys, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, nil, errors.Join(err, db.Close())
	}
	return p, db.Close, nil
}

// Up applies every pending migration.
func Up(ctx context.Context, pool *pgxpool.Pool) (err error) {
	p, closeDB, err := provider(pool)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeDB()) }()

	results, err := p.Up(ctx)
	for _, r := range results {
		slog.InfoContext(ctx, "migration applied", "version", r.Source.Version, "file", r.Source.Path, "duration", r.Duration)
	}
	return err
}

// Status logs the applied state of each migration.
func Status(ctx context.Context, pool *pgxpool.Pool) (err error) {
	p, closeDB, err := provider(pool)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeDB()) }()

	states, err := p.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range states {
		slog.InfoContext(ctx, "migration status", "version", s.Source.Version, "state", string(s.State), "applied_at", s.AppliedAt)
	}
	return nil
}
