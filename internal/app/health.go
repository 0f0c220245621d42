package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/libris/internal/pkg/goerror"
	"github.com/shandysiswandi/libris/internal/pkg/router"
)

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (h healthResponse) Message() string { return "ok" }

// health pings Postgres and Redis. Either one down answers 503.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Database: "up", Redis: "up"}

	var errs []error
	if err := a.dbConn.Ping(ctx); err != nil {
		resp.Database = "down"
		errs = append(errs, err)
	}
	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		resp.Redis = "down"
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		slog.ErrorContext(ctx, "health check failed", "database", resp.Database, "redis", resp.Redis, "error", err)
		return nil, goerror.NewUnavailable(err, "service unavailable")
	}

	return resp, nil
}
