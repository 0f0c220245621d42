package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

// CleanupOTP deletes codes that expired longer ago than the retention period.
// It runs as a periodic job.
func (s *Usecase) CleanupOTP(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "CleanupOTP")
	defer span.End()

	before := s.clock.Now().Add(-s.cfg.GetHour("modules.identity.otp_cleanup.retention_hours"))
	n, err := s.repoDB.DeleteExpiredOTP(ctx, before)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otp", "before", before, "error", err)
		return goerror.NewServer(err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "expired otp codes deleted", "count", n, "before", before)
	}

	return nil
}
