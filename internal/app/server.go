package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start launches the API and SSE servers and returns a channel closed once a
// termination signal arrives.
func (a *App) Start() <-chan struct{} {
	terminate := make(chan struct{})

	a.listen("http", a.httpServer)
	a.listen("sse", a.sseServer)

	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		a.cancel()
		close(terminate)

		slog.Info("termination signal received, shutting down")
	}()

	return terminate
}

func (a *App) listen(name string, srv *http.Server) {
	go func() {
		slog.Info("server listening", "server", name, "address", srv.Addr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve", "server", name, "error", err)
			os.Exit(1)
		}
	}()
}

// Stop drains the servers first, then background jobs and consumers, and
// closes resources last so in-flight work can still reach them.
func (a *App) Stop(ctx context.Context) {
	a.cancel()

	for name, srv := range map[string]*http.Server{"http": a.httpServer, "sse": a.sseServer} {
		if err := srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to shutdown server", "server", name, "error", err)
		}
	}

	slog.InfoContext(ctx, "waiting for background jobs to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background jobs finished with errors", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
