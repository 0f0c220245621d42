package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/shandysiswandi/libris/internal/pkg/stacktrace"
)

// responder is implemented by driver messages that track whether the handler
// already acked or nacked by itself.
type responder interface {
	Message
	Nackable
	responded() bool
}

// dispatch runs handler with panic recovery and applies auto ack.
func dispatch(ctx context.Context, driver string, handler Handler, msg responder, autoAck bool) {
	herr := callHandler(ctx, driver, handler, msg)
	if herr != nil {
		slog.WarnContext(ctx, "messaging handler returned error", "driver", driver, "topic", msg.Topic(), "error", herr)
	}

	if !autoAck || msg.responded() {
		return
	}

	var err error
	if herr == nil {
		err = msg.Ack(ctx)
	} else {
		err = msg.Nack(ctx)
	}
	if err != nil {
		slog.ErrorContext(ctx, "messaging auto ack failed", "driver", driver, "topic", msg.Topic(), "error", err)
	}
}

func callHandler(ctx context.Context, driver string, handler Handler, msg Message) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", paths)
			} else {
				slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "panic", rvr, "stack", string(stack))
			}
			err = fmt.Errorf("messaging: panic in %s handler: %v", driver, rvr)
		}
	}()

	return handler(ctx, msg)
}
