// Package middleware provides interceptors and HTTP middleware for use with
// viewsets routers.
package middleware

import (
	"log/slog"
	"time"

	"github.com/PaulWay/viewsets"
)

// LoggingInterceptor creates an interceptor that logs view-set actions using
// slog. It logs the start and end of each action, including duration and
// error status.
func LoggingInterceptor(logger *slog.Logger) viewsets.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx *viewsets.Context, next viewsets.HandlerFunc) error {
		start := time.Now()

		logger.InfoContext(ctx, "action started",
			slog.String("basename", ctx.Basename()),
			slog.String("action", ctx.Action()),
			slog.Bool("detail", ctx.Detail()),
		)

		err := next(ctx)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "action failed",
				slog.String("basename", ctx.Basename()),
				slog.String("action", ctx.Action()),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "action completed",
				slog.String("basename", ctx.Basename()),
				slog.String("action", ctx.Action()),
				slog.Duration("duration", duration),
			)
		}

		return err
	}
}
