// Package logger configures slog for the verifier and carries a request-scoped logger in the context.
package logger

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
)

// InitLogger returns the application logger and installs it as the slog default.
// The dev environment gets a coloured console handler, everything else gets JSON on stdout.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	var handler slog.Handler
	if environment == "dev" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLogLevel maps debug, info, warn and error to a slog level. Anything else is info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextKey struct{}

type requestLog struct {
	logger *slog.Logger
	mu     sync.Mutex
	attrs  []slog.Attr
}

// ContextRequestLogger returns the logger stored by RequestLogger, or slog.Default().
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if rl, ok := ctx.Value(contextKey{}).(*requestLog); ok {
		return rl.logger
	}
	return slog.Default()
}

// ContextWithLogAttrs adds attributes to the completion line RequestLogger writes.
// It is a no-op outside a request handled by RequestLogger.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	rl, ok := ctx.Value(contextKey{}).(*requestLog)
	if !ok {
		return
	}
	rl.mu.Lock()
	rl.attrs = append(rl.attrs, attrs...)
	rl.mu.Unlock()
}

// WithRequestLogger returns a context carrying l as the request logger.
func WithRequestLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, &requestLog{logger: l})
}

// RequestLogger stores a child logger carrying request_id, method and path in the request
// context and logs one line per request once the handler returns.
// It must run after chi's RequestID middleware.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := base.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			rl := &requestLog{logger: reqLogger}
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), contextKey{}, rl)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rl.mu.Lock()
			attrs := append([]slog.Attr{
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			}, rl.attrs...)
			rl.mu.Unlock()

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}
			reqLogger.LogAttrs(r.Context(), level, "request completed", attrs...)
		})
	}
}
