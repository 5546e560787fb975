package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	apperrors "wayfinder-backend/internal/errors"
)

// Timeout bounds the request context. Handlers pass the context to every
// blocking call; if the deadline passes before anything is written a timeout
// error envelope is sent.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && ww.Status() == 0 {
				logger.Warn("Request timeout",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Duration("timeout", timeout),
				)
				err := apperrors.Timeout(apperrors.CodeTimeout.String(), "request timed out").
					WithRetryable(true).
					Build()
				apperrors.WriteHTTPError(w, r, err, zap.NewNop())
			}
		})
	}
}
