package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	apperrors "wayfinder-backend/internal/errors"
)

// Recovery converts panics into a 500 error envelope and logs the stack.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("Panic recovered",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)

				// Only answer if nothing has been written yet.
				if w.Header().Get("Content-Type") == "" {
					err := apperrors.Internal(apperrors.CodeInternalError.String(), "Internal server error").
						WithDetails(fmt.Sprint(rec)).
						WithSeverity(apperrors.SeverityCritical).
						Build()
					apperrors.WriteHTTPError(w, r, err, zap.NewNop())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
