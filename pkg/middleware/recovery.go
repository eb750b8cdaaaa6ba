package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/utafrali/productconsole/pkg/jsend"
)

// CodePanic is the error envelope code written after a recovered panic.
const CodePanic = 5000

// Recovery recovers from panics and answers with a 500 error envelope.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					jsend.WriteError(w, http.StatusInternalServerError, "an internal error occurred",
						jsend.Code(CodePanic), &jsend.ErrorData{Path: r.URL.Path, Method: r.Method})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
