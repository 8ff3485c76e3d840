package middleware

import (
	"fmt"
	"net/http"

	"github.com/avolkov/orderflow-backend/api/responses"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
	"github.com/avolkov/orderflow-backend/pkg/logger"
	"github.com/avolkov/orderflow-backend/pkg/reporting"
)

// Recoverer converts panics into 500 responses and forwards the stack to the
// error reporter.
func Recoverer(logg *logger.Logger, reporter reporting.Reporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if reporter != nil {
						reporter.Capture(ctx, reporting.FromPanic(rec, RequestIDFromContext(ctx)))
					}
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
