package middle

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/logger"
	"github.com/mstgnz/funnelpay/infra/response"
)

// PanicRecoveryMiddleware turns panics into unexpected_error 500 responses
func PanicRecoveryMiddleware() func(http.Handler) http.Handler {
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

				stack := debug.Stack()
				tenantID := GetTenantIDFromContext(r.Context())
				requestID := GetRequestIDFromContext(r.Context())
				if requestID == "" {
					requestID = "unknown"
				}

				log.Printf("PANIC RECOVERED: %v | Method: %s | URL: %s | Tenant: %s | Request ID: %s | Time: %s",
					rec, r.Method, r.URL.Path, tenantID, requestID, time.Now().UTC().Format(time.RFC3339))

				logger.Error("Panic recovered", fmt.Errorf("%v", rec), logger.LogContext{
					TenantID:  tenantID,
					RequestID: requestID,
					Fields: map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
						"stack":  string(stack),
					},
				})

				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
				response.CheckoutError(w, domain.NewError(domain.KindUnexpected, fmt.Sprintf("%v", rec)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
