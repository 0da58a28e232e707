package middle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mstgnz/funnelpay/infra/opensearch"
)

// CheckoutLogger is where captured create-order exchanges go
type CheckoutLogger interface {
	LogCheckoutRequest(ctx context.Context, entry opensearch.CheckoutLog) error
}

// responseWriter wraps http.ResponseWriter to capture response data
type responseWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	startTime  time.Time
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		statusCode:     http.StatusOK,
		startTime:      time.Now(),
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// RequestLoggingMiddleware assigns a request id and, for POST requests, captures the
// exchange into the checkout log. A nil sink only assigns the id.
func RequestLoggingMiddleware(sink CheckoutLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx, info := WithRequestInfo(r.Context(), requestID)
			r = r.WithContext(ctx)

			if sink == nil || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			var requestBody []byte
			if r.Body != nil {
				requestBody, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(requestBody))
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			tenantID, gateway := info.snapshot()
			entry := opensearch.CheckoutLog{
				Timestamp: rw.startTime,
				TenantID:  tenantID,
				Gateway:   gateway,
				Method:    r.Method,
				Endpoint:  r.URL.Path,
				RequestID: requestID,
				UserAgent: r.UserAgent(),
				ClientIP:  GetClientIP(r),
				Request: opensearch.RequestLog{
					Body:    opensearch.SanitizeForLog(string(requestBody)),
					PageURL: extractPageURL(requestBody),
				},
				Response: opensearch.ResponseLog{
					StatusCode:       rw.statusCode,
					Body:             opensearch.SanitizeForLog(rw.body.String()),
					ProcessingTimeMs: time.Since(rw.startTime).Milliseconds(),
				},
			}

			if rw.statusCode >= http.StatusBadRequest {
				entry.Error = extractErrorInfo(rw.body.Bytes())
			} else {
				entry.Order = extractOrderInfo(rw.body.Bytes())
			}

			// the response is already written; do not hold the connection for the index call
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := sink.LogCheckoutRequest(ctx, entry); err != nil {
					log.Printf("Failed to log checkout request to OpenSearch: %v", err)
				}
			}()
		})
	}
}

func extractPageURL(body []byte) string {
	var req struct {
		PageURL string `json:"page_url"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	return req.PageURL
}

func extractOrderInfo(body []byte) *opensearch.OrderInfo {
	var resp struct {
		OrderID     string `json:"order_id"`
		ProductName string `json:"product_name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.OrderID == "" {
		return nil
	}
	return &opensearch.OrderInfo{OrderID: resp.OrderID, ProductName: resp.ProductName}
}

func extractErrorInfo(body []byte) *opensearch.ErrorInfo {
	var resp struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
		return nil
	}
	return &opensearch.ErrorInfo{Code: resp.Error, Message: resp.Detail}
}
