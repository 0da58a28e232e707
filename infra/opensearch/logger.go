package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// CheckoutLog is one captured create-order exchange
type CheckoutLog struct {
	Timestamp time.Time   `json:"timestamp"`
	TenantID  string      `json:"tenant_id,omitempty"`
	Gateway   string      `json:"gateway,omitempty"`
	Method    string      `json:"method"`
	Endpoint  string      `json:"endpoint"`
	RequestID string      `json:"request_id"`
	UserAgent string      `json:"user_agent,omitempty"`
	ClientIP  string      `json:"client_ip,omitempty"`
	Request   RequestLog  `json:"request"`
	Response  ResponseLog `json:"response"`
	Order     *OrderInfo  `json:"order,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
}

// RequestLog represents request details
type RequestLog struct {
	Body    string `json:"body,omitempty"`
	PageURL string `json:"page_url,omitempty"`
}

// ResponseLog represents response details
type ResponseLog struct {
	StatusCode       int    `json:"status_code"`
	Body             string `json:"body,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// OrderInfo is the order created for a successful checkout
type OrderInfo struct {
	OrderID     string `json:"order_id,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Logger handles OpenSearch logging operations
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogCheckoutRequest indexes a create-order exchange
func (l *Logger) LogCheckoutRequest(ctx context.Context, entry CheckoutLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.RequestID == "" {
		entry.RequestID = uuid.New().String()
	}
	return l.index(ctx, CheckoutLogIndex, entry)
}

// LogSystemEvent indexes a system log entry
func (l *Logger) LogSystemEvent(ctx context.Context, entry any) error {
	return l.index(ctx, SystemLogIndex, entry)
}

func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	if !l.client.IsEnabled() {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}

	return nil
}

var sensitivePatterns = buildSensitivePatterns([]string{
	"key_secret", "keySecret", "razorpay_key_secret", "razorpayKeySecret",
	"secret_key", "secretKey", "cashfree_secret_key", "cashfreeSecretKey",
	"x-client-secret", "apiKey", "api_key", "password", "token", "authorization",
})

type sensitivePattern struct {
	field string
	res   []*regexp.Regexp
}

func buildSensitivePatterns(fields []string) []sensitivePattern {
	patterns := make([]sensitivePattern, 0, len(fields))
	for _, field := range fields {
		quoted := regexp.QuoteMeta(field)
		patterns = append(patterns, sensitivePattern{
			field: field,
			res: []*regexp.Regexp{
				regexp.MustCompile(`"` + quoted + `"\s*:\s*"[^"]*"`),
				regexp.MustCompile(`"` + quoted + `"\s*:\s*'[^']*'`),
				regexp.MustCompile(`\b` + quoted + `=[^&\s"]+`),
			},
		})
	}
	return patterns
}

// SanitizeForLog removes sensitive information from data before logging
func SanitizeForLog(data string) string {
	result := data
	for _, p := range sensitivePatterns {
		for _, re := range p.res {
			result = re.ReplaceAllString(result, fmt.Sprintf(`"%s":"***REDACTED***"`, p.field))
		}
	}
	return result
}
