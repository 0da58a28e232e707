package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/infra/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a single gateway call
const DefaultTimeout = 30 * time.Second

// MaxResponseBytes caps how much of a gateway response body is read
const MaxResponseBytes = 1 << 20

// HTTPClientConfig holds the base URL, timeout and headers shared by every call of one gateway
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
}

// HTTPRequest is one gateway call. Body is sent as JSON, FormData as a form.
type HTTPRequest struct {
	Method    string
	Endpoint  string
	Headers   map[string]string
	Body      any
	FormData  url.Values
	BasicAuth *BasicAuth
}

// BasicAuth holds HTTP basic credentials
type BasicAuth struct {
	Username string
	Password string
}

// HTTPResponse is the gateway's status, headers and body. Truncated is set when the
// body was cut at MaxResponseBytes.
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Truncated  bool
}

// IsSuccess reports a 2xx status
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ProviderHTTPClient sends gateway calls through a traced transport.
// Non-2xx responses are returned without an error so providers can read the body.
type ProviderHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

func NewProviderHTTPClient(config *HTTPClientConfig) *ProviderHTTPClient {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &ProviderHTTPClient{
		config: config,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone()),
		},
	}
}

// SendJSON sends req.Body as JSON
func (c *ProviderHTTPClient) SendJSON(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	body, err := jsonBody(req.Body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, "application/json", body)
}

// SendForm sends req.FormData url-encoded
func (c *ProviderHTTPClient) SendForm(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	return c.do(ctx, req, "application/x-www-form-urlencoded", strings.NewReader(req.FormData.Encode()))
}

func jsonBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON body: %w", err)
	}
	return bytes.NewReader(b), nil
}

func (c *ProviderHTTPClient) do(ctx context.Context, req *HTTPRequest, contentType string, body io.Reader) (*HTTPResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.endpointURL(req.Endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if req.BasicAuth != nil {
		httpReq.SetBasicAuth(req.BasicAuth.Username, req.BasicAuth.Password)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	truncated := len(respBody) > MaxResponseBytes
	if truncated {
		respBody = respBody[:MaxResponseBytes]
		logger.Warn("Gateway response body truncated", logger.LogContext{
			Fields: map[string]any{
				"url":       httpReq.URL.Redacted(),
				"status":    resp.StatusCode,
				"limit":     MaxResponseBytes,
				"truncated": true,
			},
		})
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
		Truncated:  truncated,
	}, nil
}

// endpointURL joins endpoint onto the base URL with exactly one slash between them.
// Absolute endpoints are used as they are.
func (c *ProviderHTTPClient) endpointURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// ParseJSONResponse decodes the response body into a generic JSON object.
// A body that is not a JSON object is returned as a string so it can still be reported.
func ParseJSONResponse(response *HTTPResponse) (map[string]any, any) {
	var data map[string]any
	if err := json.Unmarshal(response.Body, &data); err != nil || data == nil {
		return nil, string(response.Body)
	}
	return data, data
}

// CreateHTTPClientConfig creates a standard HTTP client configuration for providers
func CreateHTTPClientConfig(baseURL string, timeout time.Duration) *HTTPClientConfig {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClientConfig{
		BaseURL: baseURL,
		Timeout: timeout,
		DefaultHeaders: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "FunnelPay/1.0",
		},
	}
}

// TimeoutFromConfig reads the "timeoutMs" setting, falling back to DefaultTimeout
func TimeoutFromConfig(config map[string]string) (time.Duration, error) {
	raw, ok := config["timeoutMs"]
	if !ok || raw == "" {
		return DefaultTimeout, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid timeoutMs %q", raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// DigitsOnly drops every character that is not an ASCII digit
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
