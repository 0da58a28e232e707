package razorpay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/provider"
)

const (
	apiURL = "https://api.razorpay.com"

	endpointOrders = "/v1/orders"
)

// RazorpayProvider implements the provider.PaymentProvider interface for Razorpay
type RazorpayProvider struct {
	baseURL    string
	httpClient *provider.ProviderHTTPClient
	now        func() time.Time
}

// NewProvider creates a new Razorpay payment provider
func NewProvider() provider.PaymentProvider {
	return &RazorpayProvider{now: time.Now}
}

// GetRequiredConfig returns the credential fields required for Razorpay
func (p *RazorpayProvider) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "razorpayKeyId",
			Required:    true,
			Type:        "string",
			Description: "Razorpay key id (Dashboard > Settings > API Keys)",
			Example:     "rzp_live_1DP5mmOlF5G5ag",
		},
		{
			Key:         "razorpayKeySecret",
			Required:    true,
			Type:        "string",
			Description: "Razorpay key secret",
			Example:     "thisisasecret",
		},
	}
}

// ValidateConfig validates tenant credentials against Razorpay requirements
func (p *RazorpayProvider) ValidateConfig(creds map[string]string) error {
	return provider.ValidateConfigFields(string(domain.GatewayRazorpay), creds, p.GetRequiredConfig(""))
}

// Initialize sets the API base URL and the request timeout
func (p *RazorpayProvider) Initialize(conf map[string]string) error {
	p.baseURL = apiURL
	if override := conf["baseURL"]; override != "" {
		p.baseURL = strings.TrimRight(override, "/")
	}

	timeout, err := provider.TimeoutFromConfig(conf)
	if err != nil {
		return fmt.Errorf("razorpay: %w", err)
	}

	p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(p.baseURL, timeout))
	return nil
}

// CreateOrder creates a Razorpay order for the price. Razorpay takes the amount in paise.
func (p *RazorpayProvider) CreateOrder(ctx context.Context, params provider.OrderParams) (*domain.OrderDescriptor, error) {
	tenant, price, customer := params.Tenant, params.Price, params.Customer

	if err := p.ValidateConfig(tenant.Credentials(domain.GatewayRazorpay)); err != nil {
		return nil, provider.MissingCredentials(domain.GatewayRazorpay)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(price.AmountPaise, 10))
	form.Set("currency", strings.ToUpper(price.Currency))
	form.Set("receipt", fmt.Sprintf("rcpt_%d", p.now().UnixMilli()))
	form.Set("payment_capture", "1")
	form.Set("notes[name]", customer.Name)
	form.Set("notes[email]", customer.Email)
	form.Set("notes[contact]", provider.DigitsOnly(customer.Contact))
	form.Set("notes[product_name]", price.ProductName)

	resp, err := p.httpClient.SendForm(ctx, &provider.HTTPRequest{
		Method:    http.MethodPost,
		Endpoint:  endpointOrders,
		FormData:  form,
		BasicAuth: &provider.BasicAuth{Username: tenant.RazorpayKeyID, Password: tenant.RazorpayKeySecret},
	})
	if err != nil {
		return nil, provider.APIError(domain.GatewayRazorpay, 0, nil, err.Error())
	}

	data, raw := provider.ParseJSONResponse(resp)
	orderID, _ := data["id"].(string)

	if !resp.IsSuccess() || orderID == "" {
		status := resp.StatusCode
		if resp.IsSuccess() {
			status = http.StatusInternalServerError
		}
		return nil, provider.APIError(domain.GatewayRazorpay, status, raw, errorDetail(data, resp.Body))
	}

	return &domain.OrderDescriptor{
		Gateway: domain.GatewayRazorpay,
		OrderID: orderID,
		CheckoutData: map[string]any{
			"key":         tenant.RazorpayKeyID,
			"order_id":    orderID,
			"name":        price.ProductName,
			"description": price.ProductName,
			"prefill": map[string]any{
				"name":    customer.Name,
				"email":   customer.Email,
				"contact": customer.Contact,
			},
		},
		ProductName: price.ProductName,
		ThankYouURL: price.ThankYouURL,
		Prefill:     customer,
	}, nil
}

// errorDetail prefers error.description, then error.reason, then the raw body
func errorDetail(data map[string]any, body []byte) string {
	if apiErr, ok := data["error"].(map[string]any); ok {
		if desc, ok := apiErr["description"].(string); ok && desc != "" {
			return desc
		}
		if reason, ok := apiErr["reason"].(string); ok && reason != "" {
			return reason
		}
	}
	return strings.TrimSpace(string(body))
}
