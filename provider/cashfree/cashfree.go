package cashfree

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/mstgnz/funnelpay/provider"
)

const (
	// API URLs
	apiSandboxURL    = "https://sandbox.cashfree.com/pg"
	apiProductionURL = "https://api.cashfree.com/pg"

	endpointOrders = "/orders"

	apiVersion = "2023-08-01"

	maxCustomerIDLength = 50
)

// CashfreeProvider implements the provider.PaymentProvider interface for Cashfree
type CashfreeProvider struct {
	sandboxURL    string
	productionURL string
	httpClient    *provider.ProviderHTTPClient
	now           func() time.Time
	random        func(n int) string
}

type orderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
	NotifyURL string `json:"notify_url"`
}

// NewProvider creates a new Cashfree payment provider
func NewProvider() provider.PaymentProvider {
	return &CashfreeProvider{now: time.Now, random: config.RandomString}
}

// GetRequiredConfig returns the credential fields required for Cashfree
func (p *CashfreeProvider) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "cashfreeAppId",
			Required:    true,
			Type:        "string",
			Description: "Cashfree app id (x-client-id)",
			Example:     "TEST10123456789abcdef",
		},
		{
			Key:         "cashfreeSecretKey",
			Required:    true,
			Type:        "string",
			Description: "Cashfree secret key (x-client-secret)",
			Example:     "cfsk_ma_test_abc123",
		},
		{
			Key:         "environment",
			Required:    false,
			Type:        "string",
			Description: "Environment setting (sandbox or production)",
			Example:     "sandbox",
			Pattern:     "^(sandbox|production)$",
		},
	}
}

// ValidateConfig validates tenant credentials against Cashfree requirements
func (p *CashfreeProvider) ValidateConfig(creds map[string]string) error {
	return provider.ValidateConfigFields(string(domain.GatewayCashfree), creds, p.GetRequiredConfig(creds["environment"]))
}

// Initialize sets the sandbox and production base URLs and the request timeout
func (p *CashfreeProvider) Initialize(conf map[string]string) error {
	p.sandboxURL = apiSandboxURL
	if override := conf["sandboxURL"]; override != "" {
		p.sandboxURL = strings.TrimRight(override, "/")
	}
	p.productionURL = apiProductionURL
	if override := conf["productionURL"]; override != "" {
		p.productionURL = strings.TrimRight(override, "/")
	}

	timeout, err := provider.TimeoutFromConfig(conf)
	if err != nil {
		return fmt.Errorf("cashfree: %w", err)
	}

	// endpoints are absolute since the base depends on the tenant's environment
	p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig("", timeout))
	return nil
}

func (p *CashfreeProvider) baseURL(environment string) string {
	if environment == domain.CashfreeSandbox {
		return p.sandboxURL
	}
	return p.productionURL
}

// CreateOrder creates a Cashfree order. Cashfree takes the amount in rupees.
func (p *CashfreeProvider) CreateOrder(ctx context.Context, params provider.OrderParams) (*domain.OrderDescriptor, error) {
	tenant, price, customer := params.Tenant, params.Price, params.Customer

	if err := p.ValidateConfig(tenant.Credentials(domain.GatewayCashfree)); err != nil {
		return nil, provider.MissingCredentials(domain.GatewayCashfree)
	}

	environment := tenant.CashfreeEnvironment()
	generatedID := fmt.Sprintf("cf_%d_%s", p.now().UnixMilli(), p.random(9))

	body := orderRequest{
		OrderID:       generatedID,
		OrderAmount:   float64(price.AmountPaise) / 100,
		OrderCurrency: strings.ToUpper(price.Currency),
		CustomerDetails: customerDetails{
			CustomerID:    CustomerID(customer.Email),
			CustomerName:  customer.Name,
			CustomerEmail: customer.Email,
			CustomerPhone: provider.DigitsOnly(customer.Contact),
		},
		OrderMeta: orderMeta{
			ReturnURL: price.ThankYouURL,
			NotifyURL: price.ThankYouURL,
		},
	}

	resp, err := p.httpClient.SendJSON(ctx, &provider.HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: p.baseURL(environment) + endpointOrders,
		Headers: map[string]string{
			"x-client-id":     tenant.CashfreeAppID,
			"x-client-secret": tenant.CashfreeSecretKey,
			"x-api-version":   apiVersion,
		},
		Body: body,
	})
	if err != nil {
		return nil, provider.APIError(domain.GatewayCashfree, 0, nil, err.Error())
	}

	data, raw := provider.ParseJSONResponse(resp)
	sessionID, _ := data["payment_session_id"].(string)

	if !resp.IsSuccess() || sessionID == "" {
		status := resp.StatusCode
		if resp.IsSuccess() {
			status = http.StatusInternalServerError
		}
		return nil, provider.APIError(domain.GatewayCashfree, status, raw, errorDetail(data, resp.Body))
	}

	orderID, _ := data["order_id"].(string)
	if orderID == "" {
		orderID = generatedID
	}

	return &domain.OrderDescriptor{
		Gateway: domain.GatewayCashfree,
		OrderID: orderID,
		CheckoutData: map[string]any{
			"payment_session_id": sessionID,
			"env":                environment,
		},
		ProductName: price.ProductName,
		ThankYouURL: price.ThankYouURL,
		Prefill:     customer,
	}, nil
}

// CustomerID derives the Cashfree customer id from an email address
func CustomerID(email string) string {
	var b strings.Builder
	for _, r := range email {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		if b.Len() == maxCustomerIDLength {
			break
		}
	}
	return b.String()
}

// errorDetail prefers message, then error, then the raw body
func errorDetail(data map[string]any, body []byte) string {
	if msg, ok := data["message"].(string); ok && msg != "" {
		return msg
	}
	if e, ok := data["error"].(string); ok && e != "" {
		return e
	}
	return strings.TrimSpace(string(body))
}
