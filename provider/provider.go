package provider

import (
	"context"

	"github.com/mstgnz/funnelpay/domain"
)

// ConfigField represents a required credential field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "url", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// OrderParams contains everything a provider needs to create one order
type OrderParams struct {
	Tenant   *domain.Tenant
	Price    *domain.Price
	Customer domain.Customer
}

// PaymentProvider defines the interface that all payment gateways must implement.
// Implementations keep no per-request state; one instance serves concurrent requests.
type PaymentProvider interface {
	// Initialize sets up process-level settings such as base URLs and the timeout
	Initialize(config map[string]string) error

	// GetRequiredConfig returns the tenant credential fields required for this provider
	GetRequiredConfig(environment string) []ConfigField

	// ValidateConfig validates tenant credentials against provider requirements
	ValidateConfig(creds map[string]string) error

	// CreateOrder creates an order with the gateway. Failures are *Error.
	CreateOrder(ctx context.Context, params OrderParams) (*domain.OrderDescriptor, error)
}

// ProviderFactory is a function type that creates a new PaymentProvider
type ProviderFactory func() PaymentProvider
