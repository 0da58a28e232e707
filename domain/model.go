package domain

import "time"

// Cashfree environments
const (
	CashfreeSandbox    = "sandbox"
	CashfreeProduction = "production"
)

// Tenant is a business using the service, with its own gateway credentials.
// Stored in the clients table.
type Tenant struct {
	ID                string `gorm:"column:id;primaryKey" json:"id"`
	Name              string `gorm:"column:name" json:"name"`
	RazorpayKeyID     string `gorm:"column:razorpay_key_id" json:"razorpay_key_id,omitempty"`
	RazorpayKeySecret string `gorm:"column:razorpay_key_secret" json:"-"`
	CashfreeAppID     string `gorm:"column:cashfree_app_id" json:"cashfree_app_id,omitempty"`
	CashfreeSecretKey string `gorm:"column:cashfree_secret_key" json:"-"`
	CashfreeEnv       string `gorm:"column:cashfree_env" json:"cashfree_env,omitempty"`
}

func (Tenant) TableName() string { return "clients" }

// Credentials returns the credential set the tenant holds for one gateway
func (t *Tenant) Credentials(g Gateway) map[string]string {
	switch g {
	case GatewayRazorpay:
		return map[string]string{
			"razorpayKeyId":     t.RazorpayKeyID,
			"razorpayKeySecret": t.RazorpayKeySecret,
		}
	case GatewayCashfree:
		return map[string]string{
			"cashfreeAppId":     t.CashfreeAppID,
			"cashfreeSecretKey": t.CashfreeSecretKey,
			"environment":       t.CashfreeEnvironment(),
		}
	default:
		return map[string]string{}
	}
}

// CashfreeEnvironment returns the configured Cashfree environment, production when unset
func (t *Tenant) CashfreeEnvironment() string {
	if t.CashfreeEnv == CashfreeSandbox {
		return CashfreeSandbox
	}
	return CashfreeProduction
}

// Price is a tenant's product with an amount in minor currency units (paise)
type Price struct {
	ID          string `gorm:"column:id;primaryKey" json:"id"`
	TenantID    string `gorm:"column:client_id" json:"client_id"`
	ProductName string `gorm:"column:product_name" json:"product_name"`
	AmountPaise int64  `gorm:"column:amount_paise" json:"amount_paise"`
	Currency    string `gorm:"column:currency" json:"currency"`
	ThankYouURL string `gorm:"column:thank_you_url" json:"thank_you_url"`
}

func (Price) TableName() string { return "prices" }

// Route binds a hostname and path prefix to one tenant price and gateway
type Route struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Hostname   string    `gorm:"column:hostname" json:"hostname"`
	PathPrefix string    `gorm:"column:path_prefix" json:"path_prefix"`
	TenantID   string    `gorm:"column:client_id" json:"client_id"`
	PriceID    string    `gorm:"column:price_id" json:"price_id"`
	Gateway    Gateway   `gorm:"column:gateway" json:"gateway"`
	IsActive   bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Route) TableName() string { return "funnel_routes" }

// Customer is the buyer contact data sent with a checkout request
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// OrderDescriptor is the normalized result of creating an order with a gateway
type OrderDescriptor struct {
	Gateway      Gateway        `json:"gateway"`
	OrderID      string         `json:"order_id"`
	CheckoutData map[string]any `json:"checkout_data"`
	ProductName  string         `json:"product_name"`
	ThankYouURL  string         `json:"thank_you_url"`
	Prefill      Customer       `json:"prefill"`
}
