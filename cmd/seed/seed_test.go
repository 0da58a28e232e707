package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/routing"
	"github.com/mstgnz/funnelpay/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixture = `{
  "clients": [
    {"id": "client_1", "name": "Acme", "razorpay_key_id": "rzp_test", "razorpay_key_secret": "rzp_secret",
     "cashfree_app_id": "cf_app", "cashfree_secret_key": "cf_secret", "cashfree_env": "sandbox"}
  ],
  "prices": [
    {"id": "price_1", "client_id": "client_1", "product_name": "Masterclass", "amount_paise": 49900,
     "currency": "inr", "thank_you_url": "https://acme.example.com/thanks"}
  ],
  "funnel_routes": [
    {"url": "https://Acme.Example.com/offer/", "client_id": "client_1", "price_id": "price_1", "gateway": "Cashfree"},
    {"hostname": "acme.example.com", "path_prefix": "legacy", "client_id": "client_1", "price_id": "price_1"},
    {"hostname": "acme.example.com", "path_prefix": "/old", "client_id": "client_1", "price_id": "price_1", "inactive": true}
  ]
}`

func TestLoadFixture(t *testing.T) {
	f, err := LoadFixture(strings.NewReader(sampleFixture))
	require.NoError(t, err)
	assert.Len(t, f.Clients, 1)
	assert.Len(t, f.Prices, 1)
	assert.Len(t, f.Routes, 3)
	assert.Equal(t, "rzp_secret", f.Clients[0].RazorpayKeySecret)
}

func TestLoadFixture_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "malformed json",
			input:   `{"clients": [`,
			wantErr: "invalid seed file",
		},
		{
			name:    "unknown field",
			input:   `{"tenants": []}`,
			wantErr: "unknown field",
		},
		{
			name:    "client without name",
			input:   `{"clients": [{"id": "c1"}]}`,
			wantErr: "name",
		},
		{
			name:    "bad cashfree env",
			input:   `{"clients": [{"id": "c1", "name": "x", "cashfree_env": "staging"}]}`,
			wantErr: "cashfree_env",
		},
		{
			name:    "zero amount",
			input:   `{"prices": [{"id": "p1", "client_id": "c1", "product_name": "x", "amount_paise": 0, "currency": "INR"}]}`,
			wantErr: "amount_paise",
		},
		{
			name:    "route without page",
			input:   `{"funnel_routes": [{"client_id": "c1", "price_id": "p1"}]}`,
			wantErr: "url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFixture(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApply_SeedsResolvableRoutes(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f, err := LoadFixture(strings.NewReader(sampleFixture))
	require.NoError(t, err)

	sum, err := Apply(ctx, st, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Clients: 1, Prices: 1, Routes: 3}, sum)

	tenant, err := st.GetTenant(ctx, "client_1")
	require.NoError(t, err)
	assert.Equal(t, "cf_secret", tenant.CashfreeSecretKey)
	assert.Equal(t, domain.CashfreeSandbox, tenant.CashfreeEnvironment())

	price, err := st.GetPrice(ctx, "price_1")
	require.NoError(t, err)
	assert.Equal(t, "INR", price.Currency)
	assert.Equal(t, int64(49900), price.AmountPaise)

	resolver := routing.NewResolver(st)

	route, err := resolver.Resolve(ctx, "https://acme.example.com/offer?utm=x")
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayCashfree, route.Gateway)

	route, err = resolver.Resolve(ctx, "https://acme.example.com/legacy/")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGateway, route.Gateway)

	_, err = resolver.Resolve(ctx, "https://acme.example.com/old")
	require.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f, err := LoadFixture(strings.NewReader(`{
		"clients": [{"id": "c1", "name": "First"}],
		"prices": [{"id": "p1", "client_id": "c1", "product_name": "Course", "amount_paise": 100, "currency": "INR"}],
		"funnel_routes": [{"id": 7, "hostname": "a.example", "path_prefix": "/x", "client_id": "c1", "price_id": "p1"}]
	}`))
	require.NoError(t, err)

	_, err = Apply(ctx, st, f)
	require.NoError(t, err)

	f.Clients[0].Name = "Renamed"
	_, err = Apply(ctx, st, f)
	require.NoError(t, err)

	tenant, err := st.GetTenant(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", tenant.Name)

	route, err := st.FindActiveRoute(ctx, "a.example", "/x")
	require.NoError(t, err)
	assert.Equal(t, int64(7), route.ID)
}

type failingWriter struct{ store.Writer }

func (failingWriter) SaveTenant(context.Context, *domain.Tenant) error {
	return errors.New("disk full")
}

func TestApply_StopsOnWriteError(t *testing.T) {
	f := &Fixture{Clients: []ClientFixture{{ID: "c1", Name: "x"}}}
	sum, err := Apply(context.Background(), failingWriter{}, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client c1: disk full")
	assert.Zero(t, sum.Clients)
}

func TestApply_RejectsUnknownGateway(t *testing.T) {
	f := &Fixture{Routes: []RouteFixture{{Hostname: "a.example", ClientID: "c1", PriceID: "p1", Gateway: "paypal"}}}
	_, err := Apply(context.Background(), failingWriter{}, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported payment gateway: paypal")
}
