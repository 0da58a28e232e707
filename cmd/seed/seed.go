package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/validate"
	"github.com/mstgnz/funnelpay/routing"
	"github.com/mstgnz/funnelpay/store"
)

// Fixture is the seed file layout. Secrets are carried here because the domain
// types never serialize them.
type Fixture struct {
	Clients []ClientFixture `json:"clients" validate:"dive"`
	Prices  []PriceFixture  `json:"prices" validate:"dive"`
	Routes  []RouteFixture  `json:"funnel_routes" validate:"dive"`
}

type ClientFixture struct {
	ID                string `json:"id" validate:"required"`
	Name              string `json:"name" validate:"required"`
	RazorpayKeyID     string `json:"razorpay_key_id"`
	RazorpayKeySecret string `json:"razorpay_key_secret"`
	CashfreeAppID     string `json:"cashfree_app_id"`
	CashfreeSecretKey string `json:"cashfree_secret_key"`
	CashfreeEnv       string `json:"cashfree_env" validate:"omitempty,oneof=sandbox production"`
}

type PriceFixture struct {
	ID          string `json:"id" validate:"required"`
	ClientID    string `json:"client_id" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	AmountPaise int64  `json:"amount_paise" validate:"gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	ThankYouURL string `json:"thank_you_url" validate:"omitempty,url"`
}

// RouteFixture names its page either by url or by hostname and path_prefix
type RouteFixture struct {
	ID         int64  `json:"id"`
	URL        string `json:"url" validate:"required_without=Hostname"`
	Hostname   string `json:"hostname" validate:"required_without=URL"`
	PathPrefix string `json:"path_prefix"`
	ClientID   string `json:"client_id" validate:"required"`
	PriceID    string `json:"price_id" validate:"required"`
	Gateway    string `json:"gateway"`
	Inactive   bool   `json:"inactive"`
}

// Summary counts the rows written by Apply
type Summary struct {
	Clients int
	Prices  int
	Routes  int
}

// LoadFixture decodes and validates a seed file
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid seed file, check fields %s: %w",
			strings.Join(validate.FailedFields(err), ", "), err)
	}
	return &f, nil
}

// Apply writes clients, then prices, then routes. Rows are upserted by id, so
// running the same file twice leaves the tables unchanged.
func Apply(ctx context.Context, w store.Writer, f *Fixture) (Summary, error) {
	var sum Summary

	for _, c := range f.Clients {
		t := &domain.Tenant{
			ID:                c.ID,
			Name:              c.Name,
			RazorpayKeyID:     c.RazorpayKeyID,
			RazorpayKeySecret: c.RazorpayKeySecret,
			CashfreeAppID:     c.CashfreeAppID,
			CashfreeSecretKey: c.CashfreeSecretKey,
			CashfreeEnv:       c.CashfreeEnv,
		}
		if err := w.SaveTenant(ctx, t); err != nil {
			return sum, fmt.Errorf("client %s: %w", c.ID, err)
		}
		sum.Clients++
	}

	for _, p := range f.Prices {
		price := &domain.Price{
			ID:          p.ID,
			TenantID:    p.ClientID,
			ProductName: p.ProductName,
			AmountPaise: p.AmountPaise,
			Currency:    strings.ToUpper(p.Currency),
			ThankYouURL: p.ThankYouURL,
		}
		if err := w.SavePrice(ctx, price); err != nil {
			return sum, fmt.Errorf("price %s: %w", p.ID, err)
		}
		sum.Prices++
	}

	for i, rf := range f.Routes {
		route, err := rf.route()
		if err != nil {
			return sum, fmt.Errorf("funnel_routes[%d]: %w", i, err)
		}
		if err := w.SaveRoute(ctx, route); err != nil {
			return sum, fmt.Errorf("funnel_routes[%d]: %w", i, err)
		}
		sum.Routes++
	}

	return sum, nil
}

// route builds the stored row with the same hostname and path rules the resolver
// applies to incoming page URLs.
func (rf RouteFixture) route() (*domain.Route, error) {
	hostname := strings.ToLower(strings.TrimSpace(rf.Hostname))
	path := rf.PathPrefix
	if rf.URL != "" {
		var err error
		hostname, path, err = routing.SplitPageURL(rf.URL)
		if err != nil {
			return nil, fmt.Errorf("url %q: %w", rf.URL, err)
		}
	}
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var gateway domain.Gateway
	if rf.Gateway != "" {
		g, err := domain.ParseGateway(strings.ToLower(rf.Gateway))
		if err != nil {
			return nil, err
		}
		gateway = g
	}

	return &domain.Route{
		ID:         rf.ID,
		Hostname:   hostname,
		PathPrefix: routing.NormalizePath(path),
		TenantID:   rf.ClientID,
		PriceID:    rf.PriceID,
		Gateway:    gateway,
		IsActive:   !rf.Inactive,
	}, nil
}
