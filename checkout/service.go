// Package checkout creates a gateway order for a checkout page submission.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/mstgnz/funnelpay/domain"
	"github.com/mstgnz/funnelpay/infra/logger"
	"github.com/mstgnz/funnelpay/infra/middle"
	"github.com/mstgnz/funnelpay/infra/opensearch"
	"github.com/mstgnz/funnelpay/infra/validate"
	"github.com/mstgnz/funnelpay/provider"
)

const instrumentationName = "github.com/mstgnz/funnelpay/checkout"

const missingFieldsDetail = "page_url, name, email, and contact are required"

// Request is the body of a create-order call
type Request struct {
	PageURL string `json:"page_url" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Contact string `json:"contact" validate:"required"`
}

// RouteResolver finds the funnel route for a page URL
type RouteResolver interface {
	Resolve(ctx context.Context, pageURL string) (*domain.Route, error)
}

// EntityStore loads the tenant and price a route points to
type EntityStore interface {
	GetTenant(ctx context.Context, id string) (*domain.Tenant, error)
	GetPrice(ctx context.Context, id string) (*domain.Price, error)
}

// ProviderSource returns the provider serving a gateway
type ProviderSource interface {
	GetProvider(gateway domain.Gateway) (provider.PaymentProvider, error)
}

// Service runs one order creation: validate, resolve, load, dispatch.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	resolver  RouteResolver
	store     EntityStore
	providers ProviderSource
	tracer    trace.Tracer
	orders    metric.Int64Counter
}

// NewService creates a checkout service
func NewService(resolver RouteResolver, store EntityStore, providers ProviderSource) *Service {
	orders, err := otel.Meter(instrumentationName).Int64Counter(
		"funnelpay.orders",
		metric.WithDescription("Order creation attempts by gateway and outcome"),
	)
	if err != nil {
		logger.Warn("Failed to create orders counter: " + err.Error())
		orders = noop.Int64Counter{}
	}

	return &Service{
		resolver:  resolver,
		store:     store,
		providers: providers,
		tracer:    otel.Tracer(instrumentationName),
		orders:    orders,
	}
}

// CreateOrder creates an order for req. Every returned error is a *domain.Error.
func (s *Service) CreateOrder(ctx context.Context, req Request) (*domain.OrderDescriptor, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.CreateOrder")
	defer span.End()

	order, gateway, err := s.createOrder(ctx, req)

	outcome := "success"
	if err != nil {
		derr := classify(ctx, err)
		outcome = string(derr.Kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(derr.Kind))
		err = derr
	}

	span.SetAttributes(attribute.String("checkout.gateway", string(gateway)), attribute.String("checkout.outcome", outcome))
	s.orders.Add(ctx, 1, metric.WithAttributes(
		attribute.String("gateway", string(gateway)),
		attribute.String("outcome", outcome),
	))

	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) createOrder(ctx context.Context, req Request) (*domain.OrderDescriptor, domain.Gateway, error) {
	if err := validate.Struct(req); err != nil {
		return nil, "", domain.NewError(domain.KindMissingFields, missingFieldsDetail)
	}

	route, err := s.resolve(ctx, req.PageURL)
	if err != nil {
		return nil, "", err
	}
	gateway := route.Gateway

	middle.SetTenant(ctx, route.TenantID, string(gateway))
	log := logger.WithContext(logger.LogContext{
		TenantID:  route.TenantID,
		Gateway:   string(gateway),
		RequestID: middle.GetRequestIDFromContext(ctx),
	})

	tenant, price, err := s.load(ctx, route)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.With("route_id", route.ID).With("price_id", route.PriceID).
				Error("Funnel route points to a missing client or price", err)
		}
		return nil, gateway, err
	}

	p, err := s.providers.GetProvider(gateway)
	if err != nil {
		log.With("route_id", route.ID).Error("No provider for route gateway", err)
		return nil, gateway, err
	}

	ctx, span := s.tracer.Start(ctx, "checkout.provider.CreateOrder",
		trace.WithAttributes(attribute.String("checkout.gateway", string(gateway))))
	defer span.End()

	order, err := p.CreateOrder(ctx, provider.OrderParams{
		Tenant:   tenant,
		Price:    price,
		Customer: domain.Customer{Name: req.Name, Email: req.Email, Contact: req.Contact},
	})
	if err != nil {
		var pe *provider.Error
		if errors.As(err, &pe) {
			span.SetAttributes(attribute.Int("checkout.gateway_status", pe.Status))
			log.With("status", pe.Status).
				With("gateway_response", sanitizedResponse(pe.RawResponse)).
				Warn(pe.Message)
		}
		return nil, gateway, err
	}

	log.With("order_id", order.OrderID).Info("Order created")
	return order, gateway, nil
}

func (s *Service) resolve(ctx context.Context, pageURL string) (*domain.Route, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Resolve")
	defer span.End()

	route, err := s.resolver.Resolve(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("checkout.route_id", route.ID))
	return route, nil
}

func (s *Service) load(ctx context.Context, route *domain.Route) (*domain.Tenant, *domain.Price, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Load")
	defer span.End()

	tenant, err := s.store.GetTenant(ctx, route.TenantID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, domain.NewError(domain.KindClientNotFound, fmt.Sprintf("Client %s not found", route.TenantID))
	}
	if err != nil {
		return nil, nil, err
	}

	price, err := s.store.GetPrice(ctx, route.PriceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, domain.NewError(domain.KindPriceNotFound, fmt.Sprintf("Price %s not found", route.PriceID))
	}
	if err != nil {
		return nil, nil, err
	}

	return tenant, price, nil
}

// classify turns any error into the *domain.Error the caller reports
func classify(ctx context.Context, err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}

	var pe *provider.Error
	if errors.As(err, &pe) {
		status := pe.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		detail := pe.Message
		if reason := pe.Reason(); reason != "" {
			detail = fmt.Sprintf("%s (%s)", detail, reason)
		}
		return &domain.Error{
			Kind:            domain.KindOrderCreateFailed,
			Status:          status,
			Detail:          detail,
			Gateway:         pe.Gateway,
			GatewayResponse: pe.RawResponse,
		}
	}

	logger.WithContext(logger.LogContext{RequestID: middle.GetRequestIDFromContext(ctx)}).
		Error("Unexpected checkout error", err)
	return domain.NewError(domain.KindUnexpected, err.Error())
}

func sanitizedResponse(raw any) string {
	if s, ok := raw.(string); ok {
		return opensearch.SanitizeForLog(s)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return opensearch.SanitizeForLog(string(b))
}
