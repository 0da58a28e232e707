// Package funnelpay is a multi-tenant checkout service for sales funnel pages. A page
// posts the buyer's contact details and its own URL, and funnelpay answers with what
// the browser needs to open the tenant's payment gateway checkout.
//
// # Overview
//
// Each tenant (a row in the clients table) keeps its own Razorpay and Cashfree
// credentials. Funnel routes bind a hostname and path prefix to one tenant price and
// one gateway, so a single deployment serves any number of funnel pages without the
// page knowing which account it sells through.
//
// # Architecture
//
// The order flow follows this pattern:
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│  Funnel Page    │◄──►│   FunnelPay     │◄──►│   Razorpay /    │
//	│   (browser)     │    │ (route+order)   │    │   Cashfree      │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
//  1. routing resolves page_url to an active funnel route
//  2. store loads the route's client and price
//  3. provider creates the order at the route's gateway with the client's credentials
//  4. the browser receives checkout_data and opens the gateway widget
//
// # Supported Gateways
//
//   - Razorpay: orders API with basic auth, Standard Checkout data
//   - Cashfree: PG orders API, sandbox or production per client
//
// Routes without a gateway use Razorpay.
//
// # HTTP API
//
//	# Create an order
//	POST /create-order
//	Content-Type: application/json
//
//	{
//	  "name": "Asha",
//	  "email": "asha@example.com",
//	  "contact": "+91 98765 43210",
//	  "page_url": "https://offers.acme.in/masterclass?utm_source=ig"
//	}
//
//	# Service health
//	GET /health
//
// Failures carry a stable error code (missing_fields, invalid_url, route_not_found,
// client_not_found, price_not_found, order_create_failed, unexpected_error) and, for
// gateway failures, the gateway's own status and response body.
//
// # Configuration
//
// Configuration comes from environment variables, optionally loaded from .env:
//
//	APP_PORT=9999
//	STORE_DRIVER=sqlite            # or postgres
//	SQLITE_PATH=./data/funnelpay.db
//	REDIS_ADDR=localhost:6379      # optional lookup cache
//	GATEWAY_TIMEOUT=30s
//	ENABLE_OPENSEARCH_LOGGING=true
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4317
//
// # Seeding
//
// The tables are owned by the admin tooling. For local work, cmd/seed loads clients,
// prices and funnel routes from a JSON file:
//
//	go run ./cmd/seed -file seed.json
//
// # Adding a Gateway
//
//  1. Add the gateway value to domain.Gateways
//  2. Implement provider.PaymentProvider under provider/{gateway}/
//  3. Register it in provider/{gateway}/register.go
//  4. Import the package for side effects in cmd/main.go
package funnelpay
