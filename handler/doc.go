// Package handler provides the HTTP handlers of the checkout service.
//
// # Order Handler
//
// OrderHandler decodes the create-order body and hands it to the checkout service:
//
//	orderHandler := handler.NewOrderHandler(service)
//
//	r.Post("/create-order", orderHandler.CreateOrder)
//	r.Options("/create-order", orderHandler.Preflight)
//
// A successful order answers 200 with the gateway, order id, amount and checkout
// data. A failure answers with the status carried by the error and a body of the form:
//
//	{
//	  "error": "order_create_failed",
//	  "detail": "Razorpay API error: Authentication failed",
//	  "gateway": "razorpay",
//	  "gateway_response": {"error": {"code": "BAD_REQUEST_ERROR"}}
//	}
//
// The handler does not validate fields itself; required fields are checked by the
// service so that every entry point reports missing_fields the same way.
//
// # Health Handler
//
// HealthHandler reports store reachability, registered gateways and runtime
// statistics:
//
//	healthHandler := handler.NewHealthHandler(store, dispatcher, "production", version)
//	r.Get("/health", healthHandler.CheckHealth)
//
// The status is healthy, degraded (slow store or a gateway missing) or unhealthy
// (store unreachable or no gateway registered). Unhealthy answers 503.
package handler
