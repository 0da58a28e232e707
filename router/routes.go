package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mstgnz/funnelpay/handler"
	"github.com/mstgnz/funnelpay/infra/middle"
	"github.com/mstgnz/funnelpay/infra/response"
)

// DefaultRequestTimeout bounds a whole inbound request
const DefaultRequestTimeout = 60 * time.Second

// Handlers are the endpoints the router serves
type Handlers struct {
	Order  *handler.OrderHandler
	Health *handler.HealthHandler
}

// Options configure the middleware chain
type Options struct {
	// CheckoutLog receives captured create-order exchanges. Nil disables capture.
	CheckoutLog    middle.CheckoutLogger
	RequestTimeout time.Duration
}

// New builds the HTTP handler with the full middleware chain
func New(h Handlers, opts Options) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.BodyLimitMiddleware(middle.MaxBodyBytes))

	// checkout pages are served from tenant domains we do not know in advance
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	// logging sits outside recovery so recovered panics are captured too
	r.Use(middle.RequestLoggingMiddleware(opts.CheckoutLog))
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middleware.Timeout(opts.RequestTimeout))

	Routes(r, h)

	return otelhttp.NewHandler(r, "funnelpay",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Routes registers the endpoints on r
func Routes(r chi.Router, h Handlers) {
	r.Post("/create-order", h.Order.CreateOrder)
	r.Options("/create-order", h.Order.Preflight)
	r.Get("/health", h.Health.CheckHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusNotFound, response.Response{Code: http.StatusNotFound, Success: false, Message: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusMethodNotAllowed, response.Response{Code: http.StatusMethodNotAllowed, Success: false, Message: "Method Not Allowed"})
	})
}
