package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/metrics"
	"github.com/efreitasn/marketcore/internal/service"
)

// PrincipalHeader carries the caller identity resolved by the platform
// gateway.
const PrincipalHeader = "X-Principal"

type principalKey struct{}

// NewRouter creates a chi router with all routes registered, request logging,
// metrics and Content-Type validation middleware.
func NewRouter(
	marketSvc *service.MarketService,
	webhookSvc *service.WebhookService,
	logger zerolog.Logger,
	m *metrics.Metrics,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogging(logger, m))
	r.Use(contentTypeJSON)

	userH := NewUserHandler(marketSvc)
	catalogH := NewCatalogHandler(marketSvc)
	orderH := NewOrderHandler(marketSvc)
	reportH := NewReportHandler(marketSvc)
	webhookH := NewWebhookHandler(webhookSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Read-only queries for the reporting facade.
	r.Get("/reports/users", reportH.Users)
	r.Get("/reports/listings-by-category", reportH.ListingsByCategory)
	r.Get("/reports/users/{principal}/orders", reportH.OrdersFor)

	// Catalog browsing.
	r.Get("/products", catalogH.Products)
	r.Get("/products/{product_id}", catalogH.Product)
	r.Get("/listings", catalogH.AllListings)

	r.Group(func(r chi.Router) {
		r.Use(requirePrincipal)

		r.Post("/users", userH.Register)
		r.Get("/users/me", userH.Me)
		r.Get("/users/me/roles", userH.Roles)
		r.Post("/users/me/roles", userH.AddRole)

		r.Post("/products", catalogH.CreateProduct)
		r.Post("/listings", catalogH.CreateListing)
		r.Get("/listings/mine", catalogH.OwnListings)

		r.Post("/orders", orderH.Create)
		r.Get("/orders/mine", orderH.Mine)
		r.Post("/orders/{order_id}/ship", orderH.Ship)
		r.Post("/orders/{order_id}/receive", orderH.Receive)
		r.Post("/orders/{order_id}/cancel", orderH.Cancel)

		r.Post("/webhooks", webhookH.Upsert)
		r.Get("/webhooks", webhookH.List)
		r.Delete("/webhooks/{webhook_id}", webhookH.Delete)
	})

	return r
}

// requirePrincipal rejects requests without a caller identity and stores the
// principal in the request context.
func requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimSpace(r.Header.Get(PrincipalHeader))
		if p == "" {
			WriteError(w, http.StatusUnauthorized, "missing_principal",
				PrincipalHeader+" header is required")
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, domain.Principal(p))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principal returns the caller stored by requirePrincipal.
func principal(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(principalKey{}).(domain.Principal)
	return p
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration, and records the duration per route pattern.
func requestLogging(logger zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.ObserveHTTP(r.Method, route, ww.status, elapsed)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", elapsed).
				Msg("request")
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests that carry a body. If the Content-Type header doesn't start
// with "application/json", it returns 400 Bad Request before the handler runs.
// Bodiless transitions such as POST /orders/{order_id}/ship pass through.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasBody := r.ContentLength != 0
		if hasBody && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
