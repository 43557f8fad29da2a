package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/metrics"
	"github.com/efreitasn/marketcore/internal/service"
	"github.com/efreitasn/marketcore/internal/store"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router     http.Handler
	market     *engine.Marketplace
	webhookSvc *service.WebhookService
}

func newTestEnv() *testEnv {
	m := engine.New()
	reg := metrics.New()
	webhookSvc := service.NewWebhookService(store.NewWebhookStore(), m, 5*time.Second, zerolog.Nop(), reg)
	marketSvc := service.NewMarketService(m, webhookSvc, zerolog.Nop(), reg)

	return &testEnv{
		router:     NewRouter(marketSvc, webhookSvc, zerolog.Nop(), reg),
		market:     m,
		webhookSvc: webhookSvc,
	}
}

// do sends a request as caller (anonymous when empty) with an optional JSON
// body and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		req.Header.Set(PrincipalHeader, caller)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// doRaw sends a raw request with optional content-type override.
func (env *testEnv) doRaw(t *testing.T, method, path, caller, contentType, rawBody string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(rawBody))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if caller != "" {
		req.Header.Set(PrincipalHeader, caller)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v), "body: %s", rr.Body.String())
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rr.Code, "body: %s", rr.Body.String())
	var resp errorResponse
	decodeJSON(t, rr, &resp)
	assert.Equal(t, code, resp.Error)
}

func (env *testEnv) register(t *testing.T, caller, role string) {
	t.Helper()
	rr := env.do(t, "POST", "/users", caller, map[string]any{
		"name": "Name", "surname": "Surname", "email": caller + "@example.com", "role": role,
	})
	require.Equal(t, http.StatusCreated, rr.Code, "register %s: %s", caller, rr.Body.String())
}

// setupTermo registers a seller with a Termo listing (price 1000, stock 4)
// and a buyer, and returns the listing.
func (env *testEnv) setupTermo(t *testing.T) listingResponse {
	t.Helper()
	env.register(t, "seller", "seller")
	env.register(t, "buyer", "buyer")

	rr := env.do(t, "POST", "/products", "seller", map[string]any{
		"name": "Termo", "description": "Termo de acero", "category": "other",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p productResponse
	decodeJSON(t, rr, &p)

	rr = env.do(t, "POST", "/listings", "seller", map[string]any{
		"product_id": p.ProductID, "unit_price": 1000, "stock": 4,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var l listingResponse
	decodeJSON(t, rr, &l)
	return l
}

func (env *testEnv) placeOrder(t *testing.T, listingID uint64, qty, funds int64) orderResponse {
	t.Helper()
	rr := env.do(t, "POST", "/orders", "buyer", map[string]any{
		"items":           []map[string]any{{"listing_id": listingID, "quantity": qty}},
		"available_funds": funds,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var o orderResponse
	decodeJSON(t, rr, &o)
	return o
}

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rr := env.do(t, "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", "buyer")

	rr := env.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `marketplace_operations_total{operation="register",outcome="ok"} 1`)
	assert.Contains(t, body, `marketplace_http_request_duration_seconds_count{method="POST",route="/users",status="201"} 1`)
}

func TestMissingPrincipal(t *testing.T) {
	env := newTestEnv()
	rr := env.do(t, "GET", "/users/me", "", nil)
	assertError(t, rr, http.StatusUnauthorized, "missing_principal")
}

func TestContentTypeRequired(t *testing.T) {
	env := newTestEnv()
	rr := env.doRaw(t, "POST", "/users", "alice", "text/plain", `{"name":"A"}`)
	assertError(t, rr, http.StatusBadRequest, "invalid_request")
}

func TestRegister(t *testing.T) {
	env := newTestEnv()

	rr := env.do(t, "POST", "/users", "alice", map[string]any{
		"name": "Alice", "surname": "Liddell", "email": "alice@example.com", "role": "buyer",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var u userResponse
	decodeJSON(t, rr, &u)
	assert.Equal(t, "alice", u.Principal)
	assert.Equal(t, "buyer", u.Role)
	assert.Empty(t, u.ListingIDs)
	assert.NotNil(t, u.OrderIDs)

	rr = env.do(t, "POST", "/users", "alice", map[string]any{
		"name": "Alice", "surname": "Liddell", "email": "alice@example.com", "role": "seller",
	})
	assertError(t, rr, http.StatusConflict, "already_registered")

	rr = env.do(t, "POST", "/users", "bob", map[string]any{
		"name": "Bob", "surname": "B", "email": "bob@example.com", "role": "admin",
	})
	assertError(t, rr, http.StatusBadRequest, "validation_error")

	rr = env.doRaw(t, "POST", "/users", "bob", "application/json", `{"name":"Bob","nickname":"b"}`)
	assertError(t, rr, http.StatusBadRequest, "invalid_request")
}

func TestRoles(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", "buyer")

	rr := env.do(t, "GET", "/users/me/roles", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var roles rolesResponse
	decodeJSON(t, rr, &roles)
	assert.Equal(t, rolesResponse{Role: "buyer", IsSeller: false, IsBuyer: true}, roles)

	rr = env.do(t, "POST", "/users/me/roles", "alice", map[string]any{"role": "seller"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeJSON(t, rr, &roles)
	assert.Equal(t, rolesResponse{Role: "both", IsSeller: true, IsBuyer: true}, roles)

	rr = env.do(t, "POST", "/users/me/roles", "alice", map[string]any{"role": "buyer"})
	assertError(t, rr, http.StatusConflict, "role_already_held")

	rr = env.do(t, "GET", "/users/me/roles", "ghost", nil)
	assertError(t, rr, http.StatusNotFound, "user_not_found")
}

func TestProducts(t *testing.T) {
	env := newTestEnv()
	env.register(t, "buyer", "buyer")
	env.register(t, "seller", "seller")

	rr := env.do(t, "POST", "/products", "buyer", map[string]any{"name": "Mop", "category": "cleaning"})
	assertError(t, rr, http.StatusForbidden, "not_seller")

	rr = env.do(t, "POST", "/products", "seller", map[string]any{"name": "Mop", "category": "cleaning"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p productResponse
	decodeJSON(t, rr, &p)
	assert.Equal(t, "cleaning", p.Category)

	rr = env.do(t, "GET", "/products/0", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "GET", "/products/1", "", nil)
	assertError(t, rr, http.StatusNotFound, "invalid_product")

	rr = env.do(t, "GET", "/products/abc", "", nil)
	assertError(t, rr, http.StatusBadRequest, "validation_error")

	rr = env.do(t, "GET", "/products", "", nil)
	var list productListResponse
	decodeJSON(t, rr, &list)
	assert.Len(t, list.Products, 1)
}

func TestListings(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)
	assert.True(t, l.Active)
	assert.Equal(t, "seller", l.Seller)

	rr := env.do(t, "POST", "/listings", "seller", map[string]any{"product_id": 99, "unit_price": 1, "stock": 1})
	assertError(t, rr, http.StatusNotFound, "invalid_product")

	rr = env.do(t, "POST", "/listings", "seller", map[string]any{"product_id": l.ProductID, "unit_price": 1, "stock": 0})
	assertError(t, rr, http.StatusConflict, "insufficient_stock")

	rr = env.do(t, "POST", "/listings", "seller", map[string]any{"product_id": l.ProductID, "unit_price": -1, "stock": 1})
	assertError(t, rr, http.StatusBadRequest, "validation_error")

	rr = env.do(t, "GET", "/listings/mine", "seller", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var mine listingListResponse
	decodeJSON(t, rr, &mine)
	require.Len(t, mine.Listings, 1)
	assert.Equal(t, l.ListingID, mine.Listings[0].ListingID)

	rr = env.do(t, "GET", "/listings/mine", "buyer", nil)
	assertError(t, rr, http.StatusForbidden, "not_seller")

	rr = env.do(t, "GET", "/listings", "", nil)
	var all listingListResponse
	decodeJSON(t, rr, &all)
	assert.Len(t, all.Listings, 1)
}

func TestTermoScenario(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)

	o := env.placeOrder(t, l.ListingID, 2, 2000)
	assert.Equal(t, uint32(2000), o.Amount)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, []orderItemResponse{{ProductID: l.ProductID, Quantity: 2}}, o.Items)
	assert.Nil(t, o.CancellationRequest)

	rr := env.do(t, "GET", "/listings", "", nil)
	var all listingListResponse
	decodeJSON(t, rr, &all)
	assert.Equal(t, uint32(2), all.Listings[0].Stock)

	rr = env.do(t, "POST", "/orders", "buyer", map[string]any{
		"items":           []map[string]any{{"listing_id": l.ListingID, "quantity": 3}},
		"available_funds": 10000,
	})
	assertError(t, rr, http.StatusConflict, "insufficient_stock")

	rr = env.do(t, "POST", "/orders", "buyer", map[string]any{
		"items":           []map[string]any{{"listing_id": l.ListingID, "quantity": 2}},
		"available_funds": 1999,
	})
	assertError(t, rr, http.StatusConflict, "insufficient_funds")
}

func TestCreateOrder_Errors(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)

	tests := []struct {
		name   string
		caller string
		body   map[string]any
		status int
		code   string
	}{
		{"empty", "buyer", map[string]any{"items": []any{}, "available_funds": 10}, http.StatusBadRequest, "empty_order"},
		{"zero quantity", "buyer", map[string]any{
			"items": []map[string]any{{"listing_id": l.ListingID, "quantity": 0}}, "available_funds": 10,
		}, http.StatusBadRequest, "cannot_buy_zero"},
		{"duplicate", "buyer", map[string]any{
			"items": []map[string]any{
				{"listing_id": l.ListingID, "quantity": 1},
				{"listing_id": l.ListingID, "quantity": 1},
			}, "available_funds": 10000,
		}, http.StatusBadRequest, "duplicate_listing"},
		{"unknown listing", "buyer", map[string]any{
			"items": []map[string]any{{"listing_id": 42, "quantity": 1}}, "available_funds": 10,
		}, http.StatusNotFound, "invalid_listing"},
		{"not buyer", "seller", map[string]any{
			"items": []map[string]any{{"listing_id": l.ListingID, "quantity": 1}}, "available_funds": 10000,
		}, http.StatusForbidden, "not_buyer"},
		{"unregistered", "ghost", map[string]any{
			"items": []map[string]any{{"listing_id": l.ListingID, "quantity": 1}}, "available_funds": 10000,
		}, http.StatusNotFound, "user_not_found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/orders", tc.caller, tc.body)
			assertError(t, rr, tc.status, tc.code)
		})
	}
}

func TestOrderLifecycle(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)
	o := env.placeOrder(t, l.ListingID, 1, 1000)
	path := func(action string) string {
		return "/orders/" + strconv.FormatUint(o.OrderID, 10) + "/" + action
	}

	rr := env.do(t, "POST", path("receive"), "buyer", nil)
	assertError(t, rr, http.StatusConflict, "invalid_operation")

	rr = env.do(t, "POST", path("ship"), "buyer", nil)
	assertError(t, rr, http.StatusConflict, "invalid_operation")

	rr = env.do(t, "POST", path("ship"), "seller", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var shipped orderResponse
	decodeJSON(t, rr, &shipped)
	assert.Equal(t, "shipped", shipped.Status)

	rr = env.do(t, "POST", path("receive"), "buyer", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, "POST", path("cancel"), "buyer", nil)
	assertError(t, rr, http.StatusConflict, "invalid_operation")

	rr = env.do(t, "POST", "/orders/99/ship", "seller", nil)
	assertError(t, rr, http.StatusNotFound, "invalid_order_id")
}

func TestCancellation(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)
	o := env.placeOrder(t, l.ListingID, 1, 1000)
	path := "/orders/" + strconv.FormatUint(o.OrderID, 10) + "/cancel"

	rr := env.do(t, "POST", path, "buyer", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var pending orderResponse
	decodeJSON(t, rr, &pending)
	assert.Equal(t, "pending", pending.Status)
	require.NotNil(t, pending.CancellationRequest)
	assert.Equal(t, "buyer", *pending.CancellationRequest)

	rr = env.do(t, "POST", path, "buyer", nil)
	assertError(t, rr, http.StatusConflict, "cancellation_already_requested")

	rr = env.do(t, "POST", path, "seller", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var cancelled orderResponse
	decodeJSON(t, rr, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	rr = env.do(t, "POST", path, "seller", nil)
	assertError(t, rr, http.StatusConflict, "order_already_cancelled")
}

func TestMyOrdersAndReports(t *testing.T) {
	env := newTestEnv()
	l := env.setupTermo(t)
	env.placeOrder(t, l.ListingID, 1, 1000)

	rr := env.do(t, "GET", "/orders/mine", "seller", nil)
	var mine orderListResponse
	decodeJSON(t, rr, &mine)
	assert.Len(t, mine.Orders, 1)

	rr = env.do(t, "GET", "/orders/mine", "stranger", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeJSON(t, rr, &mine)
	assert.Empty(t, mine.Orders)

	rr = env.do(t, "GET", "/reports/users", "", nil)
	var users userListResponse
	decodeJSON(t, rr, &users)
	require.Len(t, users.Users, 2)
	assert.Equal(t, "seller", users.Users[0].Principal)
	assert.Equal(t, []uint64{0}, users.Users[1].OrderIDs)

	rr = env.do(t, "GET", "/reports/listings-by-category", "", nil)
	var groups listingsByCategoryResponse
	decodeJSON(t, rr, &groups)
	assert.Len(t, groups.Categories, 6)
	assert.Len(t, groups.Categories["other"], 1)
	assert.Empty(t, groups.Categories["music"])

	rr = env.do(t, "GET", "/reports/users/buyer/orders", "", nil)
	var orders orderListResponse
	decodeJSON(t, rr, &orders)
	assert.Len(t, orders.Orders, 1)
}

func TestWebhookEndpoints(t *testing.T) {
	env := newTestEnv()
	env.register(t, "alice", "buyer")

	rr := env.do(t, "POST", "/webhooks", "alice", map[string]any{
		"url": "https://example.com/hooks", "events": []string{"order.created", "order.shipped"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created webhookListResponse
	decodeJSON(t, rr, &created)
	require.Len(t, created.Webhooks, 2)
	assert.Equal(t, "alice", created.Webhooks[0].Owner)

	rr = env.do(t, "POST", "/webhooks", "alice", map[string]any{
		"url": "https://example.com/hooks", "events": []string{"order.created"},
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "POST", "/webhooks", "alice", map[string]any{
		"url": "http://example.com/hooks", "events": []string{"order.created"},
	})
	assertError(t, rr, http.StatusBadRequest, "validation_error")

	rr = env.do(t, "POST", "/webhooks", "ghost", map[string]any{
		"url": "https://example.com/hooks", "events": []string{"order.created"},
	})
	assertError(t, rr, http.StatusNotFound, "user_not_found")

	rr = env.do(t, "GET", "/webhooks", "alice", nil)
	var list webhookListResponse
	decodeJSON(t, rr, &list)
	assert.Len(t, list.Webhooks, 2)

	rr = env.do(t, "DELETE", "/webhooks/"+created.Webhooks[0].WebhookID, "bob", nil)
	assertError(t, rr, http.StatusNotFound, "webhook_not_found")

	rr = env.do(t, "DELETE", "/webhooks/"+created.Webhooks[0].WebhookID, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
