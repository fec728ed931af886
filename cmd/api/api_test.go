package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/backend"
	"github.com/vikram583135/platepal2.o-sub000/internal/cache"
	"github.com/vikram583135/platepal2.o-sub000/internal/cart"
	"github.com/vikram583135/platepal2.o-sub000/internal/checkout"
	"github.com/vikram583135/platepal2.o-sub000/internal/payment"
	"github.com/vikram583135/platepal2.o-sub000/internal/queue"
	"github.com/vikram583135/platepal2.o-sub000/internal/ratelimiter"
	"github.com/vikram583135/platepal2.o-sub000/internal/reconcile"
	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
	"github.com/vikram583135/platepal2.o-sub000/internal/service"
	"github.com/vikram583135/platepal2.o-sub000/internal/store/memory"
)

type fakeBackend struct {
	orderStatus int
	orderBody   string
	delay       time.Duration
	orderGets   atomic.Int32
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(f.delay)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			status := f.orderStatus
			if status == 0 {
				status = http.StatusCreated
			}
			w.WriteHeader(status)
			body := f.orderBody
			if body == "" {
				body = `{"id": "order-42", "total_amount": "540.00"}`
			}
			w.Write([]byte(body))
			return
		}

		f.orderGets.Add(1)
		if r.URL.Path == "/orders/missing/" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail": "Not found."}`))
			return
		}
		w.Write([]byte(`{"id": "order-42", "status": "preparing"}`))
	})
	mux.HandleFunc("/payments/create-intent/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(f.delay)
		w.Write([]byte(`{"id": "pi_1"}`))
	})
	mux.HandleFunc("/payments/confirm/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(f.delay)
		w.Write([]byte(`{"status": "SUCCEEDED"}`))
	})
	return mux
}

type testApp struct {
	app     *application
	handler http.Handler
	backend *fakeBackend
	broker  *queue.MemoryBroker
	repo    *memory.CartRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fb := &fakeBackend{}
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)

	logger := zap.NewNop().Sugar()
	client := backend.New(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	broker := queue.NewMemoryBroker(1, time.Millisecond, logger)
	views := cache.NewMemoryViewCache()
	repo := memory.NewCartRepository()
	hydration := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond}

	carts := cart.NewRegistry(repo, reconcile.New(logger), logger)
	checkouts := checkout.NewRegistry(client, payment.NewSequencer(client, logger), logger).WithHydrationPolicy(hydration)
	carts.OnEvict(checkouts.Discard)

	app := &application{
		config: config{
			addr:        ":0",
			env:         "test",
			rateLimiter: ratelimiter.Config{Enabled: false},
			viewTTL:     time.Minute,
			backend:     backendConfig{URL: srv.URL, Timeout: 5 * time.Second},
			hydration:   hydration,
		},
		logger:       logger,
		rateLimiter:  ratelimiter.NewTokenBucketLimiter(100, time.Second),
		broker:       broker,
		carts:        carts,
		checkouts:    checkouts,
		orders:       service.NewOrderService(client, views, broker, time.Minute, logger),
		healthChecks: map[string]healthCheck{},
		closers:      map[string]closer{},
	}

	return &testApp{app: app, handler: app.mount(), backend: fb, broker: broker, repo: repo}
}

func (ta *testApp) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)
	return rr
}

func addItem(id, price, vendor string) map[string]any {
	return map[string]any{
		"menu_item": map[string]any{"id": id, "name": "Item " + id, "price": price},
		"vendor_id": vendor,
	}
}

func cashForm() map[string]any {
	return map[string]any{
		"address_id": "addr-1",
		"tip":        "20",
		"payment":    map[string]any{"method": "cash"},
	}
}

func TestSessionHeaderRequired(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodGet, "/api/v1/cart", "", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), SessionHeader)
}

func TestCartFlow(t *testing.T) {
	ta := newTestApp(t)
	const session = "s-cart"

	rr := ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))
	require.Equal(t, http.StatusOK, rr.Code)
	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))
	rr = ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("b", "50.50", "V1"))
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Equal(t, int64(3), gjson.Get(body, "data.item_count").Int())
	assert.Equal(t, "250.5", gjson.Get(body, "data.total").String())
	assert.Equal(t, "V1", gjson.Get(body, "data.vendor_id").String())
	assert.True(t, gjson.Get(body, "data.persisted").Bool())

	rr = ta.do(t, http.MethodPatch, "/api/v1/cart/items/a", session, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(6), gjson.Get(rr.Body.String(), "data.item_count").Int())

	rr = ta.do(t, http.MethodPatch, "/api/v1/cart/items/zzz", session, map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ta.do(t, http.MethodDelete, "/api/v1/cart/items/b", session, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "500", gjson.Get(rr.Body.String(), "data.total").String())

	rr = ta.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, gjson.Get(rr.Body.String(), "data.items").Array(), 1)
	assert.True(t, gjson.Get(rr.Body.String(), "data.hydrated").Bool())

	rr = ta.do(t, http.MethodDelete, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(0), gjson.Get(rr.Body.String(), "data.item_count").Int())
	assert.False(t, gjson.Get(rr.Body.String(), "data.vendor_id").Exists())
}

func TestAddItem_OtherVendorReplacesCart(t *testing.T) {
	ta := newTestApp(t)
	const session = "s-vendor"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))
	rr := ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("x", "10", "V2"))

	require.Equal(t, http.StatusOK, rr.Code)
	items := gjson.Get(rr.Body.String(), "data.items").Array()
	require.Len(t, items, 1)
	assert.Equal(t, "x", items[0].Get("menuItem.id").String())
	assert.Equal(t, "V2", gjson.Get(rr.Body.String(), "data.vendor_id").String())
}

func TestAddItem_RejectsBadPayloads(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodPost, "/api/v1/cart/items", "s-bad", map[string]any{"menu_item": map[string]any{"id": ""}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, http.MethodPost, "/api/v1/cart/items", "s-bad", map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, http.MethodPost, "/api/v1/cart/items", "s-bad", addItem("a", "-1", "V"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ta.do(t, http.MethodPost, "/api/v1/cart/items", "s-bad", addItem("a", "10", ""))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, ta.repo.Saves())
}

func TestValidateCheckout(t *testing.T) {
	ta := newTestApp(t)
	const session = "s-validate"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))

	rr := ta.do(t, http.MethodPost, "/api/v1/checkout/validate", session, map[string]any{
		"tip":     "2000",
		"payment": map[string]any{"method": "upi"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.False(t, gjson.Get(body, "data.valid").Bool())
	assert.True(t, gjson.Get(body, "data.errors.address").Exists())
	assert.True(t, gjson.Get(body, "data.errors.payment").Exists())
	assert.True(t, gjson.Get(body, "data.errors.tip").Exists())
	assert.False(t, gjson.Get(body, "data.errors.cart").Exists())

	rr = ta.do(t, http.MethodPost, "/api/v1/checkout/validate", session, cashForm())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gjson.Get(rr.Body.String(), "data.valid").Bool())
}

func TestSubmitCheckout_Cash(t *testing.T) {
	ta := newTestApp(t)
	const session = "s-cash"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))

	rr := ta.do(t, http.MethodPost, "/api/v1/checkout", session, cashForm())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := rr.Body.String()
	assert.Equal(t, "order-42", gjson.Get(body, "data.navigation.order_id").String())
	assert.True(t, gjson.Get(body, "data.navigation.placed").Bool())
	assert.Equal(t, "SUBMITTED", gjson.Get(body, "data.submission.state").String())
	assert.Equal(t, "V1", gjson.Get(body, "data.submission.vendor_id").String())

	rr = ta.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	assert.Equal(t, int64(0), gjson.Get(rr.Body.String(), "data.item_count").Int())

	assert.Equal(t, 1, ta.broker.Len(queue.QueueRealtimeEvents))
	assert.Equal(t, 0, ta.app.checkouts.Len())
}

func TestSubmitCheckout_CardPaymentConfirmed(t *testing.T) {
	ta := newTestApp(t)
	const session = "s-card"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))

	rr := ta.do(t, http.MethodPost, "/api/v1/checkout", session, map[string]any{
		"address_id": "addr-1",
		"tip":        "0",
		"payment":    map[string]any{"method": "card", "card_id": "card-9"},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	body := rr.Body.String()
	assert.Equal(t, "PAYMENT_CONFIRMED", gjson.Get(body, "data.submission.state").String())
	assert.Equal(t, "pi_1", gjson.Get(body, "data.submission.payment_intent_id").String())
	assert.False(t, gjson.Get(body, "data.navigation.payment_pending").Bool())
}

func TestSubmitCheckout_ValidationErrors(t *testing.T) {
	ta := newTestApp(t)

	ta.do(t, http.MethodPost, "/api/v1/cart/items", "s-invalid", addItem("a", "100", "V1"))
	form := cashForm()
	delete(form, "address_id")

	rr := ta.do(t, http.MethodPost, "/api/v1/checkout", "s-invalid", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.True(t, gjson.Get(rr.Body.String(), "fields.address").Exists())

	// a stored cart with items but no vendor binding
	record := []byte(`{"version": 1, "items": [{"menuItem": {"id": "a", "price": 100}, "quantity": 1}]}`)
	require.NoError(t, ta.repo.Save(context.Background(), cart.StorageKey("s-corrupt"), record))
	<-ta.app.carts.Get(context.Background(), "s-corrupt").HydrationDone()

	rr = ta.do(t, http.MethodPost, "/api/v1/checkout", "s-corrupt", cashForm())
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.True(t, gjson.Get(rr.Body.String(), "fields.restaurant").Exists())

	// invalid forms keep their checkout session
	assert.Equal(t, 2, ta.app.checkouts.Len())
}

func TestSubmitCheckout_BackendRejection(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.orderStatus = http.StatusBadRequest
	ta.backend.orderBody = `{"error": "Restaurant is closed"}`
	const session = "s-rejected"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))

	rr := ta.do(t, http.MethodPost, "/api/v1/checkout", session, cashForm())
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "Restaurant is closed", gjson.Get(rr.Body.String(), "error").String())

	rr = ta.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	assert.Equal(t, int64(1), gjson.Get(rr.Body.String(), "data.item_count").Int())
	assert.Equal(t, 0, ta.app.checkouts.Len())
}

func TestSubmitCheckout_SlowBackendStillAnswered(t *testing.T) {
	ta := newTestApp(t)
	ta.backend.delay = 150 * time.Millisecond
	ta.app.config.writeTimeout = 100 * time.Millisecond
	ta.app.config.backend.Timeout = 300 * time.Millisecond

	ts := httptest.NewUnstartedServer(ta.handler)
	ts.Config = ta.app.server(ta.handler)
	ts.Start()
	defer ts.Close()

	const session = "s-slow"
	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))

	body, err := json.Marshal(map[string]any{
		"address_id": "addr-1",
		"payment":    map[string]any{"method": "upi", "upi_id": "me@bank"},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/checkout", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(SessionHeader, session)

	start := time.Now()
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Greater(t, time.Since(start), ta.app.config.writeTimeout)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "order-42", gjson.Get(out.String(), "data.navigation.order_id").String())
}

func TestWriteTimeout_CoversCheckout(t *testing.T) {
	app := &application{config: config{
		writeTimeout: 30 * time.Second,
		backend:      backendConfig{Timeout: 15 * time.Second},
		hydration:    retry.HydrationPolicy,
	}}

	// 3 backend calls and 100+200+300+400ms of hydration
	assert.Equal(t, 46*time.Second, app.checkoutBudget())
	assert.Equal(t, 51*time.Second, app.writeTimeout())

	app.config.writeTimeout = 2 * time.Minute
	assert.Equal(t, 2*time.Minute, app.writeTimeout())

	app.config.backend.Timeout = 0
	assert.Equal(t, 46*time.Second, app.checkoutBudget())
}

func TestSessionEviction(t *testing.T) {
	ta := newTestApp(t)
	ta.app.carts.WithIdleTimeout(time.Millisecond)
	const session = "s-idle"

	ta.do(t, http.MethodPost, "/api/v1/cart/items", session, addItem("a", "100", "V1"))
	ta.do(t, http.MethodPost, "/api/v1/checkout/validate", session, cashForm())
	require.Equal(t, 1, ta.app.carts.Len())
	require.Equal(t, 1, ta.app.checkouts.Len())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, []string{session}, ta.app.carts.Cleanup())
	assert.Equal(t, 0, ta.app.carts.Len())
	assert.Equal(t, 0, ta.app.checkouts.Len())

	<-ta.app.carts.Get(context.Background(), session).HydrationDone()
	rr := ta.do(t, http.MethodGet, "/api/v1/cart", session, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), gjson.Get(rr.Body.String(), "data.item_count").Int())
}

func TestGetOrder_CachesView(t *testing.T) {
	ta := newTestApp(t)

	for i := 0; i < 2; i++ {
		rr := ta.do(t, http.MethodGet, "/api/v1/orders/order-42", "s-orders", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "preparing", gjson.Get(rr.Body.String(), "data.status").String())
	}
	assert.Equal(t, int32(1), ta.backend.orderGets.Load())

	rr := ta.do(t, http.MethodGet, "/api/v1/orders/missing", "s-orders", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	ta := newTestApp(t)

	rr := ta.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", gjson.Get(rr.Body.String(), "status").String())

	ta.app.healthChecks["cache"] = func(context.Context) error { return errors.New("connection refused") }

	rr = ta.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "error", gjson.Get(rr.Body.String(), "services.cache").String())
}

func TestRateLimiter(t *testing.T) {
	ta := newTestApp(t)
	ta.app.config.rateLimiter.Enabled = true
	ta.app.rateLimiter = ratelimiter.NewTokenBucketLimiter(1, time.Minute)

	rr := ta.do(t, http.MethodGet, "/api/v1/cart", "s-limited", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ta.do(t, http.MethodGet, "/api/v1/cart", "s-limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}
