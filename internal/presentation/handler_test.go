package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonmoys423/teashop/internal/application"
	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/sslcommerz"
)

const frontendURL = "http://localhost:3000"

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*domain.Order)}
}

func (m *memOrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (m *memOrderRepo) GetByTransactionID(ctx context.Context, tranID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TransactionID == tranID && tranID != "" {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memOrderRepo) SetTransactionID(ctx context.Context, orderID, tranID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		o.TransactionID = tranID
	}
	return nil
}

func (m *memOrderRepo) SetPaymentOutcome(ctx context.Context, tranID string, ps domain.PaymentStatus, st domain.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TransactionID == tranID && tranID != "" {
			o.PaymentStatus = ps
			o.Status = st
			return true, nil
		}
	}
	return false, nil
}

func (m *memOrderRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// failingOrderRepo breaks every outcome write, for the callback error paths.
type failingOrderRepo struct {
	*memOrderRepo
}

func (f *failingOrderRepo) SetPaymentOutcome(ctx context.Context, tranID string, ps domain.PaymentStatus, st domain.OrderStatus) (bool, error) {
	return false, errors.New("write failed: connection reset")
}

type memProductRepo struct {
	products []domain.Product
}

func (m *memProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	return m.products, nil
}

func (m *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) ListByCategory(ctx context.Context, category domain.TeaCategory) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

type testEnv struct {
	router    *chi.Mux
	orderRepo *memOrderRepo
}

func setup(t *testing.T, gatewayBody string) *testEnv {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gatewayBody))
	}))
	t.Cleanup(srv.Close)

	gateway := sslcommerz.NewClient(sslcommerz.Config{
		StoreID:       "teststore123",
		StorePassword: "testpassword",
		APIURL:        srv.URL,
	})

	orderRepo := newMemOrderRepo()
	productRepo := &memProductRepo{products: []domain.Product{
		{ID: "p1", Title: "Earl Grey Premium", Price: 450, Category: domain.CategoryBlackTea, IsAvailable: true},
		{ID: "p2", Title: "Dragon Well Green Tea", Price: 380, Category: domain.CategoryGreenTea, IsAvailable: true},
	}}

	h := NewHandler(
		application.NewOrdersService(orderRepo),
		application.NewProductsService(productRepo),
		application.NewPaymentsService(orderRepo, gateway, nil),
		frontendURL,
	)

	r := chi.NewRouter()
	h.Register(r)

	return &testEnv{router: r, orderRepo: orderRepo}
}

func orderBody() []byte {
	b, _ := json.Marshal(domain.Order{
		Customer: domain.CustomerInfo{
			Name:         "Rahim Uddin",
			Email:        "rahim@example.com",
			Phone:        "+8801711111111",
			AddressLine1: "House 12, Road 5",
			City:         "Dhaka",
			PostalCode:   "1207",
			Country:      "Bangladesh",
		},
		Items: []domain.OrderItem{
			{ProductID: "p1", ProductTitle: "Earl Grey Premium", Quantity: 1, UnitPrice: 450, TotalPrice: 450},
			{ProductID: "p2", ProductTitle: "Dragon Well Green Tea", Quantity: 1, UnitPrice: 450, TotalPrice: 450},
		},
		Subtotal:     900,
		ShippingCost: 50,
		TotalAmount:  950,
	})
	return b
}

func doJSON(t *testing.T, env *testEnv, method, path string, body []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func postForm(env *testEnv, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestInitiatePayment_HTTPSuccess(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS","sessionkey":"sess-1","GatewayPageURL":"https://gw.test/pay/sess-1"}`)

	w, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", orderBody())

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^TEA\d{14}[0-9a-f]{8}$`, body["transaction_id"])
	assert.Equal(t, "https://gw.test/pay/sess-1", body["gateway_url"])
	assert.Equal(t, "sess-1", body["session_key"])

	stored, err := env.orderRepo.GetByTransactionID(context.Background(), body["transaction_id"].(string))
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestInitiatePayment_HTTPGatewayRejection(t *testing.T) {
	env := setup(t, `{"status":"FAILED","failedreason":"Invalid amount"}`)

	w, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", orderBody())

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid amount", body["error"])
	assert.Equal(t, 1, env.orderRepo.len(), "the order stays persisted without a transaction id")
}

func TestInitiatePayment_HTTPEmptyItems(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	b, _ := json.Marshal(map[string]any{
		"customer":     map[string]any{"name": "x", "email": "x@example.com", "phone": "1", "address_line1": "a", "city": "Dhaka", "postal_code": "1207", "country": "Bangladesh"},
		"items":        []any{},
		"subtotal":     0,
		"total_amount": 950,
	})
	w, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", b)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "at least one item")
	assert.Equal(t, 0, env.orderRepo.len(), "validation failure must not persist")
}

func TestPaymentCallbacks_Redirect(t *testing.T) {
	cases := []struct {
		path          string
		page          string
		paymentStatus domain.PaymentStatus
		status        domain.OrderStatus
	}{
		{"/api/payments/success", "success", domain.PaymentStatusCompleted, domain.OrderStatusConfirmed},
		{"/api/payments/fail", "failed", domain.PaymentStatusFailed, domain.OrderStatusCancelled},
		{"/api/payments/cancel", "cancelled", domain.PaymentStatusCancelled, domain.OrderStatusCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.page, func(t *testing.T) {
			env := setup(t, `{"status":"SUCCESS","sessionkey":"s","GatewayPageURL":"https://gw.test/pay"}`)

			_, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", orderBody())
			tranID := body["transaction_id"].(string)

			w := postForm(env, tc.path, url.Values{"tran_id": {tranID}})

			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, frontendURL+"/payment/"+tc.page+"?transaction_id="+tranID, w.Header().Get("Location"))

			stored, err := env.orderRepo.GetByTransactionID(context.Background(), tranID)
			require.NoError(t, err)
			assert.Equal(t, tc.paymentStatus, stored.PaymentStatus)
			assert.Equal(t, tc.status, stored.Status)
		})
	}
}

func TestPaymentCallback_UnknownTransactionStillRedirects(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w := postForm(env, "/api/payments/success", url.Values{"tran_id": {"TEA00000000000000deadbeef"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, frontendURL+"/payment/success?transaction_id=TEA00000000000000deadbeef", w.Header().Get("Location"))
	assert.Equal(t, 0, env.orderRepo.len())
}

func setupFailingStore(t *testing.T) *testEnv {
	t.Helper()
	repo := &failingOrderRepo{newMemOrderRepo()}

	h := NewHandler(
		application.NewOrdersService(repo),
		application.NewProductsService(&memProductRepo{}),
		application.NewPaymentsService(repo, nil, nil),
		frontendURL,
	)

	r := chi.NewRouter()
	h.Register(r)
	return &testEnv{router: r, orderRepo: repo.memOrderRepo}
}

func TestPaymentCallback_InternalErrorStillRedirects(t *testing.T) {
	for _, path := range []string{"/api/payments/success", "/api/payments/fail", "/api/payments/cancel"} {
		t.Run(path, func(t *testing.T) {
			env := setupFailingStore(t)

			w := postForm(env, path, url.Values{"tran_id": {"TEA00000000000000deadbeef"}})

			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, frontendURL+"/payment/error", w.Header().Get("Location"))
		})
	}
}

func TestPaymentIPN_InternalErrorStillAcks(t *testing.T) {
	env := setupFailingStore(t)

	w := postForm(env, "/api/payments/ipn", url.Values{"tran_id": {"TEA00000000000000deadbeef"}, "status": {"VALID"}})

	require.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentIPN_AppliesOutcomeAndAcks(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS","sessionkey":"s","GatewayPageURL":"https://gw.test/pay"}`)

	_, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", orderBody())
	tranID := body["transaction_id"].(string)

	w := postForm(env, "/api/payments/ipn", url.Values{"tran_id": {tranID}, "status": {"VALID"}})

	require.Equal(t, http.StatusOK, w.Code)
	stored, err := env.orderRepo.GetByTransactionID(context.Background(), tranID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, stored.PaymentStatus)
}

func TestPaymentIPN_UnrecognizedStatusStillAcks(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w := postForm(env, "/api/payments/ipn", url.Values{"tran_id": {"x"}, "status": {"UNATTEMPTED"}})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetPaymentStatus(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS","sessionkey":"s","GatewayPageURL":"https://gw.test/pay"}`)

	_, body := doJSON(t, env, http.MethodPost, "/api/payments/initiate", orderBody())
	tranID := body["transaction_id"].(string)
	postForm(env, "/api/payments/success", url.Values{"tran_id": {tranID}})

	w, status := doJSON(t, env, http.MethodGet, "/api/payments/status/"+tranID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tranID, status["transaction_id"])
	assert.Equal(t, "completed", status["status"])
	assert.Equal(t, 950.0, status["amount"])
	assert.Equal(t, "BDT", status["currency"])
}

func TestGetPaymentStatus_NotFound(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w, _ := doJSON(t, env, http.MethodGet, "/api/payments/status/unknown-id", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAndGetOrder(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w, created := doJSON(t, env, http.MethodPost, "/api/orders", orderBody())
	require.Equal(t, http.StatusOK, w.Code)
	id := created["id"].(string)
	require.NotEmpty(t, id)

	w, fetched := doJSON(t, env, http.MethodGet, "/api/orders/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, fetched["id"])
	assert.Equal(t, "pending", fetched["status"])
	assert.Equal(t, "pending", fetched["payment_status"])
}

func TestGetOrder_NotFound(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w, _ := doJSON(t, env, http.MethodGet, "/api/orders/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProducts(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	assert.Len(t, products, 2)
}

func TestListProductsByCategory_Invalid(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w, _ := doJSON(t, env, http.MethodGet, "/api/products/category/coffee", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := setup(t, `{"status":"SUCCESS"}`)

	w, _ := doJSON(t, env, http.MethodGet, "/api/products/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
