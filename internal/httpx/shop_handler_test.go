package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	kafkax "github.com/farmgate/storefront/internal/kafka"
	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

// stubStore always begins; stubTx reports insufficient stock on demand.
type stubStore struct{ insufficient bool }

func (s *stubStore) Begin(ctx context.Context) (shop.CheckoutTx, error) {
	return &stubTx{insufficient: s.insufficient}, nil
}

type stubTx struct{ insufficient bool }

func (t *stubTx) InsertOrder(ctx context.Context, d shop.OrderDraft) (int64, error) { return 42, nil }
func (t *stubTx) InsertLine(ctx context.Context, orderID int64, it shop.CartItem) error {
	return nil
}
func (t *stubTx) DecrementStock(ctx context.Context, productID int64, qty int) (int64, error) {
	if t.insufficient {
		return 0, nil
	}
	return 1, nil
}
func (t *stubTx) Commit(ctx context.Context) error   { return nil }
func (t *stubTx) Rollback(ctx context.Context) error { return nil }

type fakeCatalog struct {
	products []shop.Product
	statuses map[int64]shop.Status
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]shop.Product, error) {
	return f.products, nil
}

func (f *fakeCatalog) GetOrderStatus(ctx context.Context, orderID int64) (shop.Status, error) {
	if s, ok := f.statuses[orderID]; ok {
		return s, nil
	}
	return "", shop.ErrOrderNotFound
}

// newTestHandler wires a handler whose redis points nowhere (cache misses
// fall through) and whose producer only buffers.
func newTestHandler(store shop.CheckoutStore, catalog *fakeCatalog) *ShopHandler {
	return &ShopHandler{
		Checkout: &shop.Checkout{Store: store},
		Catalog:  catalog,
		Producer: kafkax.NewProducer([]string{"127.0.0.1:9092"}, shop.TopicOrderPlaced, 64),
		Redis:    redisx.New("127.0.0.1:1"),
		Service:  "storefront-test",
	}
}

func serve(h *ShopHandler, req *http.Request) *httptest.ResponseRecorder {
	r := NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validOrderBody = `{
	"customer_name": "Rahima Khatun",
	"customer_phone": "01711-000000",
	"customer_address": "12 Mirpur Road, Dhaka",
	"items": [{"product_id": 1, "quantity": 2, "price": 100}]
}`

func TestPlaceOrderEndpoint_Success(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{})

	w := serve(h, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp placeOrderResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(42), resp.OrderID)
}

func TestPlaceOrderEndpoint_EmptyCart(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{})

	body := `{"customer_name":"A","customer_phone":"B","customer_address":"C","items":[]}`
	w := serve(h, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "EmptyCart", resp.Error)
}

func TestPlaceOrderEndpoint_IncompleteCustomer(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{})

	body := `{"customer_name":"","customer_phone":"B","customer_address":"C","items":[{"product_id":1,"quantity":1,"price":5}]}`
	w := serve(h, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "IncompleteCustomerInfo", resp.Error)
}

func TestPlaceOrderEndpoint_InsufficientStock(t *testing.T) {
	h := newTestHandler(&stubStore{insufficient: true}, &fakeCatalog{})

	w := serve(h, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(validOrderBody)))
	require.Equal(t, http.StatusConflict, w.Code)

	var resp errResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "InsufficientStock", resp.Error)
}

func TestPlaceOrderEndpoint_InvalidJSON(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{})

	w := serve(h, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{")))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderEndpoint_FallsBackToStore(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{statuses: map[int64]shop.Status{42: shop.StatusPending}})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"Pending"}`, w.Body.String())
}

func TestGetOrderEndpoint_NotFound(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/orders/999", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProductsEndpoint(t *testing.T) {
	h := newTestHandler(&stubStore{}, &fakeCatalog{products: []shop.Product{
		{ID: 1, Name: "Fresh Milk", Category: "Dairy", PricePerUnit: 80, StockQuantity: 12},
	}})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var products []shop.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	require.Equal(t, "Fresh Milk", products[0].Name)
}
