package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

// fakeAdminStore keeps products in memory and applies the real status
// transition rules to a single tracked order.
type fakeAdminStore struct {
	products    map[int64]shop.ProductInput
	ordered     map[int64]bool // product has order lines
	nextID      int64
	orderStatus map[int64]shop.Status
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{
		products:    map[int64]shop.ProductInput{},
		ordered:     map[int64]bool{},
		orderStatus: map[int64]shop.Status{},
	}
}

func (f *fakeAdminStore) AddProduct(_ context.Context, in shop.ProductInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	f.nextID++
	f.products[f.nextID] = in
	return f.nextID, nil
}

func (f *fakeAdminStore) UpdateProduct(_ context.Context, id int64, in shop.ProductInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, ok := f.products[id]; !ok {
		return shop.ErrProductNotFound
	}
	f.products[id] = in
	return nil
}

func (f *fakeAdminStore) DeleteProduct(_ context.Context, id int64) error {
	if f.ordered[id] {
		return shop.ErrProductInUse
	}
	if _, ok := f.products[id]; !ok {
		return shop.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeAdminStore) ListRecentOrders(_ context.Context, limit int) ([]shop.Order, error) {
	return nil, nil
}

func (f *fakeAdminStore) UpdateOrderStatus(_ context.Context, orderID int64, to shop.Status) error {
	cur, ok := f.orderStatus[orderID]
	if !ok {
		return shop.ErrOrderNotFound
	}
	if !shop.CanTransition(cur, to) {
		return shop.ErrBadTransition
	}
	f.orderStatus[orderID] = to
	return nil
}

func serveAdmin(store AdminStore, req *http.Request) *httptest.ResponseRecorder {
	h := &AdminHandler{Store: store, Redis: redisx.New("127.0.0.1:1")}
	r := NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddProductEndpoint(t *testing.T) {
	store := newFakeAdminStore()
	body := `{"name":"Fresh Milk","category":"Dairy","price":80,"stock":12}`
	w := serveAdmin(store, httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.products, 1)
}

func TestAddProductEndpoint_InvalidFields(t *testing.T) {
	body := `{"name":"","category":"Dairy","price":80,"stock":12}`
	w := serveAdmin(newFakeAdminStore(), httptest.NewRequest(http.MethodPost, "/admin/products", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProductEndpoint_InUse(t *testing.T) {
	store := newFakeAdminStore()
	store.products[1] = shop.ProductInput{Name: "Honey", Category: "Honey", Price: 500, Stock: 3}
	store.ordered[1] = true

	w := serveAdmin(store, httptest.NewRequest(http.MethodDelete, "/admin/products/1", nil))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Len(t, store.products, 1)
}

func TestUpdateProductEndpoint_NotFound(t *testing.T) {
	body := `{"name":"Eggs","category":"Eggs","price":10,"stock":100}`
	w := serveAdmin(newFakeAdminStore(), httptest.NewRequest(http.MethodPut, "/admin/products/9", strings.NewReader(body)))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrderStatusEndpoint(t *testing.T) {
	store := newFakeAdminStore()
	store.orderStatus[7] = shop.StatusPending

	w := serveAdmin(store, httptest.NewRequest(http.MethodPost, "/admin/orders/7/status",
		strings.NewReader(`{"status":"Delivered"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, shop.StatusDelivered, store.orderStatus[7])
}

func TestUpdateOrderStatusEndpoint_TerminalState(t *testing.T) {
	store := newFakeAdminStore()
	store.orderStatus[7] = shop.StatusDelivered

	w := serveAdmin(store, httptest.NewRequest(http.MethodPost, "/admin/orders/7/status",
		strings.NewReader(`{"status":"Cancelled"}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, shop.StatusDelivered, store.orderStatus[7])
}

func TestUpdateOrderStatusEndpoint_UnknownOrder(t *testing.T) {
	w := serveAdmin(newFakeAdminStore(), httptest.NewRequest(http.MethodPost, "/admin/orders/3/status",
		strings.NewReader(`{"status":"Delivered"}`)))
	require.Equal(t, http.StatusNotFound, w.Code)
}
