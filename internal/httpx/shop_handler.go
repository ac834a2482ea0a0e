package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/farmgate/storefront/internal/kafka"
	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

// Catalog is the read surface the storefront handlers need.
type Catalog interface {
	ListProducts(ctx context.Context) ([]shop.Product, error)
	GetOrderStatus(ctx context.Context, orderID int64) (shop.Status, error)
}

type ShopHandler struct {
	Checkout *shop.Checkout
	Catalog  Catalog
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

type placeOrderResp struct {
	OrderID int64 `json:"order_id"`
}

type errResp struct {
	Error string `json:"error"`
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Error: "Internal"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ShopHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req shop.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidJSON"})
		return
	}

	// The committer bounds its own unit of work; no extra deadline here.
	orderID, err := h.Checkout.PlaceOrder(r.Context(), req)
	if err != nil {
		writeJSON(w, checkoutStatus(err), errResp{Error: shop.Reason(err)})
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
	defer cancel()

	// Cache the initial status so the first poll skips the DB.
	statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, statusKey, `{"status":"Pending"}`, redisx.TTLStatusCache).Err()

	h.publishPlaced(orderID, req, r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, placeOrderResp{OrderID: orderID})
}

// checkoutStatus maps the failure taxonomy onto HTTP codes: client mistakes
// are 4xx, out-of-stock is a conflict, storage trouble is upstream failure.
func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, shop.ErrEmptyCart),
		errors.Is(err, shop.ErrIncompleteCustomerInfo),
		errors.Is(err, shop.ErrMalformedItem):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, shop.ErrCheckoutTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// publishPlaced emits the post-commit event. Best effort: the order is
// already durable, losing the event never undoes it.
func (h *ShopHandler) publishPlaced(orderID int64, req shop.PlaceOrderRequest, traceID string) {
	items := make([]shop.LineQty, 0, len(req.Items))
	var total int64
	for _, it := range req.Items {
		items = append(items, shop.LineQty{ProductID: it.ProductID, Qty: it.Quantity})
		total += int64(it.Quantity) * it.Price
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload: kafkax.MustMarshal(shop.OrderPlacedPayload{
			OrderID: orderID, Items: items, TotalAmount: total,
		}),
	}
	h.Producer.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *ShopHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || orderID <= 0 {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidOrderID"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	status, err := h.Catalog.GetOrderStatus(ctx, orderID)
	if errors.Is(err, shop.ErrOrderNotFound) {
		writeJSON(w, http.StatusNotFound, errResp{Error: "NotFound"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Error: "Internal"})
		return
	}
	body, _ := json.Marshal(map[string]any{"status": status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
