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
	"github.com/redis/go-redis/v9"

	"github.com/farmgate/storefront/internal/redisx"
	"github.com/farmgate/storefront/internal/shop"
)

// AdminStore is the management surface: product CRUD plus order history
// and status transitions. All of it lives outside the checkout core.
type AdminStore interface {
	AddProduct(ctx context.Context, in shop.ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, id int64, in shop.ProductInput) error
	DeleteProduct(ctx context.Context, id int64) error
	ListRecentOrders(ctx context.Context, limit int) ([]shop.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, to shop.Status) error
}

type AdminHandler struct {
	Store AdminStore
	Redis *redis.Client
}

const recentOrdersLimit = 20

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/products", h.addProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Get("/orders", h.listOrders)
		r.Post("/orders/{id}/status", h.updateOrderStatus)
	})
}

func (h *AdminHandler) addProduct(w http.ResponseWriter, r *http.Request) {
	var in shop.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidJSON"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Store.AddProduct(ctx, in)
	if err != nil {
		writeJSON(w, adminStatus(err), errResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"product_id": id})
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in shop.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidJSON"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.UpdateProduct(ctx, id, in); err != nil {
		writeJSON(w, adminStatus(err), errResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		writeJSON(w, adminStatus(err), errResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	orders, err := h.Store.ListRecentOrders(ctx, recentOrdersLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errResp{Error: "Internal"})
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type statusUpdateReq struct {
	Status shop.Status `json:"status"`
}

func (h *AdminHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidJSON"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.UpdateOrderStatus(ctx, orderID, req.Status); err != nil {
		writeJSON(w, adminStatus(err), errResp{Error: err.Error()})
		return
	}

	// Keep the status cache in step with the durable state.
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"status": req.Status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, shop.ErrProductNotFound), errors.Is(err, shop.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrProductInUse):
		return http.StatusConflict
	case errors.Is(err, shop.ErrInvalidProduct), errors.Is(err, shop.ErrBadTransition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errResp{Error: "InvalidID"})
		return 0, false
	}
	return id, true
}
