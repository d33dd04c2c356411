package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"storefront/auth"
	models "storefront/model"
	"storefront/service"
	"storefront/store"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Catalog
	r.HandleFunc("/products", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/{id:[0-9]+}", h.GetProduct).Methods("GET")
	r.HandleFunc("/categories", h.ListCategories).Methods("GET")

	// Admin inventory
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/{id:[0-9]+}/stock", h.UpdateStock).Methods("PUT")

	// Cart
	r.HandleFunc("/cart", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart", h.GetCart).Methods("GET")
	r.HandleFunc("/cart/increment/{productId:[0-9]+}", h.Increment).Methods("PUT")
	r.HandleFunc("/cart/decrement/{productId:[0-9]+}", h.Decrement).Methods("PUT")
	r.HandleFunc("/cart/{productId:[0-9]+}", h.RemoveFromCart).Methods("DELETE")

	// Checkout
	r.HandleFunc("/checkout", h.Checkout).Methods("POST")
	r.HandleFunc("/checkout/confirm", h.Confirm).Methods("GET")
	r.HandleFunc("/checkout/cancel", h.Cancel).Methods("GET")

	// Orders
	r.HandleFunc("/orders", h.MyOrders).Methods("GET")
	r.HandleFunc("/orders/all", h.AllOrders).Methods("GET")

	r.HandleFunc("/health", h.Health).Methods("GET")
}

// --- request / response shapes ---
type updateStockReq struct {
	NewStock *int `json:"new_stock"`
}

type messageResp struct {
	Message string `json:"message"`
}

type confirmResp struct {
	Message string         `json:"message"`
	Orders  []models.Order `json:"orders"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, kind models.Kind, msg string) {
	writeJSON(w, code, map[string]string{"error": msg, "code": kind.String()})
}

func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		// stock rules are client errors; duplicates are real conflicts
		if errors.Is(err, store.ErrConflict) {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindGateway:
		return http.StatusBadGateway
	case models.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeErr(w, code, models.KindOf(err), models.MessageOf(err))
}

// principal returns the authenticated caller or writes 401.
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, models.KindUnauthorized, "User is not authenticated.")
		return models.Principal{}, false
	}
	return p, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, name+" must be an integer")
		return 0, false
	}
	return id, true
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.Validation("%s must be a number", name)
	}
	return &d, nil
}

// --- Handler ---

// ListProducts handles GET /products?search&page&category&minPrice&maxPrice
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.ProductFilter{Search: q.Get("search"), Category: q.Get("category"), Page: 1}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, models.KindValidation, "page must be an integer")
			return
		}
		f.Page = page
	}
	var err error
	if f.MinPrice, err = queryDecimal(r, "minPrice"); err != nil {
		h.fail(w, r, err)
		return
	}
	if f.MaxPrice, err = queryDecimal(r, "maxPrice"); err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.svc.ListProducts(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "invalid json")
		return
	}
	prod, err := h.svc.CreateProduct(r.Context(), p, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, prod)
}

// UpdateStock handles PUT /products/{id}/stock
// body: { "new_stock": 7 }
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "invalid json")
		return
	}
	if req.NewStock == nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "new_stock is required")
		return
	}
	if err := h.svc.UpdateStock(r.Context(), p, id, *req.NewStock); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AddToCart handles POST /cart?productId=1&count=2
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	productID, err := strconv.ParseInt(q.Get("productId"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "productId must be an integer")
		return
	}
	count, err := strconv.Atoi(q.Get("count"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, models.KindValidation, "count must be an integer")
		return
	}
	if err := h.svc.AddToCart(r.Context(), p, productID, count); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: "Product added to cart."})
}

// GetCart handles GET /cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	view, err := h.svc.GetItems(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Increment handles PUT /cart/increment/{productId}
func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.cartLineOp(w, r, h.svc.Increment, "Cart item incremented.")
}

// Decrement handles PUT /cart/decrement/{productId}
func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.cartLineOp(w, r, h.svc.Decrement, "Cart item decremented.")
}

// RemoveFromCart handles DELETE /cart/{productId}
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.cartLineOp(w, r, h.svc.Remove, "Cart item deleted.")
}

type lineOp func(ctx context.Context, p models.Principal, productID int64) error

func (h *Handler) cartLineOp(w http.ResponseWriter, r *http.Request, op lineOp, done string) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	if err := op(r.Context(), p, productID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: done})
}

// Checkout handles POST /checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	url, err := h.svc.BuildSession(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirectUrl": url})
}

// Confirm handles GET /checkout/confirm. Safe to call more than once.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.Confirm(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmResp{Message: "Payment successful.", Orders: orders})
}

// Cancel handles GET /checkout/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := principal(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, messageResp{Message: "Payment canceled."})
}

// MyOrders handles GET /orders
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.ListMyOrders(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// AllOrders handles GET /orders/all
func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.ListAllOrders(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
