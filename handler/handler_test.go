package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/auth"
	models "storefront/model"
	"storefront/service"
	"storefront/store"
)

// ---- fakeService implementing service.ServiceInterface for tests ----
type fakeService struct {
	ListProductsFn  func(ctx context.Context, f service.ProductFilter) (service.ProductPage, error)
	GetProductFn    func(ctx context.Context, id int64) (models.Product, error)
	AddToCartFn     func(ctx context.Context, p models.Principal, productID int64, count int) error
	GetItemsFn      func(ctx context.Context, p models.Principal) (service.CartView, error)
	IncrementFn     func(ctx context.Context, p models.Principal, productID int64) error
	BuildSessionFn  func(ctx context.Context, p models.Principal) (string, error)
	ConfirmFn       func(ctx context.Context, p models.Principal) ([]models.Order, error)
	ListMyOrdersFn  func(ctx context.Context, p models.Principal) ([]models.Order, error)
	ListAllOrdersFn func(ctx context.Context, p models.Principal) ([]models.Order, error)
	UpdateStockFn   func(ctx context.Context, p models.Principal, productID int64, stock int) error
}

func (f *fakeService) ListProducts(ctx context.Context, fl service.ProductFilter) (service.ProductPage, error) {
	return f.ListProductsFn(ctx, fl)
}
func (f *fakeService) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return f.GetProductFn(ctx, id)
}
func (f *fakeService) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Lenovo"}}, nil
}
func (f *fakeService) AddToCart(ctx context.Context, p models.Principal, productID int64, count int) error {
	return f.AddToCartFn(ctx, p, productID, count)
}
func (f *fakeService) GetItems(ctx context.Context, p models.Principal) (service.CartView, error) {
	return f.GetItemsFn(ctx, p)
}
func (f *fakeService) Increment(ctx context.Context, p models.Principal, productID int64) error {
	return f.IncrementFn(ctx, p, productID)
}
func (f *fakeService) Decrement(context.Context, models.Principal, int64) error { return nil }
func (f *fakeService) Remove(context.Context, models.Principal, int64) error {
	return models.NotFound("Cart item not found.")
}
func (f *fakeService) BuildSession(ctx context.Context, p models.Principal) (string, error) {
	return f.BuildSessionFn(ctx, p)
}
func (f *fakeService) Confirm(ctx context.Context, p models.Principal) ([]models.Order, error) {
	return f.ConfirmFn(ctx, p)
}
func (f *fakeService) ListMyOrders(ctx context.Context, p models.Principal) ([]models.Order, error) {
	return f.ListMyOrdersFn(ctx, p)
}
func (f *fakeService) ListAllOrders(ctx context.Context, p models.Principal) ([]models.Order, error) {
	return f.ListAllOrdersFn(ctx, p)
}
func (f *fakeService) CreateProduct(context.Context, models.Principal, service.ProductInput) (models.Product, error) {
	return models.Product{}, models.Forbidden("You are not allowed to manage products.")
}
func (f *fakeService) UpdateStock(ctx context.Context, p models.Principal, productID int64, stock int) error {
	return f.UpdateStockFn(ctx, p, productID, stock)
}

var shopper = models.Principal{ID: "u1", Name: "Alice"}

func serve(t *testing.T, svc service.ServiceInterface, method, target string, p *models.Principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListProductsParsesQuery(t *testing.T) {
	var got service.ProductFilter
	svc := &fakeService{ListProductsFn: func(_ context.Context, f service.ProductFilter) (service.ProductPage, error) {
		got = f
		return service.ProductPage{Data: []models.Product{}, TotalPages: 0, CurrentPage: f.Page}, nil
	}}

	rec := serve(t, svc, http.MethodGet, "/products?search=x1&category=Lenovo&page=2&minPrice=100&maxPrice=2000", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x1", got.Search)
	assert.Equal(t, "Lenovo", got.Category)
	assert.Equal(t, 2, got.Page)
	require.NotNil(t, got.MinPrice)
	assert.True(t, got.MinPrice.Equal(decimal.NewFromInt(100)))
	assert.JSONEq(t, `{"data":[],"totalPages":0,"currentPage":2}`, rec.Body.String())

	rec = serve(t, svc, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, got.Page)
	assert.Nil(t, got.MaxPrice)
}

func TestListProductsBadInput(t *testing.T) {
	svc := &fakeService{ListProductsFn: func(context.Context, service.ProductFilter) (service.ProductPage, error) {
		return service.ProductPage{}, models.Validation("Minimum price cannot be greater than maximum price.")
	}}

	rec := serve(t, svc, http.MethodGet, "/products?minPrice=500&maxPrice=100", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeErr(t, rec)["code"])

	rec = serve(t, svc, http.MethodGet, "/products?minPrice=cheap", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, http.MethodGet, "/products?page=two", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct(t *testing.T) {
	svc := &fakeService{GetProductFn: func(_ context.Context, id int64) (models.Product, error) {
		if id != 1 {
			return models.Product{}, models.NotFound("Product not found.")
		}
		return models.Product{ID: 1, Name: "X1 Carbon", Category: &models.Category{ID: 2, Name: "Lenovo"}}, nil
	}}

	rec := serve(t, svc, http.MethodGet, "/products/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":{"id":2,"name":"Lenovo"}`)

	rec = serve(t, svc, http.MethodGet, "/products/7", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRequiresPrincipal(t *testing.T) {
	svc := &fakeService{}
	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/cart?productId=1&count=1"},
		{http.MethodGet, "/cart"},
		{http.MethodPut, "/cart/increment/1"},
		{http.MethodDelete, "/cart/1"},
		{http.MethodPost, "/checkout"},
		{http.MethodGet, "/checkout/confirm"},
		{http.MethodGet, "/checkout/cancel"},
		{http.MethodGet, "/orders"},
	} {
		rec := serve(t, svc, tc.method, tc.target, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.target)
	}
}

func TestAddToCart(t *testing.T) {
	svc := &fakeService{AddToCartFn: func(_ context.Context, p models.Principal, productID int64, count int) error {
		assert.Equal(t, "u1", p.ID)
		switch {
		case productID == 404:
			return models.NotFound("Product not found.")
		case count > 3:
			return models.Conflict("Requested quantity exceeds available stock.")
		}
		return nil
	}}

	rec := serve(t, svc, http.MethodPost, "/cart?productId=1&count=2", &shopper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Product added to cart."}`, rec.Body.String())

	rec = serve(t, svc, http.MethodPost, "/cart?productId=1&count=9", &shopper, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Requested quantity exceeds available stock.", decodeErr(t, rec)["error"])

	rec = serve(t, svc, http.MethodPost, "/cart?productId=404&count=1", &shopper, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/cart?productId=1&count=lots", &shopper, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartLineOps(t *testing.T) {
	svc := &fakeService{
		IncrementFn: func(context.Context, models.Principal, int64) error {
			return models.Conflict("Cannot exceed available stock.")
		},
		GetItemsFn: func(context.Context, models.Principal) (service.CartView, error) {
			return service.CartView{Items: []service.CartLineView{}, Total: decimal.Zero}, nil
		},
	}

	rec := serve(t, svc, http.MethodPut, "/cart/increment/1", &shopper, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, http.MethodPut, "/cart/decrement/1", &shopper, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, svc, http.MethodDelete, "/cart/1", &shopper, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, svc, http.MethodGet, "/cart", &shopper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":"0"}`, rec.Body.String())
}

func TestCheckoutAndConfirm(t *testing.T) {
	calls := 0
	svc := &fakeService{
		BuildSessionFn: func(context.Context, models.Principal) (string, error) {
			return "https://pay.example/cs_1", nil
		},
		ConfirmFn: func(context.Context, models.Principal) ([]models.Order, error) {
			calls++
			if calls > 1 {
				return []models.Order{}, nil
			}
			return []models.Order{{ID: 1, ProductID: 1, Quantity: 3}}, nil
		},
	}

	rec := serve(t, svc, http.MethodPost, "/checkout", &shopper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"redirectUrl":"https://pay.example/cs_1"}`, rec.Body.String())

	for i := 0; i < 2; i++ {
		rec = serve(t, svc, http.MethodGet, "/checkout/confirm", &shopper, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Contains(t, rec.Body.String(), `"orders":[]`)

	rec = serve(t, svc, http.MethodGet, "/checkout/cancel", &shopper, "")
	assert.JSONEq(t, `{"message":"Payment canceled."}`, rec.Body.String())
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{models.Gateway(errors.New("timeout"), "The payment provider is unavailable, try again later."), http.StatusBadGateway},
		{models.Storage(errors.New("conn reset"), "An error occurred."), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{models.Forbidden("nope"), http.StatusForbidden},
		{models.Unavailable(context.Canceled, "cancelled"), http.StatusServiceUnavailable},
		{&models.Error{Kind: models.KindConflict, Message: "dup", Err: fmt.Errorf("insert: %w", store.ErrConflict)}, http.StatusConflict},
	}
	for _, tc := range cases {
		svc := &fakeService{ListAllOrdersFn: func(context.Context, models.Principal) ([]models.Order, error) {
			return nil, tc.err
		}}
		rec := serve(t, svc, http.MethodGet, "/orders/all", &shopper, "")
		assert.Equal(t, tc.code, rec.Code, "%v", tc.err)
	}

	svc := &fakeService{ListAllOrdersFn: func(context.Context, models.Principal) ([]models.Order, error) {
		return nil, errors.New("pq: password authentication failed")
	}}
	rec := serve(t, svc, http.MethodGet, "/orders/all", &shopper, "")
	assert.Equal(t, "internal error", decodeErr(t, rec)["error"])
}

func TestAdminRoutes(t *testing.T) {
	var gotStock int
	svc := &fakeService{UpdateStockFn: func(_ context.Context, _ models.Principal, _ int64, stock int) error {
		gotStock = stock
		return nil
	}}

	rec := serve(t, svc, http.MethodPut, "/products/1/stock", &shopper, `{"new_stock":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, gotStock)

	rec = serve(t, svc, http.MethodPut, "/products/1/stock", &shopper, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, http.MethodPost, "/products", &shopper, `{"name":"X1","price":"10.00","category_id":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
