package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg)

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, p := range []string{"/products/1", "/products/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/products/{id}", "GET", "404")))
}

func TestCheckoutCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCheckout(reg)
	c.SessionCreated()
	c.OrdersConfirmed(3)
	c.StockConflict()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessions))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.orders))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stockConflicts))

	var nilCounters *Checkout
	assert.NotPanics(t, func() {
		nilCounters.SessionCreated()
		nilCounters.OrdersConfirmed(1)
		nilCounters.StockConflict()
	})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "storefront_checkout_orders_confirmed_total 3"))
}
