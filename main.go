package main

// GET    /products               - paginated, filterable catalog
// GET    /products/{id}          - product details
// GET    /categories             - category list
// POST   /products               - create product (admin)
// PUT    /products/{id}/stock    - set stock (admin)
// POST   /cart?productId&count   - add to cart
// GET    /cart                   - list cart
// PUT    /cart/increment/{id}    - increment a cart line
// PUT    /cart/decrement/{id}    - decrement a cart line
// DELETE /cart/{id}              - remove a cart line
// POST   /checkout               - start a payment session
// GET    /checkout/confirm       - turn the cart into orders
// GET    /checkout/cancel        - payment canceled
// GET    /orders, /orders/all    - own orders, every order (admin)

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"storefront/auth"
	"storefront/config"
	"storefront/events"
	"storefront/handler"
	"storefront/metrics"
	"storefront/payment"
	"storefront/service"
	"storefront/session"
	"storefront/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// --- Store ---
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// --- Checkout sessions ---
	var sessions session.Store = session.NewMemoryStore(cfg.SessionTTL)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		slog.Info("checkout sessions in redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
	}

	// --- Payment gateway ---
	var gw payment.Gateway = payment.SandboxGateway{}
	if cfg.StripeSecretKey != "" {
		gw = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, using sandbox payment gateway")
	}
	gw = payment.NewBreaker(gw, 5, 30*time.Second)

	// --- Events ---
	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers)
		slog.Info("publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.OrdersTopic)
	}
	defer pub.Close()

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg)

	// --- Service ---
	svc := service.NewService(service.Deps{
		Store:    st,
		Gateway:  gw,
		Sessions: sessions,
		Events:   pub,
		Metrics:  metrics.NewCheckout(reg),
	}, service.Settings{
		Currency:    cfg.Currency,
		SuccessURL:  cfg.SuccessURL,
		CancelURL:   cfg.CancelURL,
		OrdersTopic: cfg.OrdersTopic,
	})

	// --- Router ---
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(serverMetrics.Middleware)
	r.Use(auth.NewVerifier(cfg.JWTSecret).Middleware)
	r.Handle("/metrics", metrics.Handler(reg)).Methods("GET")
	handler.NewHandler(svc).RegisterRoutes(r)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server exited")
	return nil
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		mem := store.NewMemoryStore()
		for _, name := range []string{"Lenovo", "Dell", "HP", "Apple"} {
			if _, err := mem.AddCategory(name); err != nil {
				return nil, err
			}
		}
		slog.Warn("using in-memory store, data is lost on restart")
		return mem, nil
	}

	pg, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}
	slog.Info("database migrations executed successfully")
	return pg, nil
}
