package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vastralane/storefront-backend/api/routes"
	"github.com/vastralane/storefront-backend/internal/addresses"
	authsvc "github.com/vastralane/storefront-backend/internal/auth"
	"github.com/vastralane/storefront-backend/internal/cart"
	"github.com/vastralane/storefront-backend/internal/catalog"
	"github.com/vastralane/storefront-backend/internal/media"
	"github.com/vastralane/storefront-backend/internal/orders"
	"github.com/vastralane/storefront-backend/internal/payments"
	"github.com/vastralane/storefront-backend/internal/reporting"
	"github.com/vastralane/storefront-backend/internal/reviews"
	"github.com/vastralane/storefront-backend/internal/users"
	"github.com/vastralane/storefront-backend/internal/wishlist"
	"github.com/vastralane/storefront-backend/pkg/auth/session"
	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db"
	"github.com/vastralane/storefront-backend/pkg/imagekit"
	"github.com/vastralane/storefront-backend/pkg/logger"
	"github.com/vastralane/storefront-backend/pkg/metrics"
	"github.com/vastralane/storefront-backend/pkg/migrate"
	"github.com/vastralane/storefront-backend/pkg/razorpay"
	"github.com/vastralane/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	addressRepo := addresses.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	reviewRepo := reviews.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	reportingRepo := reporting.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo: userRepo,
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{ProductRepo: productRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Checkout:    cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	addressService, err := addresses.NewService(addresses.ServiceParams{
		AddressRepo: addressRepo,
		DB:          dbClient,
		Policy:      cfg.Address,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		ProductRepo:  productRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		ReviewRepo:  reviewRepo,
		ProductRepo: productRepo,
		DB:          dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		OrderRepo:   orderRepo,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		AddressRepo: addressRepo,
		DB:          dbClient,
		Idempotency: redisClient,
		Checkout:    cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	var gateway payments.Gateway
	if cfg.Razorpay.Configured() {
		razorpayClient, err := razorpay.NewClient(
			cfg.Razorpay.KeyID,
			cfg.Razorpay.KeySecret,
			razorpay.WithBaseURL(cfg.Razorpay.BaseURL),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay client", err)
			os.Exit(1)
		}
		gateway = razorpayClient
	} else {
		logg.Warn(context.Background(), "razorpay credentials missing, online payments disabled")
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Orders:  orderRepo,
		Gateway: gateway,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	var uploader media.Uploader
	if cfg.ImageKit.Configured() {
		imagekitClient, err := imagekit.NewClient(
			cfg.ImageKit.PrivateKey,
			cfg.ImageKit.PublicKey,
			imagekit.WithUploadBaseURL(cfg.ImageKit.BaseURL),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create imagekit client", err)
			os.Exit(1)
		}
		uploader = imagekitClient
	} else {
		logg.Warn(context.Background(), "imagekit credentials missing, media uploads disabled")
	}

	mediaService, err := media.NewService(media.ServiceParams{Uploader: uploader})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{UserRepo: userRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	reportingService, err := reporting.NewService(reporting.ServiceParams{Repo: reportingRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Sessions:  sessionManager,
			Registry:  registry,
			Metrics:   httpMetrics,
			Auth:      authService,
			Catalog:   catalogService,
			Cart:      cartService,
			Addresses: addressService,
			Wishlist:  wishlistService,
			Reviews:   reviewService,
			Orders:    orderService,
			Payments:  paymentService,
			Media:     mediaService,
			Users:     usersService,
			Reporting: reportingService,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
