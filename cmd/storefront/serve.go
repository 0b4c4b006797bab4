package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/categories"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/mail"
	"storefront/internal/orders"
	"storefront/internal/paypal"
	"storefront/internal/products"
	"storefront/internal/server"
	"storefront/internal/session"
	"storefront/internal/telemetry"
	"storefront/internal/users"
)

const serviceName = "storefront"

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			telemetry.InitLogger(cfg.AppEnv)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func migrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			telemetry.InitLogger(cfg.AppEnv)

			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL, cfg.PoolOptions())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("schema applied")
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		slog.Warn("SESSION_SECRET not set, using JWT_ACCESS_SECRET")
		sessionSecret = cfg.JWTAccessSecret
	}
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.PoolOptions())
	if err != nil {
		return err
	}
	defer pool.Close()

	tokenCache := newCache(ctx, cfg.RedisAddr)

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer:         cfg.JWTIssuer,
		AccessSecret:   cfg.JWTAccessSecret,
		RefreshSecret:  cfg.JWTRefreshSecret,
		AccessTTLMin:   cfg.AccessTokenTTLMin,
		RefreshTTLDays: cfg.RefreshTokenTTLDays,
	})
	sessions := session.NewManager(sessionSecret, time.Duration(cfg.SessionMaxAgeDays)*24*time.Hour, cfg.IsProd())

	payments := paypal.NewClient(paypal.Config{
		BaseURL:  cfg.PayPalAPIURL,
		ClientID: cfg.PayPalClientID,
		Secret:   cfg.PayPalAppSecret,
	}, tokenCache)

	receipts := mail.NewReceiptMailer(mail.New(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}), cfg.AppName, cfg.AppBaseURL)

	// Repos
	userRepo := auth.NewUserRepo(pool)
	refreshRepo := auth.NewRefreshRepo(pool)
	prodRepo := products.NewRepo(pool)
	catRepo := categories.NewRepo(pool)
	cartRepo := cart.NewRepo(pool)
	orderRepo := orders.NewRepo(pool)

	// Services
	cartSvc := cart.NewService(cartRepo, prodRepo)
	orderSvc := orders.NewService(orderRepo, cartSvc, userRepo, payments, receipts, cfg.OrdersPageSize)
	defer orderSvc.Wait()

	router := server.NewRouter(server.Handlers{
		JWT:      jwtMgr,
		Sessions: sessions.Middleware(),
		Auth: auth.NewHandler(auth.Dependencies{
			JWT:      jwtMgr,
			Users:    userRepo,
			Refresh:  refreshRepo,
			Carts:    cartSvc,
			Sessions: sessions,
		}),
		Products:   products.NewHandler(prodRepo, cfg.ProductsPageSize, cfg.LatestProductsLimit),
		Categories: categories.NewHandler(catRepo),
		Cart:       cart.NewHandler(cartSvc),
		Users:      users.NewHandler(userRepo, cartSvc, cfg.PaymentMethods, cfg.DefaultPaymentMethod),
		Orders:     orders.NewHandler(orderSvc),
	})

	return server.Run(ctx, cfg.HTTPAddr, router)
}

// newCache prefers redis and falls back to process memory when redis is not
// configured or not reachable.
func newCache(ctx context.Context, addr string) cache.Cache {
	if addr == "" {
		return cache.NewMemoryCache(serviceName)
	}
	c := cache.NewRedisCache(addr, serviceName)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, c); err != nil {
		slog.Warn("redis unavailable, using in-memory cache", "addr", addr, "error", err)
		return cache.NewMemoryCache(serviceName)
	}
	return c
}
