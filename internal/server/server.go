package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/categories"
	"storefront/internal/domain/user"
	"storefront/internal/orders"
	"storefront/internal/products"
	"storefront/internal/users"
)

type Handlers struct {
	JWT        *auth.JWTManager
	Sessions   gin.HandlerFunc
	Auth       *auth.Handler
	Products   *products.Handler
	Categories *categories.Handler
	Cart       *cart.Handler
	Users      *users.Handler
	Orders     *orders.Handler
}

// NewRouter builds the gin engine with every API route.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(), gin.Recovery(), h.Sessions)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/sign-up", h.Auth.SignUp)
		authGroup.POST("/sign-in", h.Auth.SignIn)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/sign-out", h.Auth.SignOut)
	}

	// Public catalog routes (no login required)
	api.GET("/categories", h.Categories.ListPublic)
	api.GET("/products", h.Products.List)
	api.GET("/products/latest", h.Products.Latest)
	api.GET("/products/featured", h.Products.Featured)
	api.GET("/products/:slug", h.Products.GetBySlug)

	// anonymous visitors shop with their session cart
	cartGroup := api.Group("/cart", auth.OptionalAuth(h.JWT))
	{
		cartGroup.GET("", h.Cart.GetMyCart)
		cartGroup.POST("/items", h.Cart.AddItem)
		cartGroup.PATCH("/items", h.Cart.UpdateQty)
		cartGroup.DELETE("/items/:productId", h.Cart.RemoveItem)
	}

	protected := api.Group("/")
	protected.Use(auth.AuthMiddleware(h.JWT))
	{
		protected.GET("/me", h.Auth.Me)
		protected.PATCH("/me", h.Auth.UpdateProfile)

		protected.GET("/me/shipping-address", h.Users.GetShippingAddress)
		protected.PUT("/me/shipping-address", h.Users.UpdateShippingAddress)
		protected.GET("/me/payment-method", h.Users.GetPaymentMethod)
		protected.PUT("/me/payment-method", h.Users.UpdatePaymentMethod)

		protected.POST("/orders", h.Orders.PlaceOrder)
		protected.GET("/orders/mine", h.Orders.MyOrders)
		protected.GET("/orders/:id", h.Orders.GetOrder)
		protected.POST("/orders/:id/paypal", h.Orders.CreatePayPalOrder)
		protected.POST("/orders/:id/paypal/approve", h.Orders.ApprovePayPalOrder)

		adminOnly := protected.Group("/admin")
		adminOnly.Use(auth.RequireRole(user.RoleAdmin))

		adminOnly.POST("/products", h.Products.AdminCreate)
		adminOnly.GET("/orders", h.Orders.ListAll)
		adminOnly.PUT("/orders/:id/pay", h.Orders.MarkPaid)
		adminOnly.PUT("/orders/:id/deliver", h.Orders.MarkDelivered)
	}

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
