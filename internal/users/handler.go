package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/domain/cart"
	"storefront/internal/domain/user"
	"storefront/internal/session"
)

type Profiles interface {
	ByID(ctx context.Context, id uuid.UUID) (user.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, addr user.ShippingAddress) error
	UpdatePaymentMethod(ctx context.Context, id uuid.UUID, method string) error
}

type Carts interface {
	GetMyCart(ctx context.Context, sessionCartID string, userID *uuid.UUID) (cart.Cart, error)
}

type Handler struct {
	profiles      Profiles
	carts         Carts
	methods       []string
	defaultMethod string
}

func NewHandler(profiles Profiles, carts Carts, methods []string, defaultMethod string) *Handler {
	return &Handler{profiles: profiles, carts: carts, methods: methods, defaultMethod: defaultMethod}
}

// GetShippingAddress returns the saved address. Checkout with an empty cart
// is sent back to the cart page.
func (h *Handler) GetShippingAddress(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)
	ctx := c.Request.Context()

	crt, err := h.carts.GetMyCart(ctx, session.CartID(c), &uid)
	if err != nil {
		slog.ErrorContext(ctx, "load cart", "user_id", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return
	}
	if crt.IsEmpty() {
		c.JSON(http.StatusConflict, gin.H{"error": "your cart is empty", "redirect": "/cart"})
		return
	}

	u, ok := h.user(c, uid)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": u.Address})
}

func (h *Handler) UpdateShippingAddress(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)

	var req user.ShippingAddress
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdateAddress(c.Request.Context(), uid, req); err != nil {
		h.updateFailed(c, err, "update address")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully", "address": req})
}

func (h *Handler) GetPaymentMethod(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)

	u, ok := h.user(c, uid)
	if !ok {
		return
	}
	method := u.PaymentMethod
	if method == "" {
		method = h.defaultMethod
	}
	c.JSON(http.StatusOK, gin.H{"payment_method": method, "methods": h.methods})
}

type paymentMethodReq struct {
	Type string `json:"type" binding:"required"`
}

func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)

	var req paymentMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !slices.Contains(h.methods, req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method"})
		return
	}

	if err := h.profiles.UpdatePaymentMethod(c.Request.Context(), uid, req.Type); err != nil {
		h.updateFailed(c, err, "update payment method")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user updated successfully", "payment_method": req.Type})
}

func (h *Handler) user(c *gin.Context, uid uuid.UUID) (user.User, bool) {
	u, err := h.profiles.ByID(c.Request.Context(), uid)
	if errors.Is(err, auth.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return u, false
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "load user", "user_id", uid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return u, false
	}
	return u, true
}

func (h *Handler) updateFailed(c *gin.Context, err error, op string) {
	if errors.Is(err, auth.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	slog.ErrorContext(c.Request.Context(), op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
}
