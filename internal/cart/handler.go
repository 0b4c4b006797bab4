package cart

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/domain/cart"
	"storefront/internal/products"
	"storefront/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func currentUser(c *gin.Context) *uuid.UUID {
	if id, ok := auth.CurrentUserID(c); ok {
		return &id
	}
	return nil
}

func (h *Handler) GetMyCart(c *gin.Context) {
	crt, err := h.svc.GetMyCart(c.Request.Context(), session.CartID(c), currentUser(c))
	if err != nil {
		h.fail(c, err, "failed to load cart")
		return
	}
	c.JSON(http.StatusOK, crt)
}

type AddItemReq struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Qty       int       `json:"qty" binding:"omitempty,min=1"`
}

func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	crt, msg, err := h.svc.AddItem(c.Request.Context(), session.CartID(c), currentUser(c), req.ProductID, req.Qty)
	if err != nil {
		h.fail(c, err, "failed to add item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "cart": crt})
}

type UpdateQtyReq struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Qty       int       `json:"qty" binding:"required,min=1"`
}

func (h *Handler) UpdateQty(c *gin.Context) {
	var req UpdateQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	crt, err := h.svc.UpdateQty(c.Request.Context(), session.CartID(c), currentUser(c), req.ProductID, req.Qty)
	if err != nil {
		h.fail(c, err, "failed to update qty")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": crt})
}

func (h *Handler) RemoveItem(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	crt, msg, err := h.svc.RemoveItem(c.Request.Context(), session.CartID(c), currentUser(c), productID)
	if err != nil {
		h.fail(c, err, "failed to remove item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "cart": crt})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, products.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, ErrCartNotFound), errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotEnoughStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForeignCart):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrSessionCartNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
