package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/auth"
	"storefront/internal/paypal"
	"storefront/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func viewer(c *gin.Context) Viewer {
	uid, _ := auth.CurrentUserID(c)
	return Viewer{UserID: uid, Admin: auth.IsAdmin(c)}
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrOrderNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)

	id, err := h.svc.PlaceOrder(c.Request.Context(), uid, session.CartID(c))
	if err != nil {
		h.fail(c, err, "failed to place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "order created",
		"order_id": id,
		"redirect": "/order/" + id.String(),
	})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	o, err := h.svc.GetOrder(c.Request.Context(), id, viewer(c))
	if err != nil {
		h.fail(c, err, "failed to load order")
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) MyOrders(c *gin.Context) {
	uid, _ := auth.CurrentUserID(c)
	page, _ := strconv.Atoi(c.Query("page"))

	res, err := h.svc.GetMyOrders(c.Request.Context(), uid, page)
	if err != nil {
		h.fail(c, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CreatePayPalOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	ppID, err := h.svc.CreatePayPalOrder(c.Request.Context(), id, viewer(c))
	if err != nil {
		h.fail(c, err, "failed to create paypal order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "paypal order created", "paypal_order_id": ppID})
}

type approveReq struct {
	OrderID string `json:"orderID" binding:"required"`
}

func (h *Handler) ApprovePayPalOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req approveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ApprovePayPalOrder(c.Request.Context(), id, req.OrderID, viewer(c)); err != nil {
		h.fail(c, err, "failed to capture payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "your order has been paid"})
}

// Admin
func (h *Handler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	res, err := h.svc.ListOrders(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Admin: cash on delivery orders are marked paid by hand
func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkCODPaid(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to update order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order marked as paid"})
}

func (h *Handler) MarkDelivered(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkDelivered(c.Request.Context(), id); err != nil {
		h.fail(c, err, "failed to update order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order marked as delivered"})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	var step *StepError
	var apiErr *paypal.APIError
	switch {
	case errors.As(err, &step):
		c.JSON(http.StatusConflict, gin.H{"error": step.Message, "redirect": step.Redirect})
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrOrderNotPaid), errors.Is(err, ErrNotCOD):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPaymentMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		slog.ErrorContext(c.Request.Context(), fallback, "paypal_status", apiErr.Status, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	default:
		slog.ErrorContext(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
