package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/user"
	"storefront/internal/session"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	ByEmail(ctx context.Context, email string) (user.User, error)
	ByID(ctx context.Context, id uuid.UUID) (user.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (user.User, error)
}

type RefreshStore interface {
	Store(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	Rotate(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	Revoke(ctx context.Context, userID uuid.UUID, tokenHash string) error
}

type CartMerger interface {
	MergeSessionCart(ctx context.Context, sessionCartID string, userID uuid.UUID) (cart.MergeResult, error)
}

type Sessions interface {
	SwitchCart(c *gin.Context, cartID, previousID string) error
	Reset(c *gin.Context) error
}

type Dependencies struct {
	JWT      *JWTManager
	Users    UserStore
	Refresh  RefreshStore
	Carts    CartMerger
	Sessions Sessions
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	return &Handler{deps: d}
}

type signUpReq struct {
	Name            string `json:"name" binding:"required,min=3"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type signInReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateProfileReq struct {
	Name string `json:"name" binding:"required,min=3"`
}

func normalizeEmail(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords don't match"})
		return
	}

	pwHash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "password hash failed"})
		return
	}

	u, err := h.deps.Users.Create(c.Request.Context(), strings.TrimSpace(req.Name), normalizeEmail(req.Email), pwHash, user.RoleUser)
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": ErrEmailTaken.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "create user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	h.completeSignIn(c, u, http.StatusCreated)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.deps.Users.ByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil || !CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	h.completeSignIn(c, u, http.StatusOK)
}

// completeSignIn hands the anonymous session cart over to the user and issues
// the token pair.
func (h *Handler) completeSignIn(c *gin.Context, u user.User, status int) {
	ctx := c.Request.Context()

	merge, err := h.deps.Carts.MergeSessionCart(ctx, session.CartID(c), u.ID)
	if errors.Is(err, cart.ErrSessionCartNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "merge session cart", "user_id", u.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}
	if merge.SwitchTo != "" {
		if err := h.deps.Sessions.SwitchCart(c, merge.SwitchTo, merge.PreviousSessionCartID); err != nil {
			slog.ErrorContext(ctx, "switch session cart", "user_id", u.ID, "error", err)
		}
	}

	p := Principal{UserID: u.ID, Name: u.Name, Role: u.Role}
	access, accessExp, err := h.deps.JWT.SignAccess(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	refresh, refreshExp, err := h.deps.JWT.SignRefresh(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	if err := h.deps.Refresh.Store(ctx, u.ID, HashToken(refresh), refreshExp); err != nil {
		slog.ErrorContext(ctx, "store refresh token", "user_id", u.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign in failed"})
		return
	}

	slog.InfoContext(ctx, "user signed in", "user_id", u.ID, "cart_switched", merge.SwitchTo != "")
	c.JSON(status, gin.H{
		"user":          sanitizeUser(u),
		"access_token":  access,
		"access_exp":    accessExp,
		"refresh_token": refresh,
		"refresh_exp":   refreshExp,
	})
}

// Rotate refresh token
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	ctx := c.Request.Context()

	// name and role come from the user row, not the old token
	u, err := h.deps.Users.ByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "load user for refresh", "user_id", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	p := Principal{UserID: u.ID, Name: u.Name, Role: u.Role}
	access, accessExp, err := h.deps.JWT.SignAccess(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	newRefresh, refreshExp, err := h.deps.JWT.SignRefresh(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}

	err = h.deps.Refresh.Rotate(ctx, claims.UserID, HashToken(req.RefreshToken), HashToken(newRefresh), refreshExp)
	if errors.Is(err, ErrRefreshRevoked) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"access_exp":    accessExp,
		"refresh_token": newRefresh,
		"refresh_exp":   refreshExp,
	})
}

func (h *Handler) SignOut(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err == nil {
		_ = h.deps.Refresh.Revoke(c.Request.Context(), claims.UserID, HashToken(req.RefreshToken))
	}
	// the old cart now belongs to the user; start a fresh anonymous one
	if err := h.deps.Sessions.Reset(c); err != nil {
		slog.ErrorContext(c.Request.Context(), "reset session", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	uid, _ := CurrentUserID(c)

	u, err := h.deps.Users.ByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, sanitizeUser(u))
}

// UpdateProfile renames the user and returns a fresh access token carrying the
// new name.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, _ := CurrentUserID(c)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.deps.Users.UpdateName(c.Request.Context(), uid, strings.TrimSpace(req.Name))
	if errors.Is(err, ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		return
	}

	access, accessExp, err := h.deps.JWT.SignAccess(Principal{UserID: u.ID, Name: u.Name, Role: u.Role})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":         sanitizeUser(u),
		"access_token": access,
		"access_exp":   accessExp,
	})
}

func sanitizeUser(u user.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"role":           u.Role,
		"address":        u.Address,
		"payment_method": u.PaymentMethod,
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}
