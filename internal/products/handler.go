package products

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/util"
)

type Handler struct {
	repo        *Repo
	pageSize    int
	latestLimit int
}

func NewHandler(repo *Repo, pageSize, latestLimit int) *Handler {
	return &Handler{repo: repo, pageSize: pageSize, latestLimit: latestLimit}
}

// Public: newest products for the home page
func (h *Handler) Latest(c *gin.Context) {
	items, err := h.repo.Latest(c.Request.Context(), h.latestLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Featured(c *gin.Context) {
	items, err := h.repo.Featured(c.Request.Context(), h.latestLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Public: list products (optional category, q, page)
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	page, _ = util.Page(page, h.pageSize)

	items, total, err := h.repo.List(c.Request.Context(), ListFilter{
		Category: c.Query("category"),
		Query:    strings.TrimSpace(c.Query("q")),
		Page:     page,
		Limit:    h.pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"page":        page,
		"total_pages": util.TotalPages(total, h.pageSize),
	})
}

func (h *Handler) GetBySlug(c *gin.Context) {
	p, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type CreateProductReq struct {
	Name        string   `json:"name" binding:"required,min=3"`
	Category    string   `json:"category" binding:"required,min=3"`
	Brand       string   `json:"brand" binding:"required,min=3"`
	Description string   `json:"description"`
	Images      []string `json:"images" binding:"required,min=1"`
	Stock       int      `json:"stock" binding:"min=0"`
	Price       string   `json:"price" binding:"required"`
	IsFeatured  bool     `json:"is_featured"`
	Banner      *string  `json:"banner"`
}

// Admin: create product
func (h *Handler) AdminCreate(c *gin.Context) {
	var req CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative number"})
		return
	}

	p, err := h.repo.Create(c.Request.Context(), CreateProductInput{
		Name:        req.Name,
		Category:    req.Category,
		Brand:       req.Brand,
		Description: req.Description,
		Images:      req.Images,
		Stock:       req.Stock,
		Price:       price.StringFixed(2),
		IsFeatured:  req.IsFeatured,
		Banner:      req.Banner,
	})
	if errors.Is(err, ErrSlugTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, p)
}
