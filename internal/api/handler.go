package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pos-service/internal/i18n"
	"pos-service/internal/models"
	"pos-service/internal/service"
	"pos-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	posService *service.POSService
}

// NewHandler creates a new HTTP handler
func NewHandler(posService *service.POSService) *Handler {
	return &Handler{
		posService: posService,
	}
}

type addToCartRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

type addProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    int64  `json:"price"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Icon     string `json:"icon"`
}

// restockRequest carries the raw admin input; it is parsed leniently
type restockRequest struct {
	Amount interface{} `json:"amount"`
}

type viewRequest struct {
	View string `json:"view" binding:"required"`
}

type localeRequest struct {
	Locale string `json:"locale" binding:"required"`
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.addProduct)
		v1.POST("/products/:id/restock", h.restock)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addToCart)
		v1.DELETE("/cart/items/:id", h.removeFromCart)

		v1.POST("/checkout", h.checkout)

		v1.GET("/sales", h.listSales)
		v1.GET("/sales/:id/receipt", h.getReceipt)
		v1.DELETE("/sales", h.clearHistory)

		v1.GET("/reports/summary", h.summary)

		v1.GET("/view", h.getView)
		v1.PUT("/view", h.setView)
		v1.GET("/locale", h.getLocale)
		v1.PUT("/locale", h.setLocale)
		v1.GET("/labels", h.labels)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"products": h.posService.Products(),
	})
}

func (h *Handler) addProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.posService.AddProduct(c.Request.Context(), models.Product{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		Icon:     req.Icon,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid product",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// restock never rejects a bad amount; the product is returned unchanged
func (h *Handler) restock(c *gin.Context) {
	productID, ok := parseID(c, "Invalid product ID")
	if !ok {
		return
	}

	var req restockRequest
	_ = c.ShouldBindJSON(&req)
	amount := parseAmount(req.Amount)

	product, applied, err := h.posService.Restock(c.Request.Context(), productID, amount)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"applied": applied,
	})
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.posService.Cart())
}

func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	cart, added, err := h.posService.AddToCart(c.Request.Context(), req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":  cart,
		"added": added,
	})
}

func (h *Handler) removeFromCart(c *gin.Context) {
	productID, ok := parseID(c, "Invalid product ID")
	if !ok {
		return
	}

	cart, removed := h.posService.RemoveFromCart(c.Request.Context(), productID)
	c.JSON(http.StatusOK, gin.H{
		"cart":    cart,
		"removed": removed,
	})
}

func (h *Handler) checkout(c *gin.Context) {
	result, err := h.posService.Checkout(c.Request.Context(), c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *Handler) listSales(c *gin.Context) {
	sales := h.posService.Sales()
	c.JSON(http.StatusOK, gin.H{
		"sales": sales,
		"count": len(sales),
	})
}

func (h *Handler) getReceipt(c *gin.Context) {
	text, err := h.posService.Receipt(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "text/plain") {
		c.String(http.StatusOK, text)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sale_id": c.Param("id"),
		"receipt": text,
	})
}

// clearHistory requires an explicit confirmation flag
func (h *Handler) clearHistory(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if !confirmed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Clearing history requires confirm=true",
		})
		return
	}

	removed := h.posService.ClearHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"removed": removed,
	})
}

func (h *Handler) summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.posService.Summary())
}

func (h *Handler) getView(c *gin.Context) {
	view := h.posService.View()
	c.JSON(http.StatusOK, gin.H{
		"view":  view,
		"title": i18n.ViewLabel(h.posService.Locale(), view),
	})
}

func (h *Handler) setView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	view, err := models.ParseView(req.View)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.posService.SetView(view)
	c.JSON(http.StatusOK, gin.H{
		"view":  view,
		"title": i18n.ViewLabel(h.posService.Locale(), view),
	})
}

func (h *Handler) getLocale(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"locale":    h.posService.Locale(),
		"supported": i18n.Locales,
	})
}

func (h *Handler) setLocale(c *gin.Context) {
	var req localeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	loc, err := i18n.ParseLocale(req.Locale)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.posService.SetLocale(c.Request.Context(), loc)
	c.JSON(http.StatusOK, gin.H{
		"locale": loc,
	})
}

// labels serves a translation table. An explicit ?locale= wins, then the
// locale selected on the terminal; Accept-Language is only consulted when
// nothing was selected.
func (h *Handler) labels(c *gin.Context) {
	loc, selected := h.posService.SelectedLocale()
	if code := c.Query("locale"); code != "" {
		parsed, err := i18n.ParseLocale(code)
		if err != nil {
			h.writeError(c, err)
			return
		}
		loc = parsed
	} else if accept := c.GetHeader("Accept-Language"); accept != "" && !selected {
		loc = i18n.Negotiate(accept)
	}

	c.JSON(http.StatusOK, gin.H{
		"locale": loc,
		"labels": i18n.Labels(loc),
	})
}

// writeError maps domain errors to status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrSaleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, models.ErrInvalidView),
		errors.Is(err, i18n.ErrUnsupportedLocale):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientStock):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func parseID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": message,
		})
		return 0, false
	}
	return id, true
}

// parseAmount accepts a JSON number or a numeric string; anything else,
// including values past service.MaxStock, is 0
func parseAmount(v interface{}) int {
	switch a := v.(type) {
	case float64:
		if a < 0 || a > service.MaxStock {
			return 0
		}
		return int(a)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil || n < 0 || n > service.MaxStock {
			return 0
		}
		return int(n)
	}
	return 0
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
