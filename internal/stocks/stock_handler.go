package stocks

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	Service *StockService
}

func NewHandler(service *StockService) *StockHandler {
	return &StockHandler{
		Service: service,
	}
}

func (h *StockHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("/api")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/stocks", security.Authorize(roles.User), h.GetStockItems)
		protectedRoutes.POST("/stocks", security.Authorize(roles.User), h.CreateStockItem)
		protectedRoutes.GET("/stocks/:id", security.Authorize(roles.User), h.GetStockItem)
		protectedRoutes.POST("/stocks/:id/assign", security.Authorize(roles.User), h.AssignStockItem)
		protectedRoutes.POST("/stocks/:id/fault", security.Authorize(roles.User), h.MarkFaulty)
		protectedRoutes.POST("/stocks/:id/scrap", security.Authorize(roles.Admin), h.ScrapStockItem)
		protectedRoutes.GET("/stocks/:id/logs", security.Authorize(roles.User), h.GetStockLogs)
	}
}

func (h *StockHandler) GetStockItems(c *gin.Context) {
	filters := StockFilters{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		SourceType: c.Query("source_type"),
	}

	items, err := h.Service.GetStockItems(filters)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *StockHandler) GetStockItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
		return
	}

	item, err := h.Service.GetStockItem(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *StockHandler) CreateStockItem(c *gin.Context) {
	var req CreateStockRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.CreateManual(actor, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *StockHandler) AssignStockItem(c *gin.Context) {
	h.runAction(c, h.Service.Assign)
}

func (h *StockHandler) MarkFaulty(c *gin.Context) {
	h.runAction(c, h.Service.MarkFaulty)
}

func (h *StockHandler) ScrapStockItem(c *gin.Context) {
	h.runAction(c, h.Service.Scrap)
}

func (h *StockHandler) GetStockLogs(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
		return
	}

	logs, err := h.Service.GetStockLogs(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *StockHandler) runAction(c *gin.Context, action func(actor models.Actor, id int, req ActionRequest) (*models.StockItem, error)) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stock item ID"})
		return
	}

	// Gövde isteğe bağlı; boş gövde io.EOF döner ve geçerli sayılır
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := action(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}
