package inventory

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	Service *InventoryService
}

func NewHandler(service *InventoryService) *InventoryHandler {
	return &InventoryHandler{
		Service: service,
	}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("/api")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/inventory", security.Authorize(roles.User), h.GetItems)
		protectedRoutes.POST("/inventory", security.Authorize(roles.User), h.CreateItem)
		protectedRoutes.GET("/inventory/:id", security.Authorize(roles.User), h.GetItem)
		protectedRoutes.PUT("/inventory/:id", security.Authorize(roles.User), h.UpdateItem)
		protectedRoutes.PATCH("/inventory/:id/assign", security.Authorize(roles.User), h.AssignItem)
		protectedRoutes.POST("/inventory/:id/fault", security.Authorize(roles.User), h.MarkFaulty)
		protectedRoutes.POST("/inventory/:id/stock", security.Authorize(roles.User), h.MoveToStock)
		protectedRoutes.POST("/inventory/:id/scrap", security.Authorize(roles.Admin), h.ScrapItem)
		protectedRoutes.POST("/inventory/:id/restore", security.Authorize(roles.SuperAdmin), h.RestoreFromScrap)
		protectedRoutes.GET("/inventory/:id/events", security.Authorize(roles.User), h.GetEvents)
		protectedRoutes.GET("/inventory/:id/licenses", security.Authorize(roles.User), h.GetLicenses)
		protectedRoutes.POST("/inventory/:id/licenses", security.Authorize(roles.User), h.AddLicense)
		protectedRoutes.POST("/licenses/:id/stock", security.Authorize(roles.User), h.MoveLicenseToStock)
	}
}

func (h *InventoryHandler) GetItems(c *gin.Context) {
	filters := ItemFilters{
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}
	if raw := c.Query("factory_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid factory ID"})
			return
		}
		filters.FactoryID = &id
	}
	if raw := c.Query("responsible_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid responsible ID"})
			return
		}
		filters.ResponsibleID = &id
	}

	items, err := h.Service.GetItems(filters)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req ItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.CreateItem(actor, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	item, err := h.Service.GetItem(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req ItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.UpdateItem(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) AssignItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req AssignRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.AssignItem(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) MarkFaulty(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req FaultRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.MarkFaulty(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) MoveToStock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	// Not gövdesi isteğe bağlı; boş gövde io.EOF döner ve geçerli sayılır
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, stockItem, err := h.Service.MoveToStock(actor, id, req.Note)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item, "stock_item": stockItem})
}

func (h *InventoryHandler) ScrapItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.ScrapItem(actor, id, req.Note)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) RestoreFromScrap(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Service.RestoreFromScrap(actor, id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) GetEvents(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	events, err := h.Service.GetEvents(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *InventoryHandler) GetLicenses(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	licenses, err := h.Service.GetLicenses(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, licenses)
}

func (h *InventoryHandler) AddLicense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req CreateLicenseRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	license, err := h.Service.AddLicense(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, license)
}

func (h *InventoryHandler) MoveLicenseToStock(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid license ID"})
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	license, stockItem, err := h.Service.MoveLicenseToStock(actor, id, req.Note)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"license": license, "stock_item": stockItem})
}
