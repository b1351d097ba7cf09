package requests

import (
	"net/http"
	"strconv"

	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	Service *RequestService
}

func NewHandler(service *RequestService) *RequestHandler {
	return &RequestHandler{
		Service: service,
	}
}

func (h *RequestHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("/api")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/requests/groups", security.Authorize(roles.User), h.GetGroups)
		protectedRoutes.GET("/requests", security.Authorize(roles.User), h.GetOrders)
		protectedRoutes.POST("/requests", security.Authorize(roles.User), h.CreateOrder)
		protectedRoutes.GET("/requests/:id", security.Authorize(roles.User), h.GetOrder)
		protectedRoutes.POST("/requests/:id/action", security.Authorize(roles.User), h.RunAction)
	}
}

func (h *RequestHandler) GetGroups(c *gin.Context) {
	groups, err := h.Service.GetGroups()
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *RequestHandler) GetOrders(c *gin.Context) {
	orders, err := h.Service.GetOrders(c.Query("group"))
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *RequestHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Service.CreateOrder(actor, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *RequestHandler) GetOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := h.Service.GetOrder(id)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *RequestHandler) RunAction(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req OrderActionRequest
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Service.Action(actor, id, req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
