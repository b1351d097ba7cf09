package activitylog

import (
	"net/http"
	"strconv"

	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/gin-gonic/gin"
)

type ActivityLogHandler struct {
	Repository *ActivityLogRepository
}

func NewHandler(r *ActivityLogRepository) *ActivityLogHandler {
	return &ActivityLogHandler{
		Repository: r,
	}
}

func (h *ActivityLogHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("/api")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/logs", security.Authorize(roles.Admin), h.GetRecent)
		protectedRoutes.GET("/logs/:area/:id", security.Authorize(roles.Admin), h.GetResourceLog)
	}
}

func (h *ActivityLogHandler) GetRecent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	logs, err := h.Repository.GetRecent(limit)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *ActivityLogHandler) GetResourceLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID"})
		return
	}

	logs, err := h.Repository.GetResourceLog(id, c.Param("area"))
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}
