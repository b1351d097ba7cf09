package users

import (
	"net/http"
	"strconv"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type ActivityLogger interface {
	Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error
}

type UsersHandler struct {
	tx         repository.TxRunner
	Repository UserRepository
	audit      ActivityLogger
}

func NewHandler(tx repository.TxRunner, r UserRepository, audit ActivityLogger) *UsersHandler {
	return &UsersHandler{
		tx:         tx,
		Repository: r,
		audit:      audit,
	}
}

func (h *UsersHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.POST("/users", security.Authorize(roles.Admin), h.RegisterUser)
		protectedRoutes.PATCH("/users/:id", security.Authorize(roles.User), h.UpdateUser)
		protectedRoutes.GET("/users/:id", security.Authorize(roles.User), h.GetUser)
		protectedRoutes.GET("/users", security.Authorize(roles.Admin), h.GetUserList)
		protectedRoutes.DELETE("/users/:id", security.Authorize(roles.SuperAdmin), h.DeleteUser)
	}
}

func (h *UsersHandler) RegisterUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if req.Role != "" && !roles.Role(req.Role).IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Geçersiz rol."})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	// superadmin rolünü sadece bir superadmin verebilir
	if roles.Role(req.Role) == roles.SuperAdmin && !actor.HasPermission(roles.SuperAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var user *models.User
	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		user, err = h.Repository.PersistUser(tx, req, hashedPassword)
		if err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "create", map[string]interface{}{
			"username": user.Username,
			"role":     user.Role,
			"msg":      "Kullanıcı oluşturuldu",
		}, user)
	})
	if err != nil {
		status := custom_error.StatusCode(err)
		if status == http.StatusConflict {
			c.JSON(status, gin.H{"error": "Bu kullanıcı adı veya e-posta zaten kullanılıyor."})
			return
		}
		c.JSON(status, gin.H{"error": "Failed to create user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	// Kullanıcı kendi kaydını, admin herkesinkini düzenleyebilir
	if actor.ID != userID && !actor.HasPermission(roles.Admin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You are not allowed to access this resource"})
		return
	}

	user, err := h.Repository.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unable to find user", "details": err.Error(), "code": "USER_NOT_FOUND"})
		return
	}

	changes := &models.UserChanges{}

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) > 5 {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
				return
			}
			passwordHash := string(hashedPassword)
			changes.PasswordHash = &passwordHash
			mustChange := false
			changes.MustChangePassword = &mustChange
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parola en az 6 karakter olmalıdır."})
			return
		}
	}

	if req.Role != nil && *req.Role != user.Role {
		if err := h.validateRoleChange(actor, user, *req.Role); err != nil {
			c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
			return
		}
		role := *req.Role
		changes.Role = &role
	}

	if req.Department != nil {
		changes.Department = req.Department
	}

	if req.Theme != nil {
		changes.Theme = req.Theme
	}

	if req.MustChangePassword != nil && actor.HasPermission(roles.Admin) {
		changes.MustChangePassword = req.MustChangePassword
	}

	if !changes.HasChanges() {
		c.JSON(http.StatusOK, user)
		return
	}

	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := h.Repository.UpdateUser(tx, userID, changes); err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "update", map[string]interface{}{
			"username": user.Username,
			"msg":      "Kullanıcı güncellendi",
		}, user)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user", "details": err.Error()})
		return
	}

	updatedUser, err := h.Repository.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get updated user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updatedUser)
}

// validateRoleChange guards the hierarchy: only admins change roles, only
// superadmins touch the superadmin role, and the last superadmin can never
// be demoted.
func (h *UsersHandler) validateRoleChange(actor models.Actor, user *models.User, newRole string) error {
	if !roles.Role(newRole).IsValid() {
		return custom_error.NewValidationError("Geçersiz rol.")
	}
	if !actor.HasPermission(roles.Admin) {
		return custom_error.NewAuthorizationError("Rol değişikliği için yetkiniz yok.")
	}
	if (roles.Role(newRole) == roles.SuperAdmin || user.IsSuperAdmin()) && !actor.HasPermission(roles.SuperAdmin) {
		return custom_error.NewAuthorizationError("Superadmin rolünü sadece bir superadmin yönetebilir.")
	}

	if user.IsSuperAdmin() && roles.Role(newRole) != roles.SuperAdmin {
		count, err := h.Repository.CountSuperAdmins()
		if err != nil {
			return err
		}
		if count <= 1 {
			return custom_error.NewInvalidStateError("Son superadmin kullanıcısının rolü değiştirilemez.")
		}
	}

	return nil
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	user, err := h.Repository.GetUser(userID)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) GetUserList(c *gin.Context) {
	users, err := h.Repository.GetUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list users", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID", "details": err.Error()})
		return
	}

	user, err := h.Repository.GetUser(userID)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	if user.IsSuperAdmin() {
		count, err := h.Repository.CountSuperAdmins()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify superadmin count", "details": err.Error()})
			return
		}
		if count <= 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Son superadmin kullanıcısı silinemez."})
			return
		}
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := h.Repository.RemoveUser(tx, userID); err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "delete", map[string]interface{}{
			"username": user.Username,
			"msg":      "Kullanıcı silindi",
		}, user)
	})
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
