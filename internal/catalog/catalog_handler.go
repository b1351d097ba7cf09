package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"
	"github.com/fixadd/stok/pkg/security"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// CatalogStore is the repository surface the handler drives. Mutations run
// inside the caller's transaction alongside their audit entry.
type CatalogStore interface {
	FindExistingByName(table, name string) (*models.NamedOption, error)
	PersistOption(tx *goqu.TxDatabase, table, name string) (*models.NamedOption, error)
	GetOptions(table string) ([]models.NamedOption, error)
	RemoveOption(tx *goqu.TxDatabase, table string, id int) error
	GetOptionName(table string, id int) (string, error)
	GetBrands(includeModels bool) ([]models.Brand, error)
	FindBrandModelByName(brandID int, name string) (*models.NamedOption, error)
	PersistBrandModel(tx *goqu.TxDatabase, brandID int, name string) (*models.NamedOption, error)
	RemoveBrandModel(tx *goqu.TxDatabase, modelID int) error
	GetLdapProfiles() ([]models.LdapProfile, error)
}

type ActivityLogger interface {
	Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error
}

type CatalogHandler struct {
	tx    repository.TxRunner
	r     CatalogStore
	audit ActivityLogger
}

func NewCatalogHandler(tx repository.TxRunner, r CatalogStore, audit ActivityLogger) *CatalogHandler {
	return &CatalogHandler{tx: tx, r: r, audit: audit}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.GET("/api/options/:option_key", h.GetOptions)
		protectedRoutes.POST("/api/options/:option_key", security.Authorize(roles.Admin), h.CreateOption)
		protectedRoutes.DELETE("/api/options/:option_key/:id", security.Authorize(roles.Admin), h.DeleteOption)
		protectedRoutes.POST("/api/options/brands/:id/models", security.Authorize(roles.Admin), h.CreateBrandModel)
		protectedRoutes.DELETE("/api/options/models/:id", security.Authorize(roles.Admin), h.DeleteBrandModel)
		protectedRoutes.GET("/api/ldap-profiles", security.Authorize(roles.Admin), h.GetLdapProfiles)
	}
}

func parseOptionName(req models.CreateOptionRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", custom_error.NewValidationError("İsim alanı zorunludur")
	}
	return name, nil
}

func (h *CatalogHandler) GetOptions(c *gin.Context) {
	optionKey := c.Param("option_key")

	if optionKey == "brands" {
		brands, err := h.r.GetBrands(true)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list brands", "details": err.Error()})
			return
		}
		c.JSON(http.StatusOK, brands)
		return
	}

	table, ok := TableForOptionKey(optionKey)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Kayıt bulunamadı."})
		return
	}

	options, err := h.r.GetOptions(table)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list options", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, options)
}

func (h *CatalogHandler) CreateOption(c *gin.Context) {
	optionKey := c.Param("option_key")

	var req models.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	name, err := parseOptionName(req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if optionKey == "brands" {
		h.createBrand(c, actor, name)
		return
	}

	table, ok := TableForOptionKey(optionKey)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Kayıt bulunamadı."})
		return
	}

	existing, err := h.r.FindExistingByName(table, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to check option", "details": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bu kayıt zaten mevcut."})
		return
	}

	var option *models.NamedOption
	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		option, err = h.r.PersistOption(tx, table, name)
		if err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "create", map[string]interface{}{
			"name":  option.Name,
			"tablo": table,
			"msg":   "Katalog kaydı oluşturuldu",
		}, option)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create option", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, option)
}

func (h *CatalogHandler) createBrand(c *gin.Context, actor models.Actor, name string) {
	existing, err := h.r.FindExistingByName("brands", name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to check brand", "details": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bu marka zaten mevcut."})
		return
	}

	var option *models.NamedOption
	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		option, err = h.r.PersistOption(tx, "brands", name)
		if err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "create", map[string]interface{}{
			"name":  option.Name,
			"tablo": "brands",
			"msg":   "Marka oluşturuldu",
		}, option)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create brand", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.Brand{ID: option.ID, Name: option.Name, Models: []models.NamedOption{}})
}

func (h *CatalogHandler) DeleteOption(c *gin.Context) {
	optionKey := c.Param("option_key")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option ID", "details": err.Error()})
		return
	}

	table := "brands"
	if optionKey != "brands" {
		var ok bool
		table, ok = TableForOptionKey(optionKey)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Kayıt bulunamadı."})
			return
		}
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := h.r.RemoveOption(tx, table, id); err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "delete", map[string]interface{}{
			"tablo": table,
			"msg":   "Katalog kaydı silindi",
		}, &models.NamedOption{ID: id})
	})
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateBrandModel(c *gin.Context) {
	brandID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid brand ID", "details": err.Error()})
		return
	}

	brandName, err := h.r.GetOptionName("brands", brandID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marka bulunamadı."})
		return
	}

	var req models.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	name, err := parseOptionName(req)
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.r.FindBrandModelByName(brandID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to check model", "details": err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Bu model zaten mevcut."})
		return
	}

	var model *models.NamedOption
	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		model, err = h.r.PersistBrandModel(tx, brandID, name)
		if err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "create", map[string]interface{}{
			"name":  model.Name,
			"marka": brandName,
			"msg":   "Model eklendi",
		}, model)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create model", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, model)
}

func (h *CatalogHandler) DeleteBrandModel(c *gin.Context) {
	modelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid model ID", "details": err.Error()})
		return
	}

	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	err = h.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := h.r.RemoveBrandModel(tx, modelID); err != nil {
			return err
		}

		return h.audit.Log(tx, actor, "delete", map[string]interface{}{
			"msg": "Model silindi",
		}, &models.NamedOption{ID: modelID})
	})
	if err != nil {
		c.JSON(custom_error.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) GetLdapProfiles(c *gin.Context) {
	profiles, err := h.r.GetLdapProfiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to list LDAP profiles", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profiles)
}
