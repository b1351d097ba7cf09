package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fixadd/stok/internal/repository"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// optionTables maps the public option keys onto their lookup tables. Brands
// are handled separately because they own hardware models.
var optionTables = map[string]string{
	"usage-areas":     "usage_areas",
	"license-names":   "license_names",
	"info-categories": "info_categories",
	"factories":       "factories",
	"hardware-types":  "hardware_types",
}

type CatalogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CatalogRepository {
	return &CatalogRepository{repository: r}
}

func TableForOptionKey(optionKey string) (string, bool) {
	table, ok := optionTables[optionKey]
	return table, ok
}

func (r *CatalogRepository) FindExistingByName(table, name string) (*models.NamedOption, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return nil, nil
	}

	var option models.NamedOption
	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From(table).
		Where(goqu.L("LOWER(name)").Eq(strings.ToLower(normalized)))

	found, err := query.Executor().ScanStruct(&option)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s by name: %w", table, err)
	}
	if !found {
		return nil, nil
	}

	return &option, nil
}

func (r *CatalogRepository) PersistOption(tx *goqu.TxDatabase, table, name string) (*models.NamedOption, error) {
	option := models.NamedOption{Name: strings.TrimSpace(name)}

	query := tx.Insert(table).
		Rows(goqu.Record{"name": option.Name}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&option.ID); err != nil {
		return nil, fmt.Errorf("failed to insert %s record: %w", table, err)
	}

	return &option, nil
}

func (r *CatalogRepository) GetOptions(table string) ([]models.NamedOption, error) {
	var options []models.NamedOption
	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From(table).
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&options); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return options, nil
}

func (r *CatalogRepository) RemoveOption(tx *goqu.TxDatabase, table string, id int) error {
	result, err := tx.Delete(table).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Kayıt bulunamadı.")
	}

	return nil
}

func (r *CatalogRepository) GetOptionName(table string, id int) (string, error) {
	var name string
	query := r.repository.GoquDBWrapper.
		Select("name").
		From(table).
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanVal(&name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to resolve %s name: %w", table, err)
	}
	if !found {
		return "", custom_error.NewNotFoundError("Kayıt bulunamadı.")
	}

	return name, nil
}

func (r *CatalogRepository) GetBrands(includeModels bool) ([]models.Brand, error) {
	var brands []models.Brand
	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From("brands").
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&brands); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	if !includeModels {
		return brands, nil
	}

	for i := range brands {
		brandModels, err := r.GetBrandModels(brands[i].ID)
		if err != nil {
			return nil, err
		}
		brands[i].Models = brandModels
	}

	return brands, nil
}

func (r *CatalogRepository) GetBrandModels(brandID int) ([]models.NamedOption, error) {
	var brandModels []models.NamedOption
	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From("hardware_models").
		Where(goqu.Ex{"brand_id": brandID}).
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&brandModels); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return brandModels, nil
}

func (r *CatalogRepository) FindBrandModelByName(brandID int, name string) (*models.NamedOption, error) {
	var model models.NamedOption
	query := r.repository.GoquDBWrapper.
		Select("id", "name").
		From("hardware_models").
		Where(goqu.Ex{"brand_id": brandID}).
		Where(goqu.L("LOWER(name)").Eq(strings.ToLower(strings.TrimSpace(name))))

	found, err := query.Executor().ScanStruct(&model)
	if err != nil {
		return nil, fmt.Errorf("failed to look up hardware model: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &model, nil
}

func (r *CatalogRepository) PersistBrandModel(tx *goqu.TxDatabase, brandID int, name string) (*models.NamedOption, error) {
	model := models.NamedOption{Name: strings.TrimSpace(name)}

	query := tx.Insert("hardware_models").
		Rows(goqu.Record{
			"brand_id": brandID,
			"name":     model.Name,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&model.ID); err != nil {
		return nil, fmt.Errorf("failed to insert hardware model record: %w", err)
	}

	return &model, nil
}

func (r *CatalogRepository) RemoveBrandModel(tx *goqu.TxDatabase, modelID int) error {
	result, err := tx.Delete("hardware_models").
		Where(goqu.Ex{"id": modelID}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("failed to delete hardware model: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Model bulunamadı.")
	}

	return nil
}

func (r *CatalogRepository) GetLdapProfiles() ([]models.LdapProfile, error) {
	var profiles []models.LdapProfile
	query := r.repository.GoquDBWrapper.
		Select("id", "name", "host", "port", "base_dn", "bind_dn").
		From("ldap_profiles").
		Order(goqu.I("name").Asc())

	if err := query.Executor().ScanStructs(&profiles); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return profiles, nil
}
