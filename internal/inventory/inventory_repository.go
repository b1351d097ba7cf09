package inventory

import (
	"fmt"

	"github.com/fixadd/stok/internal/repository"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type InventoryRepository interface {
	GetItem(id int) (*models.InventoryItem, error)
	GetItems(filters ItemFilters) ([]models.InventoryItem, error)
	FindItemByInventoryNo(inventoryNo string) (*models.InventoryItem, error)
	PersistItem(tx *goqu.TxDatabase, req ItemRequest) (int, error)
	UpdateItem(tx *goqu.TxDatabase, id int, req ItemRequest) error
	UpdateAssignment(tx *goqu.TxDatabase, id int, req AssignRequest) error
	UpdateStatus(tx *goqu.TxDatabase, id int, status string) error
	InsertEvent(tx *goqu.TxDatabase, event models.InventoryEvent) error
	GetEvents(itemID int) ([]models.InventoryEvent, error)
	GetLicense(id int) (*models.InventoryLicense, error)
	GetLicenses(itemID int) ([]models.InventoryLicense, error)
	PersistLicense(tx *goqu.TxDatabase, itemID int, name string) (int, error)
	DetachLicense(tx *goqu.TxDatabase, id int, status string) error
}

type inventoryRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) InventoryRepository {
	return &inventoryRepositoryImpl{repository: r}
}

func (r *inventoryRepositoryImpl) itemQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T("inventory_items").As("i")).
		Select(
			goqu.I("i.id").As("id"),
			goqu.I("i.inventory_no").As("inventory_no"),
			goqu.I("i.computer_name").As("computer_name"),
			goqu.I("i.factory_id").As("factory_id"),
			goqu.I("f.name").As("factory_name"),
			goqu.I("i.department").As("department"),
			goqu.I("i.hardware_type_id").As("hardware_type_id"),
			goqu.I("ht.name").As("hardware_type_name"),
			goqu.I("i.brand_id").As("brand_id"),
			goqu.I("b.name").As("brand_name"),
			goqu.I("i.model_id").As("model_id"),
			goqu.I("m.name").As("model_name"),
			goqu.I("i.responsible_user_id").As("responsible_user_id"),
			goqu.I("u.first_name").As("responsible_first_name"),
			goqu.I("u.last_name").As("responsible_last_name"),
			goqu.I("i.serial_no").As("serial_no"),
			goqu.I("i.ifs_no").As("ifs_no"),
			goqu.I("i.machine_no").As("machine_no"),
			goqu.I("i.related_machine_no").As("related_machine_no"),
			goqu.I("i.ip_address").As("ip_address"),
			goqu.I("i.mac_address").As("mac_address"),
			goqu.I("i.note").As("note"),
			goqu.I("i.status").As("status"),
			goqu.I("i.created_at").As("created_at"),
			goqu.I("i.updated_at").As("updated_at"),
		).
		LeftJoin(goqu.T("factories").As("f"), goqu.On(goqu.Ex{"f.id": goqu.I("i.factory_id")})).
		LeftJoin(goqu.T("hardware_types").As("ht"), goqu.On(goqu.Ex{"ht.id": goqu.I("i.hardware_type_id")})).
		LeftJoin(goqu.T("brands").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("i.brand_id")})).
		LeftJoin(goqu.T("hardware_models").As("m"), goqu.On(goqu.Ex{"m.id": goqu.I("i.model_id")})).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("i.responsible_user_id")}))
}

func (r *inventoryRepositoryImpl) GetItem(id int) (*models.InventoryItem, error) {
	var flat models.FlatInventoryRecord
	found, err := r.itemQuery().
		Where(goqu.Ex{"i.id": id}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Envanter kaydı bulunamadı.")
	}

	item := flat.TransformToInventoryItem()
	return &item, nil
}

func (r *inventoryRepositoryImpl) GetItems(filters ItemFilters) ([]models.InventoryItem, error) {
	query := r.itemQuery()
	if filters.Status != "" {
		query = query.Where(goqu.Ex{"i.status": filters.Status})
	}
	if filters.Department != "" {
		query = query.Where(goqu.Ex{"i.department": filters.Department})
	}
	if filters.FactoryID != nil {
		query = query.Where(goqu.Ex{"i.factory_id": *filters.FactoryID})
	}
	if filters.ResponsibleID != nil {
		query = query.Where(goqu.Ex{"i.responsible_user_id": *filters.ResponsibleID})
	}
	query = query.Order(goqu.I("i.id").Desc())

	var flats []models.FlatInventoryRecord
	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(flats))
	for _, flat := range flats {
		items = append(items, flat.TransformToInventoryItem())
	}
	return items, nil
}

func (r *inventoryRepositoryImpl) FindItemByInventoryNo(inventoryNo string) (*models.InventoryItem, error) {
	var flat models.FlatInventoryRecord
	found, err := r.itemQuery().
		Where(goqu.Ex{"i.inventory_no": inventoryNo}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, nil
	}

	item := flat.TransformToInventoryItem()
	return &item, nil
}

func itemRecord(req ItemRequest) goqu.Record {
	return goqu.Record{
		"inventory_no":        req.InventoryNo,
		"computer_name":       req.ComputerName,
		"factory_id":          req.FactoryID,
		"department":          req.Department,
		"hardware_type_id":    req.HardwareTypeID,
		"brand_id":            req.BrandID,
		"model_id":            req.ModelID,
		"responsible_user_id": req.ResponsibleID,
		"serial_no":           req.SerialNo,
		"ifs_no":              req.IfsNo,
		"machine_no":          req.MachineNo,
		"related_machine_no":  req.RelatedMachineNo,
		"ip_address":          req.IPAddress,
		"mac_address":         req.MacAddress,
		"note":                req.Note,
	}
}

func (r *inventoryRepositoryImpl) PersistItem(tx *goqu.TxDatabase, req ItemRequest) (int, error) {
	var id int
	query := tx.Insert("inventory_items").
		Rows(itemRecord(req)).
		Returning("id")

	if _, err := query.Executor().ScanVal(&id); err != nil {
		return 0, wrapItemError(err)
	}

	return id, nil
}

func (r *inventoryRepositoryImpl) UpdateItem(tx *goqu.TxDatabase, id int, req ItemRequest) error {
	record := itemRecord(req)
	record["updated_at"] = goqu.L("NOW()")

	if _, err := tx.Update("inventory_items").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return wrapItemError(err)
	}

	return nil
}

// wrapItemError turns pq constraint violations into the caller-facing
// taxonomy: duplicate inventory_no conflicts, broken FK references are
// validation failures (the caller supplied an unknown catalog id).
func wrapItemError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return custom_error.NewConflictError("Bu envanter numarası zaten kayıtlı.")
		case "23503":
			return custom_error.NewValidationError("Geçersiz referans: %s", pqErr.Constraint)
		}
	}
	return fmt.Errorf("failed to persist inventory item: %w", err)
}

func (r *inventoryRepositoryImpl) UpdateAssignment(tx *goqu.TxDatabase, id int, req AssignRequest) error {
	record := goqu.Record{"updated_at": goqu.L("NOW()")}
	if req.FactoryID != nil {
		record["factory_id"] = *req.FactoryID
	}
	if req.Department != nil {
		record["department"] = *req.Department
	}
	if req.ResponsibleID != nil {
		record["responsible_user_id"] = *req.ResponsibleID
	}

	if _, err := tx.Update("inventory_items").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return wrapItemError(err)
	}

	return nil
}

func (r *inventoryRepositoryImpl) UpdateStatus(tx *goqu.TxDatabase, id int, status string) error {
	if _, err := tx.Update("inventory_items").
		Set(goqu.Record{
			"status":     status,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to update inventory status: %w", err)
	}

	return nil
}

func (r *inventoryRepositoryImpl) InsertEvent(tx *goqu.TxDatabase, event models.InventoryEvent) error {
	if _, err := tx.Insert("inventory_events").
		Rows(goqu.Record{
			"item_id":      event.ItemID,
			"event_type":   event.EventType,
			"performed_by": event.PerformedBy,
			"note":         event.Note,
		}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to insert inventory event: %w", err)
	}

	return nil
}

func (r *inventoryRepositoryImpl) GetEvents(itemID int) ([]models.InventoryEvent, error) {
	var events []models.InventoryEvent
	query := r.repository.GoquDBWrapper.
		Select("id", "item_id", "event_type", "performed_by", "performed_at", "note").
		From("inventory_events").
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("performed_at").Desc())

	if err := query.Executor().ScanStructs(&events); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return events, nil
}

func (r *inventoryRepositoryImpl) GetLicense(id int) (*models.InventoryLicense, error) {
	var license models.InventoryLicense
	query := r.repository.GoquDBWrapper.
		Select("id", "item_id", "name", "status").
		From("inventory_licenses").
		Where(goqu.Ex{"id": id})

	found, err := query.Executor().ScanStruct(&license)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Lisans kaydı bulunamadı.")
	}

	return &license, nil
}

func (r *inventoryRepositoryImpl) GetLicenses(itemID int) ([]models.InventoryLicense, error) {
	var licenses []models.InventoryLicense
	query := r.repository.GoquDBWrapper.
		Select("id", "item_id", "name", "status").
		From("inventory_licenses").
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("id").Asc())

	if err := query.Executor().ScanStructs(&licenses); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return licenses, nil
}

func (r *inventoryRepositoryImpl) PersistLicense(tx *goqu.TxDatabase, itemID int, name string) (int, error) {
	var id int
	query := tx.Insert("inventory_licenses").
		Rows(goqu.Record{
			"item_id": itemID,
			"name":    name,
		}).
		Returning("id")

	if _, err := query.Executor().ScanVal(&id); err != nil {
		return 0, fmt.Errorf("failed to insert license record: %w", err)
	}

	return id, nil
}

// DetachLicense clears the item reference so the license can live in the
// stock pool on its own.
func (r *inventoryRepositoryImpl) DetachLicense(tx *goqu.TxDatabase, id int, status string) error {
	if _, err := tx.Update("inventory_licenses").
		Set(goqu.Record{
			"item_id": nil,
			"status":  status,
		}).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec(); err != nil {
		return fmt.Errorf("failed to detach license: %w", err)
	}

	return nil
}
