package stocks

import (
	"encoding/json"
	"fmt"

	"github.com/fixadd/stok/internal/repository"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type StockRepository interface {
	GetStockItem(id int) (*models.StockItem, error)
	GetStockItems(filters StockFilters) ([]models.StockItem, error)
	FindByInventory(tx *goqu.TxDatabase, inventoryID int) (*models.StockItem, error)
	PersistStockItem(tx *goqu.TxDatabase, item models.StockItem) (int, error)
	ResetStockItem(tx *goqu.TxDatabase, id, quantity int, meta map[string]string) error
	UpdateStockStatus(tx *goqu.TxDatabase, id int, status string, meta map[string]string) error
	InsertStockLog(tx *goqu.TxDatabase, entry models.StockLog) error
	GetStockLogs(stockItemID int) ([]models.StockLog, error)
}

type stockRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) StockRepository {
	return &stockRepositoryImpl{repository: r}
}

var stockColumns = []interface{}{
	"id", "title", "reference", "source_type",
	"inventory_item_id", "license_id", "order_id",
	"category", "quantity", "status", "metadata",
	"created_at", "updated_at",
}

func (r *stockRepositoryImpl) stockQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From("stock_items").
		Select(stockColumns...)
}

func (r *stockRepositoryImpl) GetStockItem(id int) (*models.StockItem, error) {
	var flat models.FlatStockRecord
	found, err := r.stockQuery().
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Stok kaydı bulunamadı.")
	}

	item, err := flat.TransformToStockItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepositoryImpl) GetStockItems(filters StockFilters) ([]models.StockItem, error) {
	query := r.stockQuery()
	if filters.Status != "" {
		query = query.Where(goqu.Ex{"status": filters.Status})
	}
	if filters.Category != "" {
		query = query.Where(goqu.Ex{"category": filters.Category})
	}
	if filters.SourceType != "" {
		query = query.Where(goqu.Ex{"source_type": filters.SourceType})
	}
	query = query.Order(goqu.I("id").Desc())

	var flats []models.FlatStockRecord
	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	items := make([]models.StockItem, 0, len(flats))
	for _, flat := range flats {
		item, err := flat.TransformToStockItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// FindByInventory reads through the caller's transaction so the double-pooling
// check and the subsequent insert see the same snapshot.
func (r *stockRepositoryImpl) FindByInventory(tx *goqu.TxDatabase, inventoryID int) (*models.StockItem, error) {
	var flat models.FlatStockRecord
	found, err := tx.
		From("stock_items").
		Select(stockColumns...).
		Where(goqu.Ex{"inventory_item_id": inventoryID}).
		Order(goqu.I("id").Desc()).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, nil
	}

	item, err := flat.TransformToStockItem()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func marshalMetadata(meta map[string]string) ([]byte, error) {
	if meta == nil {
		meta = map[string]string{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stock metadata: %w", err)
	}
	return raw, nil
}

func (r *stockRepositoryImpl) PersistStockItem(tx *goqu.TxDatabase, item models.StockItem) (int, error) {
	raw, err := marshalMetadata(item.Metadata)
	if err != nil {
		return 0, err
	}

	record := goqu.Record{
		"title":             item.Title,
		"reference":         item.Reference,
		"source_type":       item.SourceType,
		"inventory_item_id": item.InventoryID,
		"license_id":        item.LicenseID,
		"order_id":          item.OrderID,
		"category":          item.Category,
		"quantity":          item.Quantity,
		"status":            item.Status,
		"metadata":          raw,
	}

	var id int
	found, err := tx.Insert("stock_items").
		Rows(record).
		Returning("id").
		Executor().
		ScanVal(&id)
	if err != nil {
		// uq_stock_items_active_inventory: tek aktif havuz satırı
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, custom_error.NewConflictError("Bu envanter kaydı zaten stok havuzunda.")
		}
		return 0, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("no ID returned after stock item insert")
	}

	return id, nil
}

// ResetStockItem reactivates an existing pool row for reuse instead of
// inserting a duplicate.
func (r *stockRepositoryImpl) ResetStockItem(tx *goqu.TxDatabase, id, quantity int, meta map[string]string) error {
	raw, err := marshalMetadata(meta)
	if err != nil {
		return err
	}

	result, err := tx.Update("stock_items").
		Set(goqu.Record{
			"status":     "stokta",
			"quantity":   quantity,
			"metadata":   raw,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return custom_error.NewConflictError("Bu envanter kaydı zaten stok havuzunda.")
		}
		return fmt.Errorf("error executing SQL statement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Stok kaydı bulunamadı.")
	}

	return nil
}

// UpdateStockStatus transitions the row; a nil meta keeps the stored metadata.
func (r *stockRepositoryImpl) UpdateStockStatus(tx *goqu.TxDatabase, id int, status string, meta map[string]string) error {
	record := goqu.Record{
		"status":     status,
		"updated_at": goqu.L("NOW()"),
	}
	if meta != nil {
		raw, err := marshalMetadata(meta)
		if err != nil {
			return err
		}
		record["metadata"] = raw
	}

	result, err := tx.Update("stock_items").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("error executing SQL statement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Stok kaydı bulunamadı.")
	}

	return nil
}

func (r *stockRepositoryImpl) InsertStockLog(tx *goqu.TxDatabase, entry models.StockLog) error {
	data := entry.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal stock log data: %w", err)
	}

	_, err = tx.Insert("stock_logs").
		Rows(goqu.Record{
			"stock_item_id":   entry.StockItemID,
			"action":          entry.Action,
			"action_type":     entry.ActionType,
			"quantity_change": entry.QuantityChange,
			"actor":           entry.Actor,
			"note":            entry.Note,
			"data":            raw,
		}).
		Executor().
		Exec()
	if err != nil {
		return fmt.Errorf("error executing SQL statement: %w", err)
	}

	return nil
}

func (r *stockRepositoryImpl) GetStockLogs(stockItemID int) ([]models.StockLog, error) {
	var logs []models.StockLog
	err := r.repository.GoquDBWrapper.
		From("stock_logs").
		Select(
			"id", "stock_item_id", "action", "action_type",
			"quantity_change", "actor", "note", "data", "created_at",
		).
		Where(goqu.Ex{"stock_item_id": stockItemID}).
		Order(goqu.I("created_at").Desc()).
		Executor().
		ScanStructs(&logs)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	for i := range logs {
		logs[i].LoadFromDB()
	}

	return logs, nil
}
