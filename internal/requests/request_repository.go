package requests

import (
	"fmt"

	"github.com/fixadd/stok/internal/repository"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

type RequestRepository interface {
	GetGroups() ([]models.RequestGroup, error)
	GetOrder(id int) (*models.RequestOrder, error)
	GetOrders(groupKey string) ([]models.RequestOrder, error)
	FindOrderByOrderNo(orderNo string) (*models.RequestOrder, error)
	PersistOrder(tx *goqu.TxDatabase, orderNo, requestedBy, department, groupKey string) (int, error)
	PersistLine(tx *goqu.TxDatabase, line models.RequestLine) (int, error)
	UpdateLineQuantity(tx *goqu.TxDatabase, lineID, quantity int) error
	RemoveLine(tx *goqu.TxDatabase, lineID int) error
	UpdateOrderGroup(tx *goqu.TxDatabase, orderID int, groupKey string) error
}

type requestRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) RequestRepository {
	return &requestRepositoryImpl{repository: r}
}

func (r *requestRepositoryImpl) GetGroups() ([]models.RequestGroup, error) {
	var groups []models.RequestGroup
	err := r.repository.GoquDBWrapper.
		From("request_groups").
		Select("id", "key", "label", "description", "empty_message").
		Order(goqu.I("id").Asc()).
		Executor().
		ScanStructs(&groups)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	return groups, nil
}

func (r *requestRepositoryImpl) orderQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From("request_orders").
		Select("id", "order_no", "requested_by", "department", "group_key", "opened_at")
}

func (r *requestRepositoryImpl) GetOrder(id int) (*models.RequestOrder, error) {
	var flat models.FlatOrderRecord
	found, err := r.orderQuery().
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Sipariş bulunamadı.")
	}

	return r.hydrateOrder(flat)
}

func (r *requestRepositoryImpl) GetOrders(groupKey string) ([]models.RequestOrder, error) {
	query := r.orderQuery()
	if groupKey != "" {
		query = query.Where(goqu.Ex{"group_key": groupKey})
	}
	query = query.Order(goqu.I("opened_at").Desc())

	var flats []models.FlatOrderRecord
	if err := query.Executor().ScanStructs(&flats); err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	orders := make([]models.RequestOrder, 0, len(flats))
	for _, flat := range flats {
		order, err := r.hydrateOrder(flat)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (r *requestRepositoryImpl) FindOrderByOrderNo(orderNo string) (*models.RequestOrder, error) {
	var flat models.FlatOrderRecord
	found, err := r.orderQuery().
		Where(goqu.Ex{"order_no": orderNo}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, nil
	}

	return r.hydrateOrder(flat)
}

func (r *requestRepositoryImpl) hydrateOrder(flat models.FlatOrderRecord) (*models.RequestOrder, error) {
	var lines []models.RequestLine
	err := r.repository.GoquDBWrapper.
		From("request_lines").
		Select("id", "order_id", "hardware_type", "brand", "model", "category", "quantity", "note").
		Where(goqu.Ex{"order_id": flat.ID}).
		Order(goqu.I("id").Asc()).
		Executor().
		ScanStructs(&lines)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	order := &models.RequestOrder{
		ID:          flat.ID,
		OrderNo:     flat.OrderNo,
		RequestedBy: flat.RequestedBy,
		Department:  flat.Department,
		GroupKey:    flat.GroupKey,
		OpenedAt:    flat.OpenedAt,
		Lines:       lines,
	}
	order.Summarize()
	return order, nil
}

func (r *requestRepositoryImpl) PersistOrder(tx *goqu.TxDatabase, orderNo, requestedBy, department, groupKey string) (int, error) {
	var id int
	found, err := tx.Insert("request_orders").
		Rows(goqu.Record{
			"order_no":     orderNo,
			"requested_by": requestedBy,
			"department":   department,
			"group_key":    groupKey,
		}).
		Returning("id").
		Executor().
		ScanVal(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, custom_error.NewConflictError("Bu sipariş numarası zaten kayıtlı.")
		}
		return 0, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("no ID returned after order insert")
	}
	return id, nil
}

func (r *requestRepositoryImpl) PersistLine(tx *goqu.TxDatabase, line models.RequestLine) (int, error) {
	var id int
	found, err := tx.Insert("request_lines").
		Rows(goqu.Record{
			"order_id":      line.OrderID,
			"hardware_type": line.HardwareType,
			"brand":         line.Brand,
			"model":         line.Model,
			"category":      line.Category,
			"quantity":      line.Quantity,
			"note":          line.Note,
		}).
		Returning("id").
		Executor().
		ScanVal(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("no ID returned after line insert")
	}
	return id, nil
}

func (r *requestRepositoryImpl) UpdateLineQuantity(tx *goqu.TxDatabase, lineID, quantity int) error {
	result, err := tx.Update("request_lines").
		Set(goqu.Record{"quantity": quantity}).
		Where(goqu.Ex{"id": lineID}).
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
		return custom_error.NewNotFoundError("Sipariş kalemi bulunamadı.")
	}
	return nil
}

func (r *requestRepositoryImpl) RemoveLine(tx *goqu.TxDatabase, lineID int) error {
	result, err := tx.Delete("request_lines").
		Where(goqu.Ex{"id": lineID}).
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
		return custom_error.NewNotFoundError("Sipariş kalemi bulunamadı.")
	}
	return nil
}

func (r *requestRepositoryImpl) UpdateOrderGroup(tx *goqu.TxDatabase, orderID int, groupKey string) error {
	result, err := tx.Update("request_orders").
		Set(goqu.Record{"group_key": groupKey}).
		Where(goqu.Ex{"id": orderID}).
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
		return custom_error.NewNotFoundError("Sipariş bulunamadı.")
	}
	return nil
}
