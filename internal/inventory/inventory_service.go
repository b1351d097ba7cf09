package inventory

import (
	"fmt"
	"strings"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/metadata"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"

	"github.com/doug-martin/goqu/v9"
)

// StockPool is the slice of the stock engine the ledger needs: creating or
// reusing a pool entry when an asset or license moves to stock. Implemented
// by the stocks service; kept as an interface to avoid a package cycle and
// to allow mocking.
type StockPool interface {
	PoolFromInventory(tx *goqu.TxDatabase, item *models.InventoryItem, actor models.Actor) (*models.StockItem, error)
	PoolFromLicense(tx *goqu.TxDatabase, license *models.InventoryLicense, item *models.InventoryItem, actor models.Actor, note string) (*models.StockItem, error)
}

type ActivityLogger interface {
	Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error
}

type InventoryService struct {
	tx        repository.TxRunner
	repo      InventoryRepository
	stockPool StockPool
	audit     ActivityLogger
}

func NewService(tx repository.TxRunner, repo InventoryRepository, stockPool StockPool, audit ActivityLogger) *InventoryService {
	return &InventoryService{
		tx:        tx,
		repo:      repo,
		stockPool: stockPool,
		audit:     audit,
	}
}

func (s *InventoryService) CreateItem(actor models.Actor, req ItemRequest) (*models.InventoryItem, error) {
	existing, err := s.repo.FindItemByInventoryNo(req.InventoryNo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, custom_error.NewConflictError("Bu envanter numarası zaten kayıtlı.")
	}

	var itemID int
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		itemID, err = s.repo.PersistItem(tx, req)
		if err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      itemID,
			EventType:   "olusturma",
			PerformedBy: actor.Username,
			Note:        "Envanter kaydı oluşturuldu",
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		logView := &models.InventoryItem{ID: itemID, InventoryNo: req.InventoryNo}
		return s.audit.Log(tx, actor, "create", map[string]interface{}{
			"inventory_no": req.InventoryNo,
			"department":   req.Department,
			"msg":          "Envanter kaydı oluşturuldu",
		}, logView)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(itemID)
}

func (s *InventoryService) UpdateItem(actor models.Actor, id int, req ItemRequest) (*models.InventoryItem, error) {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, err
	}

	// inventory_no değişiyorsa tekilliği yeniden doğrula
	if item.InventoryNo != req.InventoryNo {
		existing, err := s.repo.FindItemByInventoryNo(req.InventoryNo)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, custom_error.NewConflictError("Bu envanter numarası zaten kayıtlı.")
		}
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateItem(tx, id, req); err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      id,
			EventType:   "guncelleme",
			PerformedBy: actor.Username,
			Note:        "Envanter kaydı güncellendi",
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "update", map[string]interface{}{
			"inventory_no": req.InventoryNo,
			"msg":          "Envanter kaydı güncellendi",
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(id)
}

func (s *InventoryService) AssignItem(actor models.Actor, id int, req AssignRequest) (*models.InventoryItem, error) {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if req.FactoryID != nil && *req.FactoryID != item.Factory.ID {
		changes = append(changes, "fabrika")
	}
	if req.Department != nil && *req.Department != item.Department {
		changes = append(changes, "departman")
	}
	if req.ResponsibleID != nil {
		changes = append(changes, "sorumlu")
	}

	note := "Zimmet güncellendi"
	if len(changes) > 0 {
		note = fmt.Sprintf("Zimmet güncellendi (%s)", strings.Join(changes, ", "))
	}
	if req.Note != "" {
		note = note + ": " + req.Note
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateAssignment(tx, id, req); err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      id,
			EventType:   "zimmet",
			PerformedBy: actor.Username,
			Note:        note,
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "assign", map[string]interface{}{
			"inventory_no": item.InventoryNo,
			"changes":      changes,
			"msg":          note,
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(id)
}

func (s *InventoryService) MarkFaulty(actor models.Actor, id int, req FaultRequest) (*models.InventoryItem, error) {
	note := "Arıza bildirildi"
	if req.Reason != "" {
		note = fmt.Sprintf("Arıza: %s", req.Reason)
	}
	if req.Location != "" {
		note = fmt.Sprintf("%s (Konum: %s)", note, req.Location)
	}

	return s.transitionItem(actor, id, metadata.ItemStatusFaulty, "ariza", "fault", note)
}

func (s *InventoryService) ScrapItem(actor models.Actor, id int, note string) (*models.InventoryItem, error) {
	if note == "" {
		note = "Hurdaya ayrıldı"
	}
	return s.transitionItem(actor, id, metadata.ItemStatusScrapped, "hurda", "scrap", note)
}

// MoveToStock transitions the item and creates (or reuses) its pool entry in
// the same transaction; the pool side enforces the double-pooling conflict.
func (s *InventoryService) MoveToStock(actor models.Actor, id int, note string) (*models.InventoryItem, *models.StockItem, error) {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, nil, err
	}

	if note == "" {
		note = "Stok havuzuna alındı"
	}

	var stockItem *models.StockItem
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		stockItem, err = s.stockPool.PoolFromInventory(tx, item, actor)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(tx, id, metadata.ItemStatusPooled.String()); err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      id,
			EventType:   "stok",
			PerformedBy: actor.Username,
			Note:        note,
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "stock", map[string]interface{}{
			"inventory_no":  item.InventoryNo,
			"stock_item_id": stockItem.ID,
			"msg":           note,
		}, item)
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.repo.GetItem(id)
	if err != nil {
		return nil, nil, err
	}

	return updated, stockItem, nil
}

// RestoreFromScrap is superadmin-only and brings a scrapped asset back into
// the pool, so the ledger and the pool cannot disagree after the restore.
func (s *InventoryService) RestoreFromScrap(actor models.Actor, id int) (*models.InventoryItem, error) {
	if !actor.HasPermission(roles.SuperAdmin) {
		return nil, custom_error.NewAuthorizationError("Hurdadan geri alma işlemi için superadmin yetkisi gereklidir.")
	}

	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, err
	}

	if metadata.NormalizeItemStatus(item.Status) != metadata.ItemStatusScrapped {
		return nil, custom_error.NewInvalidStateError("Sadece hurda durumundaki kayıtlar geri alınabilir.")
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if _, err := s.stockPool.PoolFromInventory(tx, item, actor); err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(tx, id, metadata.ItemStatusPooled.String()); err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      id,
			EventType:   "hurdadan-donus",
			PerformedBy: actor.Username,
			Note:        "Hurdadan stok havuzuna geri alındı",
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "restore", map[string]interface{}{
			"inventory_no": item.InventoryNo,
			"msg":          "Hurdadan stok havuzuna geri alındı",
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(id)
}

func (s *InventoryService) transitionItem(actor models.Actor, id int, status metadata.ItemStatus, eventType, action, note string) (*models.InventoryItem, error) {
	item, err := s.repo.GetItem(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateStatus(tx, id, status.String()); err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      id,
			EventType:   eventType,
			PerformedBy: actor.Username,
			Note:        note,
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, action, map[string]interface{}{
			"inventory_no": item.InventoryNo,
			"status":       status.String(),
			"msg":          note,
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetItem(id)
}

func (s *InventoryService) AddLicense(actor models.Actor, itemID int, req CreateLicenseRequest) (*models.InventoryLicense, error) {
	item, err := s.repo.GetItem(itemID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, custom_error.NewValidationError("Lisans adı zorunludur.")
	}

	var licenseID int
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		licenseID, err = s.repo.PersistLicense(tx, itemID, name)
		if err != nil {
			return err
		}

		event := models.InventoryEvent{
			ItemID:      itemID,
			EventType:   "lisans",
			PerformedBy: actor.Username,
			Note:        "Lisans eklendi: " + name,
		}
		if err := s.repo.InsertEvent(tx, event); err != nil {
			return err
		}

		license := &models.InventoryLicense{ID: licenseID, Name: name}
		return s.audit.Log(tx, actor, "license-add", map[string]interface{}{
			"inventory_no": item.InventoryNo,
			"license":      name,
			"msg":          "Lisans eklendi",
		}, license)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetLicense(licenseID)
}

// MoveLicenseToStock detaches the license from its item and pools it as a
// lisans-category stock entry in one transaction.
func (s *InventoryService) MoveLicenseToStock(actor models.Actor, licenseID int, note string) (*models.InventoryLicense, *models.StockItem, error) {
	license, err := s.repo.GetLicense(licenseID)
	if err != nil {
		return nil, nil, err
	}

	var item *models.InventoryItem
	if license.ItemID != nil {
		item, err = s.repo.GetItem(*license.ItemID)
		if err != nil {
			return nil, nil, err
		}
	}

	var stockItem *models.StockItem
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.DetachLicense(tx, licenseID, metadata.LicenseStatusPassive.String()); err != nil {
			return err
		}

		stockItem, err = s.stockPool.PoolFromLicense(tx, license, item, actor, note)
		if err != nil {
			return err
		}

		if item != nil {
			event := models.InventoryEvent{
				ItemID:      item.ID,
				EventType:   "lisans",
				PerformedBy: actor.Username,
				Note:        "Lisans stok havuzuna taşındı: " + license.Name,
			}
			if err := s.repo.InsertEvent(tx, event); err != nil {
				return err
			}
		}

		return s.audit.Log(tx, actor, "stock", map[string]interface{}{
			"license":       license.Name,
			"stock_item_id": stockItem.ID,
			"msg":           "Lisans stok havuzuna taşındı",
		}, license)
	})
	if err != nil {
		return nil, nil, err
	}

	detached, err := s.repo.GetLicense(licenseID)
	if err != nil {
		return nil, nil, err
	}

	return detached, stockItem, nil
}

func (s *InventoryService) GetItem(id int) (*models.InventoryItem, error) {
	return s.repo.GetItem(id)
}

func (s *InventoryService) GetItems(filters ItemFilters) ([]models.InventoryItem, error) {
	return s.repo.GetItems(filters)
}

func (s *InventoryService) GetEvents(itemID int) ([]models.InventoryEvent, error) {
	if _, err := s.repo.GetItem(itemID); err != nil {
		return nil, err
	}
	return s.repo.GetEvents(itemID)
}

func (s *InventoryService) GetLicenses(itemID int) ([]models.InventoryLicense, error) {
	if _, err := s.repo.GetItem(itemID); err != nil {
		return nil, err
	}
	return s.repo.GetLicenses(itemID)
}
