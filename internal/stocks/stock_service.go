package stocks

import (
	"fmt"
	"strings"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/metadata"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// InventoryMirror is the slice of the asset ledger the pool engine writes to
// when a transition must be reflected on the linked inventory item. The pool
// and the ledger must never disagree about whether an asset is out or in, so
// both writes happen inside one transaction.
type InventoryMirror interface {
	UpdateStatus(tx *goqu.TxDatabase, id int, status string) error
	InsertEvent(tx *goqu.TxDatabase, event models.InventoryEvent) error
}

// UserDirectory resolves a responsible name from assignment metadata to a
// user account for the personal-assignment audit row.
type UserDirectory interface {
	GetUserByUsername(username string) (*models.User, error)
}

type ActivityLogger interface {
	Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error
	LogArea(tx *goqu.TxDatabase, actor models.Actor, area, action string, resourceID int, data interface{}) error
}

type StockService struct {
	tx     repository.TxRunner
	repo   StockRepository
	mirror InventoryMirror
	users  UserDirectory
	audit  ActivityLogger
}

func NewService(tx repository.TxRunner, repo StockRepository, mirror InventoryMirror, users UserDirectory, audit ActivityLogger) *StockService {
	return &StockService{
		tx:     tx,
		repo:   repo,
		mirror: mirror,
		users:  users,
		audit:  audit,
	}
}

// CreateManual is the manual producer path: direct API input, loose metadata
// validation, quantity at least 1.
func (s *StockService) CreateManual(actor models.Actor, req CreateStockRequest) (*models.StockItem, error) {
	category, err := metadata.NewCategory(req.Category)
	if err != nil {
		return nil, custom_error.NewValidationError("Geçersiz kategori: %s", req.Category)
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, custom_error.NewValidationError("Adet en az 1 olmalıdır.")
	}

	meta, err := metadata.PrepareStockMetadata(category, req.Metadata, nil, false)
	if err != nil {
		return nil, err
	}

	item := models.StockItem{
		Title:      strings.TrimSpace(req.Title),
		Reference:  strings.TrimSpace(req.Reference),
		SourceType: metadata.SourceManual.String(),
		Category:   category.String(),
		Quantity:   quantity,
		Status:     metadata.StockStatusPooled.String(),
		Metadata:   meta,
	}
	if item.Title == "" {
		return nil, custom_error.NewValidationError("Başlık alanı zorunludur.")
	}

	var itemID int
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		itemID, err = s.repo.PersistStockItem(tx, item)
		if err != nil {
			return err
		}

		entry := models.StockLog{
			StockItemID:    itemID,
			Action:         "giris",
			ActionType:     models.StockActionIn,
			QuantityChange: quantity,
			Actor:          actor.Username,
			Note:           "Manuel stok girişi",
			Data:           logData(meta),
		}
		if err := s.repo.InsertStockLog(tx, entry); err != nil {
			return err
		}

		logView := &models.StockItem{ID: itemID}
		return s.audit.Log(tx, actor, "create", map[string]interface{}{
			"title":    item.Title,
			"category": item.Category,
			"quantity": quantity,
			"msg":      "Manuel stok kaydı oluşturuldu",
		}, logView)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetStockItem(itemID)
}

// PoolFromInventory creates or reuses the pool row for an inventory asset
// moving to stock. Runs inside the caller's transaction; the caller owns the
// audit entry for the whole operation.
func (s *StockService) PoolFromInventory(tx *goqu.TxDatabase, item *models.InventoryItem, actor models.Actor) (*models.StockItem, error) {
	existing, err := s.repo.FindByInventory(tx, item.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.AllowOperations() {
		return nil, custom_error.NewConflictError("Bu envanter kaydı zaten stok havuzunda.")
	}

	meta := inventorySnapshot(item)

	if existing != nil {
		// eski havuz satırını yeniden kullan, kopya satır açma
		if err := s.repo.ResetStockItem(tx, existing.ID, 1, meta); err != nil {
			return nil, err
		}

		existing.Status = metadata.StockStatusPooled.String()
		existing.Quantity = 1
		existing.Metadata = meta

		entry := models.StockLog{
			StockItemID:    existing.ID,
			Action:         "giris",
			ActionType:     models.StockActionIn,
			QuantityChange: 1,
			Actor:          actor.Username,
			Note:           "Envanterden stok havuzuna alındı",
			Data:           logData(meta),
		}
		if err := s.repo.InsertStockLog(tx, entry); err != nil {
			return nil, err
		}

		return existing, nil
	}

	inventoryID := item.ID
	stockItem := models.StockItem{
		Title:       itemTitle(item),
		Reference:   item.InventoryNo,
		SourceType:  metadata.SourceInventory.String(),
		InventoryID: &inventoryID,
		Category:    metadata.CategoryInventory.String(),
		Quantity:    1,
		Status:      metadata.StockStatusPooled.String(),
		Metadata:    meta,
	}

	id, err := s.repo.PersistStockItem(tx, stockItem)
	if err != nil {
		return nil, err
	}
	stockItem.ID = id

	entry := models.StockLog{
		StockItemID:    id,
		Action:         "giris",
		ActionType:     models.StockActionIn,
		QuantityChange: 1,
		Actor:          actor.Username,
		Note:           "Envanterden stok havuzuna alındı",
		Data:           logData(meta),
	}
	if err := s.repo.InsertStockLog(tx, entry); err != nil {
		return nil, err
	}

	return &stockItem, nil
}

// PoolFromLicense pools a detached license as a lisans-category item. Runs
// inside the caller's transaction.
func (s *StockService) PoolFromLicense(tx *goqu.TxDatabase, license *models.InventoryLicense, item *models.InventoryItem, actor models.Actor, note string) (*models.StockItem, error) {
	meta := map[string]string{
		"lisans_adi": license.ProductName(),
	}
	if key := license.LicenseKey(); key != "" {
		meta["lisans_anahtari"] = key
	}
	if item != nil {
		meta["envanter_no"] = item.InventoryNo
	}

	reference := license.LicenseKey()
	if reference == "" {
		reference = license.Name
	}

	licenseID := license.ID
	stockItem := models.StockItem{
		Title:      license.Name,
		Reference:  reference,
		SourceType: metadata.SourceLicense.String(),
		LicenseID:  &licenseID,
		Category:   metadata.CategoryLicense.String(),
		Quantity:   1,
		Status:     metadata.StockStatusPooled.String(),
		Metadata:   meta,
	}

	id, err := s.repo.PersistStockItem(tx, stockItem)
	if err != nil {
		return nil, err
	}
	stockItem.ID = id

	if note == "" {
		note = "Lisans stok havuzuna alındı"
	}
	entry := models.StockLog{
		StockItemID:    id,
		Action:         "giris",
		ActionType:     models.StockActionIn,
		QuantityChange: 1,
		Actor:          actor.Username,
		Note:           note,
		Data:           logData(meta),
	}
	if err := s.repo.InsertStockLog(tx, entry); err != nil {
		return nil, err
	}

	return &stockItem, nil
}

// PoolFromRequestLine pools a fulfilled purchase request line: one stock item
// per fulfilling event, quantity = fulfilled amount. The reference prefers an
// inventory number or license key from the supplied metadata over the order
// number. Runs inside the caller's transaction.
func (s *StockService) PoolFromRequestLine(tx *goqu.TxDatabase, order *models.RequestOrder, line models.RequestLine, quantity int, raw map[string]string, actor models.Actor) (*models.StockItem, error) {
	category := metadata.NormalizeCategory(line.Category)

	// siparişten gelen kayıtlar havuza eksik veriyle girer; zorunlu alanlar
	// zimmet anında doğrulanır
	meta := map[string]string{
		"siparis_no":   order.OrderNo,
		"donanim_tipi": line.HardwareType,
		"marka":        line.Brand,
		"model":        line.Model,
	}
	for key, value := range raw {
		meta[key] = strings.TrimSpace(value)
	}
	for key, value := range meta {
		if strings.TrimSpace(value) == "" {
			delete(meta, key)
		}
	}

	reference := meta["envanter_no"]
	if reference == "" {
		reference = meta["lisans_anahtari"]
	}
	if reference == "" {
		reference = order.OrderNo
	}

	orderID := order.ID
	stockItem := models.StockItem{
		Title:      lineTitle(line),
		Reference:  reference,
		SourceType: metadata.SourceRequest.String(),
		OrderID:    &orderID,
		Category:   category.String(),
		Quantity:   quantity,
		Status:     metadata.StockStatusPooled.String(),
		Metadata:   meta,
	}

	id, err := s.repo.PersistStockItem(tx, stockItem)
	if err != nil {
		return nil, err
	}
	stockItem.ID = id

	entry := models.StockLog{
		StockItemID:    id,
		Action:         "giris",
		ActionType:     models.StockActionIn,
		QuantityChange: quantity,
		Actor:          actor.Username,
		Note:           fmt.Sprintf("Sipariş karşılandı: %s", order.OrderNo),
		Data:           logData(meta),
	}
	if err := s.repo.InsertStockLog(tx, entry); err != nil {
		return nil, err
	}

	return &stockItem, nil
}

// Assign moves a pool item to devredildi. Assignment-only fields are
// validated strictly here, merged over the stored metadata as defaults; an
// inventory-linked item forces the ledger side to aktif in the same
// transaction.
func (s *StockService) Assign(actor models.Actor, id int, req ActionRequest) (*models.StockItem, error) {
	item, err := s.eligibleItem(id)
	if err != nil {
		return nil, err
	}

	meta, err := metadata.PrepareStockMetadata(metadata.NormalizeCategory(item.Category), req.Metadata, item.Metadata, true)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateStockStatus(tx, id, metadata.StockStatusAssigned.String(), meta); err != nil {
			return err
		}

		if err := s.mirrorStatus(tx, item, metadata.ItemStatusActive.String(), actor, "Stok havuzundan zimmetlendi"); err != nil {
			return err
		}

		entry := models.StockLog{
			StockItemID:    id,
			Action:         "devir",
			ActionType:     models.StockActionOut,
			QuantityChange: -item.Quantity,
			Actor:          actor.Username,
			Note:           req.Note,
			Data:           logData(meta),
		}
		if err := s.repo.InsertStockLog(tx, entry); err != nil {
			return err
		}

		if err := s.audit.Log(tx, actor, "assign", map[string]interface{}{
			"title":    item.Title,
			"sorumlu":  meta["sorumlu"],
			"quantity": item.Quantity,
			"msg":      "Stok kaydı zimmetlendi",
		}, item); err != nil {
			return err
		}

		return s.logPersonalAssignment(tx, actor, item, meta)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetStockItem(id)
}

func (s *StockService) MarkFaulty(actor models.Actor, id int, req ActionRequest) (*models.StockItem, error) {
	item, err := s.eligibleItem(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateStockStatus(tx, id, metadata.StockStatusFaulty.String(), nil); err != nil {
			return err
		}

		if err := s.mirrorStatus(tx, item, metadata.ItemStatusFaulty.String(), actor, "Stok havuzunda arıza bildirildi"); err != nil {
			return err
		}

		entry := models.StockLog{
			StockItemID: id,
			Action:      "ariza",
			ActionType:  models.StockActionWarning,
			Actor:       actor.Username,
			Note:        req.Note,
		}
		if err := s.repo.InsertStockLog(tx, entry); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "fault", map[string]interface{}{
			"title": item.Title,
			"note":  req.Note,
			"msg":   "Stok kaydı arızalı olarak işaretlendi",
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetStockItem(id)
}

func (s *StockService) Scrap(actor models.Actor, id int, req ActionRequest) (*models.StockItem, error) {
	item, err := s.eligibleItem(id)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateStockStatus(tx, id, metadata.StockStatusScrapped.String(), nil); err != nil {
			return err
		}

		if err := s.mirrorStatus(tx, item, metadata.ItemStatusScrapped.String(), actor, "Stok havuzundan hurdaya ayrıldı"); err != nil {
			return err
		}

		entry := models.StockLog{
			StockItemID:    id,
			Action:         "hurda",
			ActionType:     models.StockActionOut,
			QuantityChange: -item.Quantity,
			Actor:          actor.Username,
			Note:           req.Note,
		}
		if err := s.repo.InsertStockLog(tx, entry); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "scrap", map[string]interface{}{
			"title": item.Title,
			"note":  req.Note,
			"msg":   "Stok kaydı hurdaya ayrıldı",
		}, item)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetStockItem(id)
}

func (s *StockService) GetStockItem(id int) (*models.StockItem, error) {
	return s.repo.GetStockItem(id)
}

func (s *StockService) GetStockItems(filters StockFilters) ([]models.StockItem, error) {
	return s.repo.GetStockItems(filters)
}

func (s *StockService) GetStockLogs(id int) ([]models.StockLog, error) {
	if _, err := s.repo.GetStockItem(id); err != nil {
		return nil, err
	}
	return s.repo.GetStockLogs(id)
}

func (s *StockService) eligibleItem(id int) (*models.StockItem, error) {
	item, err := s.repo.GetStockItem(id)
	if err != nil {
		return nil, err
	}
	if !item.AllowOperations() {
		return nil, custom_error.NewInvalidStateError("Bu stok kaydı üzerinde işlem yapılamaz.")
	}
	return item, nil
}

// mirrorStatus forces the linked inventory item's status for pool items that
// originate from the ledger; a no-op for every other provenance.
func (s *StockService) mirrorStatus(tx *goqu.TxDatabase, item *models.StockItem, status string, actor models.Actor, note string) error {
	if item.SourceType != metadata.SourceInventory.String() || item.InventoryID == nil {
		return nil
	}

	if err := s.mirror.UpdateStatus(tx, *item.InventoryID, status); err != nil {
		return err
	}

	event := models.InventoryEvent{
		ItemID:      *item.InventoryID,
		EventType:   "stok",
		PerformedBy: actor.Username,
		Note:        note,
	}
	return s.mirror.InsertEvent(tx, event)
}

// logPersonalAssignment writes the secondary kullanici-tagged audit row when
// the responsible name resolves to an account. An unresolved name is not an
// error; the primary audit entry already carries it.
func (s *StockService) logPersonalAssignment(tx *goqu.TxDatabase, actor models.Actor, item *models.StockItem, meta map[string]string) error {
	responsible := strings.TrimSpace(meta["sorumlu"])
	if responsible == "" {
		return nil
	}

	user, err := s.users.GetUserByUsername(responsible)
	if err != nil || user == nil {
		return nil
	}

	return s.audit.LogArea(tx, actor, "kullanici", "assign", user.ID, map[string]interface{}{
		"stock_item_id": item.ID,
		"title":         item.Title,
		"quantity":      item.Quantity,
		"msg":           fmt.Sprintf("%s kullanıcısına zimmetlendi", user.FullName()),
	})
}

func inventorySnapshot(item *models.InventoryItem) map[string]string {
	snapshot := map[string]string{
		"envanter_no":    item.InventoryNo,
		"bilgisayar_adi": item.ComputerName,
		"marka":          item.Brand.Name,
		"model":          item.Model.Name,
		"seri_no":        item.SerialNo,
		"ifs_no":         item.IfsNo,
		"ip_adresi":      item.IPAddress,
		"mac_adresi":     item.MacAddress,
		"sorumlu":        item.Responsible,
		"departman":      item.Department,
		"fabrika":        item.Factory.Name,
	}
	for key, value := range snapshot {
		if strings.TrimSpace(value) == "" {
			delete(snapshot, key)
		}
	}
	return snapshot
}

func itemTitle(item *models.InventoryItem) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{item.HardwareType.Name, item.Brand.Name, item.Model.Name} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return item.InventoryNo
	}
	return strings.Join(parts, " ")
}

func lineTitle(line models.RequestLine) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{line.HardwareType, line.Brand, line.Model} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

func logData(meta map[string]string) map[string]interface{} {
	data := make(map[string]interface{}, len(meta))
	for key, value := range meta {
		data[key] = value
	}
	return data
}
