package stocks

import (
	"testing"

	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) RunInTransaction(fn func(tx *goqu.TxDatabase) error) error {
	m.Called(fn)
	return fn(nil)
}

type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) GetStockItem(id int) (*models.StockItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

func (m *MockStockRepository) GetStockItems(filters StockFilters) ([]models.StockItem, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockItem), args.Error(1)
}

func (m *MockStockRepository) FindByInventory(tx *goqu.TxDatabase, inventoryID int) (*models.StockItem, error) {
	args := m.Called(tx, inventoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

func (m *MockStockRepository) PersistStockItem(tx *goqu.TxDatabase, item models.StockItem) (int, error) {
	args := m.Called(tx, item)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepository) ResetStockItem(tx *goqu.TxDatabase, id, quantity int, meta map[string]string) error {
	args := m.Called(tx, id, quantity, meta)
	return args.Error(0)
}

func (m *MockStockRepository) UpdateStockStatus(tx *goqu.TxDatabase, id int, status string, meta map[string]string) error {
	args := m.Called(tx, id, status, meta)
	return args.Error(0)
}

func (m *MockStockRepository) InsertStockLog(tx *goqu.TxDatabase, entry models.StockLog) error {
	args := m.Called(tx, entry)
	return args.Error(0)
}

func (m *MockStockRepository) GetStockLogs(stockItemID int) ([]models.StockLog, error) {
	args := m.Called(stockItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StockLog), args.Error(1)
}

type MockInventoryMirror struct {
	mock.Mock
}

func (m *MockInventoryMirror) UpdateStatus(tx *goqu.TxDatabase, id int, status string) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

func (m *MockInventoryMirror) InsertEvent(tx *goqu.TxDatabase, event models.InventoryEvent) error {
	args := m.Called(tx, event)
	return args.Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockActivityLogger struct {
	mock.Mock
}

func (m *MockActivityLogger) Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error {
	args := m.Called(tx, actor, action, data, item)
	return args.Error(0)
}

func (m *MockActivityLogger) LogArea(tx *goqu.TxDatabase, actor models.Actor, area, action string, resourceID int, data interface{}) error {
	args := m.Called(tx, actor, area, action, resourceID, data)
	return args.Error(0)
}

func newTestService() (*StockService, *MockTxRunner, *MockStockRepository, *MockInventoryMirror, *MockUserDirectory, *MockActivityLogger) {
	tx := new(MockTxRunner)
	repo := new(MockStockRepository)
	mirror := new(MockInventoryMirror)
	users := new(MockUserDirectory)
	audit := new(MockActivityLogger)
	return NewService(tx, repo, mirror, users, audit), tx, repo, mirror, users, audit
}

func testActor() models.Actor {
	return models.Actor{ID: 1, Username: "ayse.yilmaz", Role: roles.User}
}

func TestCreateManualRequiresLicenseKey(t *testing.T) {
	service, _, _, _, _, _ := newTestService()

	_, err := service.CreateManual(testActor(), CreateStockRequest{
		Title:    "Office 2021",
		Category: "lisans",
		Metadata: map[string]string{"lisans_adi": "Office 2021"},
	})

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "Lisans Anahtarı")
}

func TestCreateManualRejectsNegativeQuantity(t *testing.T) {
	service, _, _, _, _, _ := newTestService()

	_, err := service.CreateManual(testActor(), CreateStockRequest{
		Title:    "Klavye",
		Category: "manuel",
		Quantity: -2,
		Metadata: map[string]string{"aciklama": "Yedek klavye"},
	})

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateManualDefaultsQuantityToOne(t *testing.T) {
	service, tx, repo, _, _, audit := newTestService()

	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("PersistStockItem", mock.Anything, mock.MatchedBy(func(item models.StockItem) bool {
		return item.Quantity == 1 && item.SourceType == "manual" && item.Status == "stokta"
	})).Return(41, nil)
	repo.On("InsertStockLog", mock.Anything, mock.MatchedBy(func(entry models.StockLog) bool {
		return entry.ActionType == models.StockActionIn && entry.QuantityChange == 1
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "create", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetStockItem", 41).Return(&models.StockItem{ID: 41, Status: "stokta"}, nil)

	item, err := service.CreateManual(testActor(), CreateStockRequest{
		Title:    "Klavye",
		Category: "manuel",
		Metadata: map[string]string{"aciklama": "Yedek klavye"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 41, item.ID)
	repo.AssertExpectations(t)
}

func TestPoolFromInventoryRejectsDoublePooling(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	inventoryID := 3
	pooled := &models.StockItem{ID: 30, InventoryID: &inventoryID, Status: "stokta"}
	repo.On("FindByInventory", mock.Anything, 3).Return(pooled, nil)

	item := &models.InventoryItem{ID: 3, InventoryNo: "BIL-0003"}
	_, err := service.PoolFromInventory(nil, item, testActor())

	assert.Error(t, err)
	var conflictErr *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "PersistStockItem", mock.Anything, mock.Anything)
}

func TestPoolFromInventoryReusesExistingRow(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	inventoryID := 4
	stale := &models.StockItem{ID: 44, InventoryID: &inventoryID, Status: "hurda", Quantity: 1}
	repo.On("FindByInventory", mock.Anything, 4).Return(stale, nil)
	repo.On("ResetStockItem", mock.Anything, 44, 1, mock.Anything).Return(nil)
	repo.On("InsertStockLog", mock.Anything, mock.MatchedBy(func(entry models.StockLog) bool {
		return entry.StockItemID == 44 && entry.ActionType == models.StockActionIn
	})).Return(nil)

	item := &models.InventoryItem{ID: 4, InventoryNo: "BIL-0004", Department: "IT"}
	result, err := service.PoolFromInventory(nil, item, testActor())

	assert.NoError(t, err)
	assert.Equal(t, 44, result.ID)
	assert.Equal(t, "stokta", result.Status)
	assert.Equal(t, 1, result.Quantity)
	repo.AssertNotCalled(t, "PersistStockItem", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestPoolFromInventoryCreatesSnapshotRow(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	repo.On("FindByInventory", mock.Anything, 5).Return(nil, nil)
	repo.On("PersistStockItem", mock.Anything, mock.MatchedBy(func(item models.StockItem) bool {
		return item.SourceType == "inventory" &&
			item.Category == "envanter" &&
			item.Quantity == 1 &&
			item.Metadata["envanter_no"] == "BIL-0005" &&
			item.Metadata["departman"] == "Muhasebe"
	})).Return(50, nil)
	repo.On("InsertStockLog", mock.Anything, mock.Anything).Return(nil)

	item := &models.InventoryItem{
		ID:          5,
		InventoryNo: "BIL-0005",
		Department:  "Muhasebe",
		Brand:       models.NamedOption{ID: 1, Name: "Dell"},
		Model:       models.NamedOption{ID: 2, Name: "Latitude 5440"},
	}
	result, err := service.PoolFromInventory(nil, item, testActor())

	assert.NoError(t, err)
	assert.Equal(t, 50, result.ID)
	repo.AssertExpectations(t)
}

func TestPoolFromInventorySurfacesUniqueIndexConflict(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	// eşzamanlı ikinci çağrı: okuma boş döner, insert tekil indekse takılır
	repo.On("FindByInventory", mock.Anything, 7).Return(nil, nil)
	repo.On("PersistStockItem", mock.Anything, mock.Anything).
		Return(0, custom_error.NewConflictError("Bu envanter kaydı zaten stok havuzunda."))

	item := &models.InventoryItem{ID: 7, InventoryNo: "BIL-0007"}
	_, err := service.PoolFromInventory(nil, item, testActor())

	assert.Error(t, err)
	var conflictErr *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "InsertStockLog", mock.Anything, mock.Anything)
}

func TestAssignMirrorsInventoryStatus(t *testing.T) {
	service, tx, repo, mirror, users, audit := newTestService()

	inventoryID := 6
	item := &models.StockItem{
		ID:          60,
		Title:       "Dell Latitude 5440",
		SourceType:  "inventory",
		InventoryID: &inventoryID,
		Category:    "envanter",
		Quantity:    1,
		Status:      "stokta",
		Metadata: map[string]string{
			"envanter_no": "BIL-0006",
		},
	}
	assigned := &models.StockItem{ID: 60, Status: "devredildi"}

	repo.On("GetStockItem", 60).Return(item, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("UpdateStockStatus", mock.Anything, 60, "devredildi", mock.Anything).Return(nil)
	mirror.On("UpdateStatus", mock.Anything, 6, "aktif").Return(nil)
	mirror.On("InsertEvent", mock.Anything, mock.MatchedBy(func(e models.InventoryEvent) bool {
		return e.ItemID == 6
	})).Return(nil)
	repo.On("InsertStockLog", mock.Anything, mock.MatchedBy(func(entry models.StockLog) bool {
		return entry.ActionType == models.StockActionOut && entry.QuantityChange == -1
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "assign", mock.Anything, mock.Anything).Return(nil)
	users.On("GetUserByUsername", "mehmet.kaya").Return(&models.User{ID: 9, Username: "mehmet.kaya", FirstName: "Mehmet", LastName: "Kaya"}, nil)
	audit.On("LogArea", mock.Anything, mock.Anything, "kullanici", "assign", 9, mock.Anything).Return(nil)
	repo.On("GetStockItem", 60).Return(assigned, nil).Once()

	result, err := service.Assign(testActor(), 60, ActionRequest{
		Metadata: map[string]string{
			"sorumlu":   "mehmet.kaya",
			"departman": "Muhasebe",
			"fabrika":   "Merkez",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "devredildi", result.Status)
	mirror.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAssignRequiresAssignmentMetadata(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	item := &models.StockItem{
		ID:       61,
		Category: "manuel",
		Quantity: 1,
		Status:   "stokta",
		Metadata: map[string]string{"aciklama": "Yedek klavye"},
	}
	repo.On("GetStockItem", 61).Return(item, nil)

	_, err := service.Assign(testActor(), 61, ActionRequest{})

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "Sorumlu")
	repo.AssertNotCalled(t, "UpdateStockStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignRejectsNonPooledItem(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	item := &models.StockItem{ID: 62, Category: "manuel", Status: "devredildi"}
	repo.On("GetStockItem", 62).Return(item, nil)

	_, err := service.Assign(testActor(), 62, ActionRequest{})

	assert.Error(t, err)
	var stateErr *custom_error.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestScrapMirrorsInventoryAndLogsOut(t *testing.T) {
	service, tx, repo, mirror, _, audit := newTestService()

	inventoryID := 7
	item := &models.StockItem{
		ID:          70,
		SourceType:  "inventory",
		InventoryID: &inventoryID,
		Category:    "envanter",
		Quantity:    2,
		Status:      "stokta",
	}
	scrapped := &models.StockItem{ID: 70, Status: "hurda"}

	repo.On("GetStockItem", 70).Return(item, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("UpdateStockStatus", mock.Anything, 70, "hurda", mock.Anything).Return(nil)
	mirror.On("UpdateStatus", mock.Anything, 7, "hurda").Return(nil)
	mirror.On("InsertEvent", mock.Anything, mock.Anything).Return(nil)
	repo.On("InsertStockLog", mock.Anything, mock.MatchedBy(func(entry models.StockLog) bool {
		return entry.ActionType == models.StockActionOut && entry.QuantityChange == -2
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "scrap", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetStockItem", 70).Return(scrapped, nil).Once()

	result, err := service.Scrap(testActor(), 70, ActionRequest{Note: "Ekran kırık"})

	assert.NoError(t, err)
	assert.Equal(t, "hurda", result.Status)
	mirror.AssertExpectations(t)
}

func TestMarkFaultySkipsMirrorForManualItems(t *testing.T) {
	service, tx, repo, mirror, _, audit := newTestService()

	item := &models.StockItem{ID: 71, SourceType: "manual", Category: "manuel", Quantity: 1, Status: "stokta"}
	faulty := &models.StockItem{ID: 71, Status: "arizali"}

	repo.On("GetStockItem", 71).Return(item, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("UpdateStockStatus", mock.Anything, 71, "arizali", mock.Anything).Return(nil)
	repo.On("InsertStockLog", mock.Anything, mock.MatchedBy(func(entry models.StockLog) bool {
		return entry.ActionType == models.StockActionWarning && entry.QuantityChange == 0
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "fault", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetStockItem", 71).Return(faulty, nil).Once()

	result, err := service.MarkFaulty(testActor(), 71, ActionRequest{Note: "Tuş takımı arızalı"})

	assert.NoError(t, err)
	assert.Equal(t, "arizali", result.Status)
	mirror.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}
