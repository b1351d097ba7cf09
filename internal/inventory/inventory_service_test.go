package inventory

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

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetItem(id int) (*models.InventoryItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) GetItems(filters ItemFilters) ([]models.InventoryItem, error) {
	args := m.Called(filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) FindItemByInventoryNo(inventoryNo string) (*models.InventoryItem, error) {
	args := m.Called(inventoryNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) PersistItem(tx *goqu.TxDatabase, req ItemRequest) (int, error) {
	args := m.Called(tx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) UpdateItem(tx *goqu.TxDatabase, id int, req ItemRequest) error {
	args := m.Called(tx, id, req)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateAssignment(tx *goqu.TxDatabase, id int, req AssignRequest) error {
	args := m.Called(tx, id, req)
	return args.Error(0)
}

func (m *MockInventoryRepository) UpdateStatus(tx *goqu.TxDatabase, id int, status string) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

func (m *MockInventoryRepository) InsertEvent(tx *goqu.TxDatabase, event models.InventoryEvent) error {
	args := m.Called(tx, event)
	return args.Error(0)
}

func (m *MockInventoryRepository) GetEvents(itemID int) ([]models.InventoryEvent, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryEvent), args.Error(1)
}

func (m *MockInventoryRepository) GetLicense(id int) (*models.InventoryLicense, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryLicense), args.Error(1)
}

func (m *MockInventoryRepository) GetLicenses(itemID int) ([]models.InventoryLicense, error) {
	args := m.Called(itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InventoryLicense), args.Error(1)
}

func (m *MockInventoryRepository) PersistLicense(tx *goqu.TxDatabase, itemID int, name string) (int, error) {
	args := m.Called(tx, itemID, name)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) DetachLicense(tx *goqu.TxDatabase, id int, status string) error {
	args := m.Called(tx, id, status)
	return args.Error(0)
}

type MockStockPool struct {
	mock.Mock
}

func (m *MockStockPool) PoolFromInventory(tx *goqu.TxDatabase, item *models.InventoryItem, actor models.Actor) (*models.StockItem, error) {
	args := m.Called(tx, item, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

func (m *MockStockPool) PoolFromLicense(tx *goqu.TxDatabase, license *models.InventoryLicense, item *models.InventoryItem, actor models.Actor, note string) (*models.StockItem, error) {
	args := m.Called(tx, license, item, actor, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

type MockActivityLogger struct {
	mock.Mock
}

func (m *MockActivityLogger) Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error {
	args := m.Called(tx, actor, action, data, item)
	return args.Error(0)
}

func newTestService() (*InventoryService, *MockTxRunner, *MockInventoryRepository, *MockStockPool, *MockActivityLogger) {
	tx := new(MockTxRunner)
	repo := new(MockInventoryRepository)
	pool := new(MockStockPool)
	audit := new(MockActivityLogger)
	return NewService(tx, repo, pool, audit), tx, repo, pool, audit
}

func testActor(role roles.Role) models.Actor {
	return models.Actor{ID: 1, Username: "ayse.yilmaz", Role: role}
}

func TestCreateItemRejectsDuplicateInventoryNo(t *testing.T) {
	service, _, repo, _, _ := newTestService()

	existing := &models.InventoryItem{ID: 7, InventoryNo: "BIL-0001"}
	repo.On("FindItemByInventoryNo", "BIL-0001").Return(existing, nil)

	_, err := service.CreateItem(testActor(roles.User), ItemRequest{InventoryNo: "BIL-0001"})

	assert.Error(t, err)
	var conflictErr *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "PersistItem", mock.Anything, mock.Anything)
}

func TestCreateItemPersistsEventAndAuditLog(t *testing.T) {
	service, tx, repo, _, audit := newTestService()

	req := ItemRequest{InventoryNo: "BIL-0002", Department: "Muhasebe"}
	created := &models.InventoryItem{ID: 12, InventoryNo: "BIL-0002"}

	repo.On("FindItemByInventoryNo", "BIL-0002").Return(nil, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("PersistItem", mock.Anything, req).Return(12, nil)
	repo.On("InsertEvent", mock.Anything, mock.MatchedBy(func(e models.InventoryEvent) bool {
		return e.ItemID == 12 && e.EventType == "olusturma"
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "create", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItem", 12).Return(created, nil)

	item, err := service.CreateItem(testActor(roles.User), req)

	assert.NoError(t, err)
	assert.Equal(t, 12, item.ID)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestMoveToStockPoolsItemAndUpdatesStatus(t *testing.T) {
	service, tx, repo, pool, audit := newTestService()

	item := &models.InventoryItem{ID: 3, InventoryNo: "BIL-0003", Status: "aktif"}
	pooled := &models.StockItem{ID: 31, Status: "stokta"}

	repo.On("GetItem", 3).Return(item, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	pool.On("PoolFromInventory", mock.Anything, item, mock.Anything).Return(pooled, nil)
	repo.On("UpdateStatus", mock.Anything, 3, "stokta").Return(nil)
	repo.On("InsertEvent", mock.Anything, mock.MatchedBy(func(e models.InventoryEvent) bool {
		return e.ItemID == 3 && e.EventType == "stok"
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "stock", mock.Anything, mock.Anything).Return(nil)

	updated, stockItem, err := service.MoveToStock(testActor(roles.User), 3, "")

	assert.NoError(t, err)
	assert.Equal(t, 31, stockItem.ID)
	assert.NotNil(t, updated)
	repo.AssertExpectations(t)
	pool.AssertExpectations(t)
}

func TestMoveToStockPropagatesPoolConflict(t *testing.T) {
	service, tx, repo, pool, _ := newTestService()

	item := &models.InventoryItem{ID: 4, InventoryNo: "BIL-0004", Status: "aktif"}

	repo.On("GetItem", 4).Return(item, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	pool.On("PoolFromInventory", mock.Anything, item, mock.Anything).
		Return(nil, custom_error.NewConflictError("Bu kayıt zaten stok havuzunda."))

	_, _, err := service.MoveToStock(testActor(roles.User), 4, "")

	assert.Error(t, err)
	var conflictErr *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestoreFromScrapRequiresSuperAdmin(t *testing.T) {
	service, _, repo, _, _ := newTestService()

	_, err := service.RestoreFromScrap(testActor(roles.Admin), 5)

	assert.Error(t, err)
	var authErr *custom_error.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
	repo.AssertNotCalled(t, "GetItem", mock.Anything)
}

func TestRestoreFromScrapRejectsNonScrappedItem(t *testing.T) {
	service, _, repo, _, _ := newTestService()

	item := &models.InventoryItem{ID: 6, InventoryNo: "BIL-0006", Status: "aktif"}
	repo.On("GetItem", 6).Return(item, nil)

	_, err := service.RestoreFromScrap(testActor(roles.SuperAdmin), 6)

	assert.Error(t, err)
	var stateErr *custom_error.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestRestoreFromScrapReturnsItemToPool(t *testing.T) {
	service, tx, repo, pool, audit := newTestService()

	item := &models.InventoryItem{ID: 8, InventoryNo: "BIL-0008", Status: "hurda"}
	restored := &models.InventoryItem{ID: 8, InventoryNo: "BIL-0008", Status: "stokta"}
	pooled := &models.StockItem{ID: 80, Status: "stokta"}

	repo.On("GetItem", 8).Return(item, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	pool.On("PoolFromInventory", mock.Anything, item, mock.Anything).Return(pooled, nil)
	repo.On("UpdateStatus", mock.Anything, 8, "stokta").Return(nil)
	repo.On("InsertEvent", mock.Anything, mock.MatchedBy(func(e models.InventoryEvent) bool {
		return e.EventType == "hurdadan-donus"
	})).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "restore", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetItem", 8).Return(restored, nil).Once()

	result, err := service.RestoreFromScrap(testActor(roles.SuperAdmin), 8)

	assert.NoError(t, err)
	assert.Equal(t, "stokta", result.Status)
	pool.AssertExpectations(t)
}

func TestMoveLicenseToStockDetachesAndPools(t *testing.T) {
	service, tx, repo, pool, audit := newTestService()

	itemID := 9
	license := &models.InventoryLicense{ID: 21, ItemID: &itemID, Name: "Office 2021 - ABC123", Status: "aktif"}
	detached := &models.InventoryLicense{ID: 21, Name: "Office 2021 - ABC123", Status: "pasif"}
	item := &models.InventoryItem{ID: 9, InventoryNo: "BIL-0009"}
	pooled := &models.StockItem{ID: 90, Category: "lisans", Status: "stokta"}

	repo.On("GetLicense", 21).Return(license, nil).Once()
	repo.On("GetItem", 9).Return(item, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("DetachLicense", mock.Anything, 21, "pasif").Return(nil)
	pool.On("PoolFromLicense", mock.Anything, license, item, mock.Anything, "").Return(pooled, nil)
	repo.On("InsertEvent", mock.Anything, mock.Anything).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "stock", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetLicense", 21).Return(detached, nil).Once()

	resultLicense, stockItem, err := service.MoveLicenseToStock(testActor(roles.User), 21, "")

	assert.NoError(t, err)
	assert.Equal(t, "pasif", resultLicense.Status)
	assert.Equal(t, 90, stockItem.ID)
	repo.AssertExpectations(t)
}
