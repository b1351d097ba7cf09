package requests

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

type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) GetGroups() ([]models.RequestGroup, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RequestGroup), args.Error(1)
}

func (m *MockRequestRepository) GetOrder(id int) (*models.RequestOrder, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RequestOrder), args.Error(1)
}

func (m *MockRequestRepository) GetOrders(groupKey string) ([]models.RequestOrder, error) {
	args := m.Called(groupKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RequestOrder), args.Error(1)
}

func (m *MockRequestRepository) FindOrderByOrderNo(orderNo string) (*models.RequestOrder, error) {
	args := m.Called(orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RequestOrder), args.Error(1)
}

func (m *MockRequestRepository) PersistOrder(tx *goqu.TxDatabase, orderNo, requestedBy, department, groupKey string) (int, error) {
	args := m.Called(tx, orderNo, requestedBy, department, groupKey)
	return args.Int(0), args.Error(1)
}

func (m *MockRequestRepository) PersistLine(tx *goqu.TxDatabase, line models.RequestLine) (int, error) {
	args := m.Called(tx, line)
	return args.Int(0), args.Error(1)
}

func (m *MockRequestRepository) UpdateLineQuantity(tx *goqu.TxDatabase, lineID, quantity int) error {
	args := m.Called(tx, lineID, quantity)
	return args.Error(0)
}

func (m *MockRequestRepository) RemoveLine(tx *goqu.TxDatabase, lineID int) error {
	args := m.Called(tx, lineID)
	return args.Error(0)
}

func (m *MockRequestRepository) UpdateOrderGroup(tx *goqu.TxDatabase, orderID int, groupKey string) error {
	args := m.Called(tx, orderID, groupKey)
	return args.Error(0)
}

type MockRequestPool struct {
	mock.Mock
}

func (m *MockRequestPool) PoolFromRequestLine(tx *goqu.TxDatabase, order *models.RequestOrder, line models.RequestLine, quantity int, raw map[string]string, actor models.Actor) (*models.StockItem, error) {
	args := m.Called(tx, order, line, quantity, raw, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
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

func newTestService() (*RequestService, *MockTxRunner, *MockRequestRepository, *MockRequestPool, *MockUserDirectory, *MockActivityLogger) {
	tx := new(MockTxRunner)
	repo := new(MockRequestRepository)
	pool := new(MockRequestPool)
	users := new(MockUserDirectory)
	audit := new(MockActivityLogger)
	return NewService(tx, repo, pool, users, audit), tx, repo, pool, users, audit
}

func testActor() models.Actor {
	return models.Actor{ID: 1, Username: "ayse.yilmaz", Role: roles.User}
}

func openOrder(id int, orderNo string, lines ...models.RequestLine) *models.RequestOrder {
	order := &models.RequestOrder{
		ID:       id,
		OrderNo:  orderNo,
		GroupKey: models.RequestGroupOpen,
		Lines:    lines,
	}
	order.Summarize()
	return order
}

func TestPlanFulfillmentPartialLine(t *testing.T) {
	lines := []models.RequestLine{{ID: 1, Quantity: 5}}

	plan, err := planFulfillment(lines, 3, nil)

	assert.NoError(t, err)
	assert.Len(t, plan, 1)
	assert.Equal(t, 3, plan[0].take)
}

func TestPlanFulfillmentSpansLinesEarliestFirst(t *testing.T) {
	lines := []models.RequestLine{
		{ID: 1, Quantity: 2},
		{ID: 2, Quantity: 4},
	}

	plan, err := planFulfillment(lines, 5, nil)

	assert.NoError(t, err)
	assert.Len(t, plan, 2)
	assert.Equal(t, 1, plan[0].line.ID)
	assert.Equal(t, 2, plan[0].take)
	assert.Equal(t, 2, plan[1].line.ID)
	assert.Equal(t, 3, plan[1].take)
}

func TestPlanFulfillmentTargetsSingleLine(t *testing.T) {
	lines := []models.RequestLine{
		{ID: 1, Quantity: 2},
		{ID: 2, Quantity: 4},
	}
	lineID := 2

	plan, err := planFulfillment(lines, 4, &lineID)

	assert.NoError(t, err)
	assert.Len(t, plan, 1)
	assert.Equal(t, 2, plan[0].line.ID)
	assert.Equal(t, 4, plan[0].take)
}

func TestPlanFulfillmentRejectsOverRequest(t *testing.T) {
	lines := []models.RequestLine{{ID: 1, Quantity: 2}}

	_, err := planFulfillment(lines, 3, nil)

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPlanFulfillmentRejectsUnknownLine(t *testing.T) {
	lines := []models.RequestLine{{ID: 1, Quantity: 2}}
	lineID := 99

	_, err := planFulfillment(lines, 1, &lineID)

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrderRejectsDuplicateOrderNo(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	repo.On("FindOrderByOrderNo", "SIP-1001").Return(openOrder(1, "SIP-1001"), nil)

	_, err := service.CreateOrder(testActor(), CreateOrderRequest{
		OrderNo:     "SIP-1001",
		RequestedBy: "mehmet.kaya",
		Lines:       []LineRequest{{HardwareType: "Laptop", Quantity: 1}},
	})

	assert.Error(t, err)
	var conflictErr *custom_error.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateOrderRequiresResolvableUser(t *testing.T) {
	service, _, repo, _, users, _ := newTestService()

	repo.On("FindOrderByOrderNo", "SIP-1002").Return(nil, nil)
	users.On("GetUserByUsername", "bilinmeyen").Return(nil, nil)

	_, err := service.CreateOrder(testActor(), CreateOrderRequest{
		OrderNo:     "SIP-1002",
		RequestedBy: "bilinmeyen",
		Lines:       []LineRequest{{HardwareType: "Laptop", Quantity: 1}},
	})

	assert.Error(t, err)
	var validationErr *custom_error.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateOrderDefaultsDepartmentAndCategory(t *testing.T) {
	service, tx, repo, _, users, audit := newTestService()

	repo.On("FindOrderByOrderNo", "SIP-1003").Return(nil, nil)
	users.On("GetUserByUsername", "mehmet.kaya").Return(&models.User{ID: 9, Username: "mehmet.kaya"}, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("PersistOrder", mock.Anything, "SIP-1003", "mehmet.kaya", "Belirtilmedi", models.RequestGroupOpen).Return(5, nil)
	repo.On("PersistLine", mock.Anything, mock.MatchedBy(func(line models.RequestLine) bool {
		return line.OrderID == 5 && line.Category == "envanter" && line.Quantity == 2
	})).Return(11, nil)
	audit.On("Log", mock.Anything, mock.Anything, "create", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetOrder", 5).Return(openOrder(5, "SIP-1003", models.RequestLine{ID: 11, OrderID: 5, Quantity: 2}), nil)

	order, err := service.CreateOrder(testActor(), CreateOrderRequest{
		OrderNo:     "SIP-1003",
		RequestedBy: "mehmet.kaya",
		Lines:       []LineRequest{{HardwareType: "Laptop", Quantity: 2}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 5, order.ID)
	repo.AssertExpectations(t)
}

func TestFulfillClosesOrderWhenAllLinesExhausted(t *testing.T) {
	service, tx, repo, pool, _, audit := newTestService()

	line := models.RequestLine{ID: 21, OrderID: 2, HardwareType: "Laptop", Category: "envanter", Quantity: 2}
	order := openOrder(2, "SIP-9001", line)
	closed := &models.RequestOrder{ID: 2, OrderNo: "SIP-9001", GroupKey: models.RequestGroupClosed}

	repo.On("GetOrder", 2).Return(order, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	pool.On("PoolFromRequestLine", mock.Anything, order, line, 2, mock.Anything, mock.Anything).
		Return(&models.StockItem{ID: 91, Quantity: 2}, nil)
	repo.On("RemoveLine", mock.Anything, 21).Return(nil)
	repo.On("UpdateOrderGroup", mock.Anything, 2, models.RequestGroupClosed).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "stock", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetOrder", 2).Return(closed, nil).Once()

	result, err := service.Action(testActor(), 2, OrderActionRequest{Action: ActionFulfill, Quantity: 2})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestGroupClosed, result.Order.GroupKey)
	assert.Len(t, result.StockItems, 1)
	assert.Equal(t, 2, result.StockItems[0].Quantity)
	repo.AssertExpectations(t)
}

func TestFulfillPartialKeepsOrderOpen(t *testing.T) {
	service, tx, repo, pool, _, audit := newTestService()

	line := models.RequestLine{ID: 31, OrderID: 3, HardwareType: "Monitör", Category: "envanter", Quantity: 5}
	order := openOrder(3, "SIP-9002", line)
	stillOpen := openOrder(3, "SIP-9002", models.RequestLine{ID: 31, OrderID: 3, Quantity: 2})

	repo.On("GetOrder", 3).Return(order, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	pool.On("PoolFromRequestLine", mock.Anything, order, line, 3, mock.Anything, mock.Anything).
		Return(&models.StockItem{ID: 92, Quantity: 3}, nil)
	repo.On("UpdateLineQuantity", mock.Anything, 31, 2).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "stock", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetOrder", 3).Return(stillOpen, nil).Once()

	result, err := service.Action(testActor(), 3, OrderActionRequest{Action: ActionFulfill, Quantity: 3})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestGroupOpen, result.Order.GroupKey)
	repo.AssertNotCalled(t, "RemoveLine", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateOrderGroup", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelLeavesQuantitiesUntouched(t *testing.T) {
	service, tx, repo, pool, _, audit := newTestService()

	line := models.RequestLine{ID: 41, OrderID: 4, HardwareType: "Laptop", Quantity: 3}
	order := openOrder(4, "SIP-9003", line)
	cancelled := openOrder(4, "SIP-9003", line)
	cancelled.GroupKey = models.RequestGroupCancelled

	repo.On("GetOrder", 4).Return(order, nil).Once()
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("UpdateOrderGroup", mock.Anything, 4, models.RequestGroupCancelled).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "cancel", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetOrder", 4).Return(cancelled, nil).Once()

	result, err := service.Action(testActor(), 4, OrderActionRequest{Action: ActionCancel})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestGroupCancelled, result.Order.GroupKey)
	assert.Equal(t, 3, result.Order.Lines[0].Quantity)
	pool.AssertNotCalled(t, "PoolFromRequestLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateLineQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestActionRejectsClosedOrder(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()

	closed := &models.RequestOrder{ID: 6, OrderNo: "SIP-9004", GroupKey: models.RequestGroupClosed}
	repo.On("GetOrder", 6).Return(closed, nil)

	_, err := service.Action(testActor(), 6, OrderActionRequest{Action: ActionFulfill, Quantity: 1})

	assert.Error(t, err)
	var stateErr *custom_error.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}
