package requests

import (
	"strings"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/activitylog"
	custom_error "github.com/fixadd/stok/pkg/errors"
	"github.com/fixadd/stok/pkg/metadata"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// RequestPool is the request-producer path of the stock engine: one pool
// item per fulfilling event. Implemented by the stocks service.
type RequestPool interface {
	PoolFromRequestLine(tx *goqu.TxDatabase, order *models.RequestOrder, line models.RequestLine, quantity int, raw map[string]string, actor models.Actor) (*models.StockItem, error)
}

type UserDirectory interface {
	GetUserByUsername(username string) (*models.User, error)
}

type ActivityLogger interface {
	Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item activitylog.Auditable) error
}

type RequestService struct {
	tx    repository.TxRunner
	repo  RequestRepository
	pool  RequestPool
	users UserDirectory
	audit ActivityLogger
}

func NewService(tx repository.TxRunner, repo RequestRepository, pool RequestPool, users UserDirectory, audit ActivityLogger) *RequestService {
	return &RequestService{
		tx:    tx,
		repo:  repo,
		pool:  pool,
		users: users,
		audit: audit,
	}
}

func (s *RequestService) CreateOrder(actor models.Actor, req CreateOrderRequest) (*models.RequestOrder, error) {
	orderNo := strings.TrimSpace(req.OrderNo)
	if orderNo == "" {
		return nil, custom_error.NewValidationError("Sipariş numarası zorunludur.")
	}

	existing, err := s.repo.FindOrderByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, custom_error.NewConflictError("Bu sipariş numarası zaten kayıtlı.")
	}

	requester, err := s.users.GetUserByUsername(strings.TrimSpace(req.RequestedBy))
	if err != nil || requester == nil {
		return nil, custom_error.NewValidationError("Talep eden kullanıcı bulunamadı.")
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = requester.Department
	}
	if department == "" {
		department = "Belirtilmedi"
	}

	lines, err := buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	var orderID int
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		orderID, err = s.repo.PersistOrder(tx, orderNo, requester.Username, department, models.RequestGroupOpen)
		if err != nil {
			return err
		}

		for _, line := range lines {
			line.OrderID = orderID
			if _, err := s.repo.PersistLine(tx, line); err != nil {
				return err
			}
		}

		logView := &models.RequestOrder{ID: orderID, OrderNo: orderNo}
		return s.audit.Log(tx, actor, "create", map[string]interface{}{
			"order_no":   orderNo,
			"line_count": len(lines),
			"msg":        "Sipariş oluşturuldu",
		}, logView)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetOrder(orderID)
}

// Action runs stok or cancel against an open order.
func (s *RequestService) Action(actor models.Actor, orderID int, req OrderActionRequest) (*ActionResult, error) {
	order, err := s.repo.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.GroupKey != models.RequestGroupOpen {
		return nil, custom_error.NewInvalidStateError("Sadece açık siparişler üzerinde işlem yapılabilir.")
	}

	switch req.Action {
	case ActionCancel:
		return s.cancel(actor, order, req)
	case ActionFulfill:
		return s.fulfill(actor, order, req)
	default:
		return nil, custom_error.NewValidationError("Geçersiz işlem: %s", req.Action)
	}
}

// cancel is a terminal label only; line quantities are left untouched.
func (s *RequestService) cancel(actor models.Actor, order *models.RequestOrder, req OrderActionRequest) (*ActionResult, error) {
	err := s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		if err := s.repo.UpdateOrderGroup(tx, order.ID, models.RequestGroupCancelled); err != nil {
			return err
		}

		return s.audit.Log(tx, actor, "cancel", map[string]interface{}{
			"order_no": order.OrderNo,
			"note":     req.Metadata["note"],
			"msg":      "Sipariş iptal edildi",
		}, order)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Order: updated, StockItems: []models.StockItem{}}, nil
}

func (s *RequestService) fulfill(actor models.Actor, order *models.RequestOrder, req OrderActionRequest) (*ActionResult, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, custom_error.NewValidationError("Adet en az 1 olmalıdır.")
	}

	plan, err := planFulfillment(order.Lines, quantity, req.LineID)
	if err != nil {
		return nil, err
	}

	consumed := 0
	for _, step := range plan {
		consumed += step.take
	}

	created := make([]models.StockItem, 0, len(plan))
	err = s.tx.RunInTransaction(func(tx *goqu.TxDatabase) error {
		for _, step := range plan {
			stockItem, err := s.pool.PoolFromRequestLine(tx, order, step.line, step.take, req.Metadata, actor)
			if err != nil {
				return err
			}
			created = append(created, *stockItem)

			if step.take == step.line.Quantity {
				if err := s.repo.RemoveLine(tx, step.line.ID); err != nil {
					return err
				}
			} else {
				if err := s.repo.UpdateLineQuantity(tx, step.line.ID, step.line.Quantity-step.take); err != nil {
					return err
				}
			}
		}

		// tüm kalemler tükendiyse sipariş kendiliğinden kapanır
		if order.TotalQuantity-consumed == 0 {
			if err := s.repo.UpdateOrderGroup(tx, order.ID, models.RequestGroupClosed); err != nil {
				return err
			}
		}

		return s.audit.Log(tx, actor, "stock", map[string]interface{}{
			"order_no": order.OrderNo,
			"quantity": consumed,
			"msg":      "Sipariş stok havuzuna aktarıldı",
		}, order)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetOrder(order.ID)
	if err != nil {
		return nil, err
	}
	return &ActionResult{Order: updated, StockItems: created}, nil
}

func (s *RequestService) GetOrder(id int) (*models.RequestOrder, error) {
	return s.repo.GetOrder(id)
}

func (s *RequestService) GetOrders(groupKey string) ([]models.RequestOrder, error) {
	return s.repo.GetOrders(groupKey)
}

func (s *RequestService) GetGroups() ([]models.RequestGroup, error) {
	return s.repo.GetGroups()
}

func buildLines(reqs []LineRequest) ([]models.RequestLine, error) {
	lines := make([]models.RequestLine, 0, len(reqs))
	for _, lr := range reqs {
		hardwareType := strings.TrimSpace(lr.HardwareType)
		if hardwareType == "" {
			continue
		}
		if lr.Quantity < 1 {
			return nil, custom_error.NewValidationError("Kalem adedi en az 1 olmalıdır.")
		}

		category := metadata.CategoryInventory
		if strings.TrimSpace(lr.Category) != "" {
			parsed, err := metadata.NewCategory(lr.Category)
			if err != nil {
				return nil, custom_error.NewValidationError("Geçersiz kategori: %s", lr.Category)
			}
			category = parsed
		}

		lines = append(lines, models.RequestLine{
			HardwareType: hardwareType,
			Brand:        strings.TrimSpace(lr.Brand),
			Model:        strings.TrimSpace(lr.Model),
			Category:     category.String(),
			Quantity:     lr.Quantity,
			Note:         strings.TrimSpace(lr.Note),
		})
	}
	if len(lines) == 0 {
		return nil, custom_error.NewValidationError("En az bir sipariş kalemi gereklidir.")
	}
	return lines, nil
}

type fulfillmentStep struct {
	line models.RequestLine
	take int
}

// planFulfillment walks eligible lines earliest-first, consuming
// min(remaining line quantity, remaining requested quantity) per line. The
// requested quantity may not exceed the sum of eligible line quantities.
func planFulfillment(lines []models.RequestLine, requested int, lineID *int) ([]fulfillmentStep, error) {
	eligible := make([]models.RequestLine, 0, len(lines))
	for _, line := range lines {
		if lineID != nil && line.ID != *lineID {
			continue
		}
		if line.Quantity > 0 {
			eligible = append(eligible, line)
		}
	}

	available := 0
	for _, line := range eligible {
		available += line.Quantity
	}
	if available == 0 {
		return nil, custom_error.NewValidationError("Karşılanabilir sipariş kalemi bulunamadı.")
	}
	if requested > available {
		return nil, custom_error.NewValidationError("İstenen adet kalan sipariş adedini aşıyor.")
	}

	plan := make([]fulfillmentStep, 0, len(eligible))
	remaining := requested
	for _, line := range eligible {
		if remaining == 0 {
			break
		}
		take := line.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, fulfillmentStep{line: line, take: take})
		remaining -= take
	}

	return plan, nil
}
