package requests

import "github.com/fixadd/stok/pkg/models"

// CreateOrderRequest opens a purchase request with at least one line.
type CreateOrderRequest struct {
	OrderNo     string        `json:"order_no" binding:"required"`
	RequestedBy string        `json:"requested_by" binding:"required"`
	Department  string        `json:"department"`
	Lines       []LineRequest `json:"lines" binding:"required"`
}

type LineRequest struct {
	HardwareType string `json:"hardware_type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Category     string `json:"category"`
	Quantity     int    `json:"quantity"`
	Note         string `json:"note"`
}

const (
	ActionFulfill = "stok"
	ActionCancel  = "cancel"
)

// OrderActionRequest drives the stok/cancel endpoint. LineID narrows the
// action to one line; Metadata is forwarded to the pool producer path.
type OrderActionRequest struct {
	Action   string            `json:"action" binding:"required"`
	Quantity int               `json:"quantity"`
	LineID   *int              `json:"line_id"`
	Metadata map[string]string `json:"metadata"`
}

// ActionResult is the action endpoint's response payload.
type ActionResult struct {
	Order      *models.RequestOrder `json:"order"`
	StockItems []models.StockItem   `json:"stock_items"`
}
