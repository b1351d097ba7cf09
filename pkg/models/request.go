package models

import "time"

// RequestGroup is the coarse status bucket a purchase request belongs to:
// acik, kapandi or iptal.
type RequestGroup struct {
	ID           int    `json:"id" db:"id"`
	Key          string `json:"key" db:"key"`
	Label        string `json:"label" db:"label"`
	Description  string `json:"description" db:"description"`
	EmptyMessage string `json:"empty_message" db:"empty_message"`
}

const (
	RequestGroupOpen      = "acik"
	RequestGroupClosed    = "kapandi"
	RequestGroupCancelled = "iptal"
)

// RequestOrder is a multi-line purchase request. The sum of remaining line
// quantities drives the automatic transition to kapandi on fulfillment.
type RequestOrder struct {
	ID            int           `json:"id"`
	OrderNo       string        `json:"order_no"`
	RequestedBy   string        `json:"requested_by"`
	Department    string        `json:"department"`
	GroupKey      string        `json:"group"`
	OpenedAt      time.Time     `json:"opened_at"`
	Lines         []RequestLine `json:"lines"`
	ItemCount     int           `json:"item_count"`
	TotalQuantity int           `json:"total_quantity"`
}

func (o *RequestOrder) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: o.ID,
		Area:       "talep",
	}
}

// Summarize recomputes the derived line counters for listing payloads.
func (o *RequestOrder) Summarize() {
	o.ItemCount = len(o.Lines)
	total := 0
	for _, line := range o.Lines {
		total += line.Quantity
	}
	o.TotalQuantity = total
}

// RequestLine carries one hardware classification and a requested quantity.
// Its category tag determines what kind of pool item fulfillment produces.
type RequestLine struct {
	ID           int    `json:"id" db:"id"`
	OrderID      int    `json:"order_id" db:"order_id"`
	HardwareType string `json:"hardware_type" db:"hardware_type"`
	Brand        string `json:"brand" db:"brand"`
	Model        string `json:"model" db:"model"`
	Category     string `json:"category" db:"category"`
	Quantity     int    `json:"quantity" db:"quantity"`
	Note         string `json:"note,omitempty" db:"note"`
}

type FlatOrderRecord struct {
	ID          int       `db:"id"`
	OrderNo     string    `db:"order_no"`
	RequestedBy string    `db:"requested_by"`
	Department  string    `db:"department"`
	GroupKey    string    `db:"group_key"`
	OpenedAt    time.Time `db:"opened_at"`
}
