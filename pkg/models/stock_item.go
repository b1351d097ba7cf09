package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fixadd/stok/pkg/metadata"
)

// StockItem is one pooled unit (or bounded quantity) available for
// (re)assignment. Metadata is a flat string map validated against the
// category schema on every write; reads normalize unknown category values
// instead of failing. Status is kept raw: it is the server-side operation
// gate and a legacy value must never become operable through normalization.
type StockItem struct {
	ID          int               `json:"id"`
	Title       string            `json:"title"`
	Reference   string            `json:"reference,omitempty"`
	SourceType  string            `json:"source_type"`
	InventoryID *int              `json:"inventory_id,omitempty"`
	LicenseID   *int              `json:"license_id,omitempty"`
	OrderID     *int              `json:"order_id,omitempty"`
	Category    string            `json:"category"`
	Quantity    int               `json:"quantity"`
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FlatStockRecord is the row shape scanned from the database.
type FlatStockRecord struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Reference   *string   `db:"reference"`
	SourceType  string    `db:"source_type"`
	InventoryID *int      `db:"inventory_item_id"`
	LicenseID   *int      `db:"license_id"`
	OrderID     *int      `db:"order_id"`
	Category    string    `db:"category"`
	Quantity    int       `db:"quantity"`
	Status      string    `db:"status"`
	MetadataRaw []byte    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (fr *FlatStockRecord) TransformToStockItem() (StockItem, error) {
	meta := map[string]string{}
	if len(fr.MetadataRaw) > 0 {
		if err := json.Unmarshal(fr.MetadataRaw, &meta); err != nil {
			return StockItem{}, fmt.Errorf("failed to unmarshal stock metadata: %w", err)
		}
	}

	return StockItem{
		ID:          fr.ID,
		Title:       fr.Title,
		Reference:   derefString(fr.Reference),
		SourceType:  fr.SourceType,
		InventoryID: fr.InventoryID,
		LicenseID:   fr.LicenseID,
		OrderID:     fr.OrderID,
		Category:    metadata.NormalizeCategory(fr.Category).String(),
		Quantity:    fr.Quantity,
		Status:      fr.Status,
		Metadata:    meta,
		CreatedAt:   fr.CreatedAt,
		UpdatedAt:   fr.UpdatedAt,
	}, nil
}

// AllowOperations derives whether pool transitions may run against the item.
// The comparison is strict: an unknown status string is not operable.
func (s *StockItem) AllowOperations() bool {
	return metadata.StockStatus(s.Status) == metadata.StockStatusPooled
}

func (s *StockItem) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: s.ID,
		Area:       "stok",
	}
}

// StockLog is the append-only transition record of a pool item.
type StockLog struct {
	ID             int                    `json:"id" db:"id"`
	StockItemID    int                    `json:"stock_item_id" db:"stock_item_id"`
	Action         string                 `json:"action" db:"action"`
	ActionType     string                 `json:"action_type" db:"action_type"` // in | out | warning | info
	QuantityChange int                    `json:"quantity_change" db:"quantity_change"`
	Actor          string                 `json:"actor" db:"actor"`
	Note           string                 `json:"note,omitempty" db:"note"`
	DataRaw        string                 `json:"-" db:"data"`
	Data           map[string]interface{} `json:"data" db:"-"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
}

func (l *StockLog) LoadFromDB() {
	if l.DataRaw != "" {
		_ = json.Unmarshal([]byte(l.DataRaw), &l.Data)
	}
}

const (
	StockActionIn      = "in"
	StockActionOut     = "out"
	StockActionWarning = "warning"
	StockActionInfo    = "info"
)
