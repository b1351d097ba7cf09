package models

import (
	"strings"
	"time"

	"github.com/fixadd/stok/pkg/metadata"
)

// InventoryItem is the authoritative record for any asset that has an
// inventory number. Items are never hard-deleted, only transitioned.
type InventoryItem struct {
	ID               int         `json:"id"`
	InventoryNo      string      `json:"inventory_no"`
	ComputerName     string      `json:"computer_name,omitempty"`
	Factory          NamedOption `json:"factory"`
	Department       string      `json:"department"`
	HardwareType     NamedOption `json:"hardware_type"`
	Brand            NamedOption `json:"brand"`
	Model            NamedOption `json:"model"`
	ResponsibleID    *int        `json:"responsible_id,omitempty"`
	Responsible      string      `json:"responsible,omitempty"`
	SerialNo         string      `json:"serial_no,omitempty"`
	IfsNo            string      `json:"ifs_no,omitempty"`
	MachineNo        string      `json:"machine_no,omitempty"`
	RelatedMachineNo string      `json:"related_machine_no,omitempty"`
	IPAddress        string      `json:"ip_address,omitempty"`
	MacAddress       string      `json:"mac_address,omitempty"`
	Note             string      `json:"note,omitempty"`
	Status           string      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// FlatInventoryRecord is the joined row shape scanned from the database.
type FlatInventoryRecord struct {
	ID               int       `db:"id"`
	InventoryNo      string    `db:"inventory_no"`
	ComputerName     *string   `db:"computer_name"`
	FactoryID        int       `db:"factory_id"`
	FactoryName      string    `db:"factory_name"`
	Department       string    `db:"department"`
	HardwareTypeID   int       `db:"hardware_type_id"`
	HardwareTypeName string    `db:"hardware_type_name"`
	BrandID          int       `db:"brand_id"`
	BrandName        string    `db:"brand_name"`
	ModelID          int       `db:"model_id"`
	ModelName        string    `db:"model_name"`
	ResponsibleID    *int      `db:"responsible_user_id"`
	ResponsibleFirst *string   `db:"responsible_first_name"`
	ResponsibleLast  *string   `db:"responsible_last_name"`
	SerialNo         *string   `db:"serial_no"`
	IfsNo            *string   `db:"ifs_no"`
	MachineNo        *string   `db:"machine_no"`
	RelatedMachineNo *string   `db:"related_machine_no"`
	IPAddress        *string   `db:"ip_address"`
	MacAddress       *string   `db:"mac_address"`
	Note             *string   `db:"note"`
	Status           string    `db:"status"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (fr *FlatInventoryRecord) TransformToInventoryItem() InventoryItem {
	item := InventoryItem{
		ID:          fr.ID,
		InventoryNo: fr.InventoryNo,
		Factory: NamedOption{
			ID:   fr.FactoryID,
			Name: fr.FactoryName,
		},
		Department: fr.Department,
		HardwareType: NamedOption{
			ID:   fr.HardwareTypeID,
			Name: fr.HardwareTypeName,
		},
		Brand: NamedOption{
			ID:   fr.BrandID,
			Name: fr.BrandName,
		},
		Model: NamedOption{
			ID:   fr.ModelID,
			Name: fr.ModelName,
		},
		ResponsibleID: fr.ResponsibleID,
		Status:        metadata.NormalizeItemStatus(fr.Status).String(),
		CreatedAt:     fr.CreatedAt,
		UpdatedAt:     fr.UpdatedAt,
	}

	item.ComputerName = derefString(fr.ComputerName)
	item.SerialNo = derefString(fr.SerialNo)
	item.IfsNo = derefString(fr.IfsNo)
	item.MachineNo = derefString(fr.MachineNo)
	item.RelatedMachineNo = derefString(fr.RelatedMachineNo)
	item.IPAddress = derefString(fr.IPAddress)
	item.MacAddress = derefString(fr.MacAddress)
	item.Note = derefString(fr.Note)

	if fr.ResponsibleFirst != nil && fr.ResponsibleLast != nil {
		item.Responsible = *fr.ResponsibleFirst + " " + *fr.ResponsibleLast
	}

	return item
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (i *InventoryItem) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: i.ID,
		Area:       "envanter",
	}
}

// InventoryEvent is an append-only history entry on an inventory item,
// ordered newest-first.
type InventoryEvent struct {
	ID          int       `json:"id" db:"id"`
	ItemID      int       `json:"item_id" db:"item_id"`
	EventType   string    `json:"event_type" db:"event_type"`
	PerformedBy string    `json:"performed_by" db:"performed_by"`
	PerformedAt time.Time `json:"performed_at" db:"performed_at"`
	Note        string    `json:"note,omitempty" db:"note"`
}

// InventoryLicense is a "<product> - <key>" license string attached to at
// most one inventory item at a time.
type InventoryLicense struct {
	ID     int    `json:"id" db:"id"`
	ItemID *int   `json:"item_id,omitempty" db:"item_id"`
	Name   string `json:"name" db:"name"`
	Status string `json:"status" db:"status"`
}

func (l *InventoryLicense) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: l.ID,
		Area:       "lisans",
	}
}

// ProductName returns the product part of the "<product> - <key>" convention.
func (l *InventoryLicense) ProductName() string {
	product, _, _ := strings.Cut(l.Name, " - ")
	return product
}

// LicenseKey returns the key part, or empty when the name has no key suffix.
func (l *InventoryLicense) LicenseKey() string {
	_, key, _ := strings.Cut(l.Name, " - ")
	return key
}
