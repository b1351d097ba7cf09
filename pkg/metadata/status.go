package metadata

import "fmt"

// ItemStatus is the lifecycle status of an inventory item.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "aktif"
	ItemStatusPending  ItemStatus = "beklemede"
	ItemStatusFaulty   ItemStatus = "arizali"
	ItemStatusScrapped ItemStatus = "hurda"
	ItemStatusPooled   ItemStatus = "stokta"
)

func NewItemStatus(value string) (ItemStatus, error) {
	status := ItemStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid item status: %s", value)
	}
	return status, nil
}

func (s ItemStatus) isValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusPending, ItemStatusFaulty, ItemStatusScrapped, ItemStatusPooled:
		return true
	default:
		return false
	}
}

func (s ItemStatus) String() string {
	return string(s)
}

// NormalizeItemStatus is the permissive twin of NewItemStatus for read paths:
// unknown or legacy values fall back to "aktif" instead of failing, so a
// listing never hard-fails on stale data. Mutation entry points must use the
// strict constructor instead.
func NormalizeItemStatus(value string) ItemStatus {
	status := ItemStatus(value)
	if !status.isValid() {
		return ItemStatusActive
	}
	return status
}

// StockStatus is the state of a pool item.
type StockStatus string

const (
	StockStatusPooled   StockStatus = "stokta"
	StockStatusAssigned StockStatus = "devredildi"
	StockStatusFaulty   StockStatus = "arizali"
	StockStatusScrapped StockStatus = "hurda"
)

func NewStockStatus(value string) (StockStatus, error) {
	status := StockStatus(value)
	if !status.isValid() {
		return "", fmt.Errorf("invalid stock status: %s", value)
	}
	return status, nil
}

func (s StockStatus) isValid() bool {
	switch s {
	case StockStatusPooled, StockStatusAssigned, StockStatusFaulty, StockStatusScrapped:
		return true
	default:
		return false
	}
}

func (s StockStatus) String() string {
	return string(s)
}

// NormalizeStockStatus falls back to "stokta" on unknown values (read paths only).
func NormalizeStockStatus(value string) StockStatus {
	status := StockStatus(value)
	if !status.isValid() {
		return StockStatusPooled
	}
	return status
}

// AllowOperations reports whether pool transitions are permitted for the
// given status. Only items currently in the pool may be assigned, marked
// faulty or scrapped; this is enforced server-side, not just in the UI.
func (s StockStatus) AllowOperations() bool {
	return s == StockStatusPooled
}

// LicenseStatus is the state of a license attached to an inventory item.
type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "aktif"
	LicenseStatusPassive LicenseStatus = "pasif"
	LicenseStatusPending LicenseStatus = "beklemede"
)

func NewLicenseStatus(value string) (LicenseStatus, error) {
	status := LicenseStatus(value)
	switch status {
	case LicenseStatusActive, LicenseStatusPassive, LicenseStatusPending:
		return status, nil
	default:
		return "", fmt.Errorf("invalid license status: %s", value)
	}
}

func (s LicenseStatus) String() string {
	return string(s)
}
