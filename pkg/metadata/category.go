package metadata

import (
	"fmt"
	"strings"
)

// Category partitions stock items and request lines into schema-distinct
// kinds. Each category declares its own metadata field schema, see schema.go.
type Category string

const (
	CategoryInventory  Category = "envanter"
	CategoryPeripheral Category = "cevre_birimi"
	CategoryPrinter    Category = "yazici"
	CategoryLicense    Category = "lisans"
	CategoryRequest    Category = "talep"
	CategoryManual     Category = "manuel"
)

func NewCategory(value string) (Category, error) {
	category := Category(strings.TrimSpace(value))
	if !category.IsValid() {
		return "", fmt.Errorf("invalid category: %s", value)
	}
	return category, nil
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryInventory, CategoryPeripheral, CategoryPrinter, CategoryLicense, CategoryRequest, CategoryManual:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// NormalizeCategory falls back to "envanter" on unknown values (read paths only).
func NormalizeCategory(value string) Category {
	category := Category(value)
	if !category.IsValid() {
		return CategoryInventory
	}
	return category
}

// SourceType tags a pool item's provenance.
type SourceType string

const (
	SourceInventory SourceType = "inventory"
	SourceLicense   SourceType = "license"
	SourceRequest   SourceType = "request"
	SourceManual    SourceType = "manual"
)

func (s SourceType) String() string {
	return string(s)
}
