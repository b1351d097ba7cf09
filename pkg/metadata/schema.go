package metadata

import (
	"strings"

	custom_error "github.com/fixadd/stok/pkg/errors"
)

// Field describes one metadata field of a category schema. AssignmentOnly
// fields are skipped when an item enters the pool and only validated when it
// leaves the pool via assignment.
type Field struct {
	Key            string
	Label          string
	Required       bool
	AssignmentOnly bool
}

var categorySchemas = map[Category][]Field{
	CategoryInventory: {
		{Key: "envanter_no", Label: "Envanter No", Required: true},
		{Key: "bilgisayar_adi", Label: "Bilgisayar Adı"},
		{Key: "marka", Label: "Marka"},
		{Key: "model", Label: "Model"},
		{Key: "seri_no", Label: "Seri No"},
		{Key: "ifs_no", Label: "IFS No"},
		{Key: "ip_adresi", Label: "IP Adresi", AssignmentOnly: true},
		{Key: "mac_adresi", Label: "MAC Adresi", AssignmentOnly: true},
		{Key: "sorumlu", Label: "Sorumlu", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", Required: true, AssignmentOnly: true},
		{Key: "fabrika", Label: "Fabrika", Required: true, AssignmentOnly: true},
	},
	CategoryPeripheral: {
		{Key: "urun_adi", Label: "Ürün Adı", Required: true},
		{Key: "marka", Label: "Marka"},
		{Key: "model", Label: "Model"},
		{Key: "seri_no", Label: "Seri No"},
		{Key: "sorumlu", Label: "Sorumlu", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", Required: true, AssignmentOnly: true},
	},
	CategoryPrinter: {
		{Key: "yazici_adi", Label: "Yazıcı Adı", Required: true},
		{Key: "marka", Label: "Marka"},
		{Key: "model", Label: "Model"},
		{Key: "ip_adresi", Label: "IP Adresi", Required: true, AssignmentOnly: true},
		{Key: "fabrika", Label: "Fabrika", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", AssignmentOnly: true},
	},
	CategoryLicense: {
		{Key: "lisans_adi", Label: "Lisans Adı", Required: true},
		{Key: "lisans_anahtari", Label: "Lisans Anahtarı", Required: true},
		{Key: "envanter_no", Label: "Envanter No"},
		{Key: "sorumlu", Label: "Sorumlu", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", AssignmentOnly: true},
	},
	CategoryRequest: {
		{Key: "siparis_no", Label: "Sipariş No"},
		{Key: "donanim_tipi", Label: "Donanım Tipi", Required: true},
		{Key: "marka", Label: "Marka"},
		{Key: "model", Label: "Model"},
		{Key: "sorumlu", Label: "Sorumlu", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", Required: true, AssignmentOnly: true},
	},
	CategoryManual: {
		{Key: "aciklama", Label: "Açıklama", Required: true},
		{Key: "sorumlu", Label: "Sorumlu", Required: true, AssignmentOnly: true},
		{Key: "departman", Label: "Departman", AssignmentOnly: true},
	},
}

// SchemaFor returns the ordered field list of a category. When
// includeAssignmentFields is false the assignment-only fields are left out,
// which is how items enter the pool with partial metadata.
func SchemaFor(category Category, includeAssignmentFields bool) []Field {
	fields, ok := categorySchemas[NormalizeCategory(category.String())]
	if !ok {
		return nil
	}
	if includeAssignmentFields {
		return fields
	}

	var creationFields []Field
	for _, field := range fields {
		if field.AssignmentOnly {
			continue
		}
		creationFields = append(creationFields, field)
	}
	return creationFields
}

// PrepareStockMetadata validates a raw metadata payload against the
// category's schema and returns a flat map with all empty values dropped.
// Values fall back from raw to defaults; a required field left empty fails
// with a ValidationError naming the field label. Keys outside the schema are
// carried over unvalidated.
func PrepareStockMetadata(category Category, raw, defaults map[string]string, includeAssignmentFields bool) (map[string]string, error) {
	prepared := make(map[string]string)
	schema := SchemaFor(category, includeAssignmentFields)

	for _, field := range schema {
		value, ok := raw[field.Key]
		if !ok || strings.TrimSpace(value) == "" {
			value = defaults[field.Key]
		}
		value = strings.TrimSpace(value)

		if value == "" {
			if field.Required {
				return nil, custom_error.NewValidationError("%s alanı zorunludur.", field.Label)
			}
			continue
		}
		prepared[field.Key] = value
	}

	schemaKeys := make(map[string]struct{}, len(schema))
	for _, field := range schema {
		schemaKeys[field.Key] = struct{}{}
	}

	// Pass-through for extra keys the schema does not know about.
	for key, value := range raw {
		if _, declared := schemaKeys[key]; declared {
			continue
		}
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		prepared[key] = trimmed
	}

	return prepared, nil
}
