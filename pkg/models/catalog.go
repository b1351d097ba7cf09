package models

// NamedOption is a simple reference-catalog entity: factories, hardware
// types, usage areas, license names, info categories and brands all share
// this shape. Names are unique case-insensitively.
type NamedOption struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

func (o *NamedOption) CreateLogView() ActivityLog {
	return ActivityLog{
		ResourceID: o.ID,
		Area:       "katalog",
	}
}

// Brand additionally owns an ordered list of hardware models.
type Brand struct {
	ID     int           `json:"id" db:"id"`
	Name   string        `json:"name" db:"name"`
	Models []NamedOption `json:"models,omitempty"`
}

type CreateOptionRequest struct {
	Name string `json:"name"`
}

// LdapProfile holds directory connection settings. The fields exist for the
// admin panel, nothing ever connects to them.
type LdapProfile struct {
	ID     int    `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Host   string `json:"host" db:"host"`
	Port   int    `json:"port" db:"port"`
	BaseDN string `json:"base_dn" db:"base_dn"`
	BindDN string `json:"bind_dn" db:"bind_dn"`
}
