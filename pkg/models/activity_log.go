package models

import (
	"encoding/json"
	"time"
)

// ActivityLog is the process-wide append-only audit entry. Every mutating
// operation writes exactly one row in the same transaction as its own writes.
type ActivityLog struct {
	ID         int                    `json:"id" db:"id"`
	ResourceID int                    `json:"resource_id" db:"resource_id"`
	Area       string                 `json:"area" db:"area"` // e.g. envanter, stok, talep, kullanici
	Action     string                 `json:"action" db:"action"`
	Actor      string                 `json:"actor" db:"actor"`
	DataRaw    string                 `json:"-" db:"data"` // JSON as string
	Data       map[string]interface{} `json:"data" db:"-"`
	CreatedAt  time.Time              `json:"created_at" db:"created_at"`
}

func (a *ActivityLog) LoadFromDB() {
	if a.DataRaw != "" {
		_ = json.Unmarshal([]byte(a.DataRaw), &a.Data)
	}
}
