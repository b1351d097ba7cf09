package activitylog

import (
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// Auditable is implemented by every entity that emits audit entries.
type Auditable interface {
	CreateLogView() models.ActivityLog
}

type Persister interface {
	PersistLog(tx *goqu.TxDatabase, entry models.ActivityLog, data interface{}) error
}

type ActivityLog struct {
	r Persister
}

func NewActivityLog(r Persister) *ActivityLog {
	return &ActivityLog{r: r}
}

// Log appends one audit entry for the given resource inside the caller's
// transaction. The entry failing fails the whole operation; audit rows are
// never silently dropped on mutating paths.
func (a *ActivityLog) Log(tx *goqu.TxDatabase, actor models.Actor, action string, data interface{}, item Auditable) error {
	entry := item.CreateLogView()
	entry.Action = action
	entry.Actor = actor.Username

	return a.r.PersistLog(tx, entry, data)
}

// LogArea appends an entry for a fixed area without an Auditable carrier,
// used for the secondary personal-assignment rows tagged "kullanici".
func (a *ActivityLog) LogArea(tx *goqu.TxDatabase, actor models.Actor, area, action string, resourceID int, data interface{}) error {
	entry := models.ActivityLog{
		ResourceID: resourceID,
		Area:       area,
		Action:     action,
		Actor:      actor.Username,
	}

	return a.r.PersistLog(tx, entry, data)
}
