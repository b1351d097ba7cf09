package activitylog

import (
	"encoding/json"
	"fmt"

	"github.com/fixadd/stok/internal/repository"
	"github.com/fixadd/stok/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type ActivityLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *ActivityLogRepository {
	return &ActivityLogRepository{repository: r}
}

// PersistLog writes one audit row inside the caller's transaction so the
// entry commits or rolls back together with the mutation it describes.
func (r *ActivityLogRepository) PersistLog(tx *goqu.TxDatabase, entry models.ActivityLog, data interface{}) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log data: %w", err)
	}

	query := tx.Insert("activity_logs").
		Rows(goqu.Record{
			"resource_id": entry.ResourceID,
			"area":        entry.Area,
			"action":      entry.Action,
			"actor":       entry.Actor,
			"data":        dataJSON,
		})

	if _, err = query.Executor().Exec(); err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	return nil
}

func (r *ActivityLogRepository) GetResourceLog(id int, area string) (*[]models.ActivityLog, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("activity_logs").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.resource_id").As("resource_id"),
			goqu.I("a.area").As("area"),
			goqu.I("a.action").As("action"),
			goqu.I("a.actor").As("actor"),
			goqu.I("a.data").As("data"),
			goqu.I("a.created_at").As("created_at"),
		).
		Where(goqu.Ex{
			"a.resource_id": id,
			"a.area":        area,
		}).
		Order(goqu.I("a.created_at").Desc())

	return r.scanLogs(query)
}

// GetRecent feeds the recent-activity widget and the admin-only audit view.
func (r *ActivityLogRepository) GetRecent(limit int) (*[]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.repository.GoquDBWrapper.
		From(goqu.T("activity_logs").As("a")).
		Select(
			goqu.I("a.id").As("id"),
			goqu.I("a.resource_id").As("resource_id"),
			goqu.I("a.area").As("area"),
			goqu.I("a.action").As("action"),
			goqu.I("a.actor").As("actor"),
			goqu.I("a.data").As("data"),
			goqu.I("a.created_at").As("created_at"),
		).
		Order(goqu.I("a.created_at").Desc()).
		Limit(uint(limit))

	return r.scanLogs(query)
}

func (r *ActivityLogRepository) scanLogs(query *goqu.SelectDataset) (*[]models.ActivityLog, error) {
	rows, err := query.Executor().Query()
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityLog
	for rows.Next() {
		var entry models.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ResourceID,
			&entry.Area,
			&entry.Action,
			&entry.Actor,
			&entry.DataRaw,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity log row: %w", err)
		}
		entry.LoadFromDB()
		entries = append(entries, entry)
	}

	return &entries, nil
}
