package audit

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Query limits.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Filters narrows a query. Zero values are ignored; set values are AND-combined.
type Filters struct {
	StartDate  time.Time
	EndDate    time.Time
	UserID     string
	Module     string
	ActionType ActionType
	Limit      int
}

// Query returns matching entries, newest first.
func (s *Service) Query(ctx context.Context, f Filters) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if !f.StartDate.IsZero() {
		q = q.Where("created_at >= ?", f.StartDate)
	}

	if !f.EndDate.IsZero() {
		q = q.Where("created_at <= ?", f.EndDate)
	}

	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}

	if f.ActionType != "" {
		q = q.Where("action_type = ?", string(f.ActionType))
	}

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	var rows []models.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// WriteCSV serialises audit rows as CSV.
func WriteCSV(w io.Writer, rows []models.AuditLog) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Date", "User", "Action", "Module", "Entity Type", "Entity ID", "Description", "User Agent",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		if err := writer.Write([]string{
			row.CreatedAt.Format(time.RFC3339),
			row.UserID,
			row.ActionType,
			row.Module,
			row.EntityType,
			row.EntityID,
			row.Description,
			row.UserAgent,
		}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}
