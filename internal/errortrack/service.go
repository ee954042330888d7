package errortrack

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// ErrNotFound is returned when no error row has the given id.
var ErrNotFound = errors.New("error record not found")

// ListFilters narrows List. Zero values are ignored.
type ListFilters struct {
	Resolved *bool
	Severity Severity
	Limit    int
}

// List returns error rows, most recently seen first.
func (t *Tracker) List(ctx context.Context, userID string, f ListFilters) ([]models.ErrorLog, error) {
	if err := t.guard.Require(ctx, userID, permission.PermErrorsView); err != nil {
		return nil, err
	}

	return t.find(ctx, f)
}

func (t *Tracker) find(ctx context.Context, f ListFilters) ([]models.ErrorLog, error) {
	q := t.db.WithContext(ctx).Model(&models.ErrorLog{})

	if f.Resolved != nil {
		q = q.Where("resolved = ?", *f.Resolved)
	}

	if f.Severity != "" {
		q = q.Where("severity = ?", string(f.Severity))
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	var rows []models.ErrorLog
	if err := q.Order("last_seen DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Resolve marks the error row id as resolved by userID. Later occurrences of
// the same signature open a new row.
func (t *Tracker) Resolve(ctx context.Context, userID, id string) error {
	if err := t.guard.Require(ctx, userID, permission.PermErrorsResolve); err != nil {
		return err
	}

	now := t.now()

	result := t.db.WithContext(ctx).Model(&models.ErrorLog{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]any{
			"resolved":    true,
			"resolved_by": userID,
			"resolved_at": now,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the error row id.
func (t *Tracker) Delete(ctx context.Context, userID, id string) error {
	if err := t.guard.Require(ctx, userID, permission.PermErrorsDelete); err != nil {
		return err
	}

	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ErrorLog{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Export writes the matching error rows as CSV.
func (t *Tracker) Export(ctx context.Context, userID string, f ListFilters, w io.Writer) error {
	if err := t.guard.Require(ctx, userID, permission.PermErrorsExport); err != nil {
		return err
	}

	rows, err := t.find(ctx, f)
	if err != nil {
		return err
	}

	return WriteCSV(w, rows)
}

// WriteCSV serialises error rows as CSV.
func WriteCSV(w io.Writer, rows []models.ErrorLog) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Type", "Severity", "Message", "Component", "Occurrences", "First Seen", "Last Seen", "Resolved",
	}); err != nil {
		return err
	}

	for _, row := range rows {
		if err := writer.Write([]string{
			row.ErrorType,
			row.Severity,
			row.Message,
			row.Component,
			strconv.Itoa(row.OccurrenceCount),
			row.FirstSeen.Format(time.RFC3339),
			row.LastSeen.Format(time.RFC3339),
			strconv.FormatBool(row.Resolved),
		}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// DeleteResolvedBefore removes resolved rows last seen before cutoff and
// returns how many were removed. Callers authorize the operation.
func DeleteResolvedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("resolved = ? AND last_seen < ?", true, cutoff).
		Delete(&models.ErrorLog{})

	return result.RowsAffected, result.Error
}
