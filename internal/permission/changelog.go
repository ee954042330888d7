package permission

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/besteffort"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Fixed change summaries.
const (
	SummaryCreated   = "Permissions created"
	SummaryNoChanges = "No changes"
)

const (
	channelChangeLog = "permission_changelog"

	labelEnabled  = "ativada"
	labelDisabled = "desativada"
)

// ChangeLog appends permission change entries. Entries are never updated or deleted.
type ChangeLog struct {
	db *gorm.DB
}

// NewChangeLog creates a change log writing to db.
func NewChangeLog(db *gorm.DB) *ChangeLog {
	return &ChangeLog{db: db}
}

// Record appends one entry for a save of userID's set by changedBy.
// A nil before means the set was created by this save.
func (c *ChangeLog) Record(ctx context.Context, userID, changedBy string, before, after Set) besteffort.Outcome {
	entry := models.PermissionChangeLog{
		UserID:    userID,
		ChangedBy: changedBy,
		Summary:   Summarize(before, after),
	}

	if before != nil {
		raw, err := Encode(before)
		if err != nil {
			return besteffort.Fail(channelChangeLog, err)
		}

		entry.Before = datatypes.JSON(raw)
	}

	raw, err := Encode(after)
	if err != nil {
		return besteffort.Fail(channelChangeLog, err)
	}

	entry.After = datatypes.JSON(raw)

	if err := c.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return besteffort.Fail(channelChangeLog, err)
	}

	return besteffort.OK(channelChangeLog)
}

// History returns the entries of userID, newest first. A limit <= 0 returns all.
func (c *ChangeLog) History(ctx context.Context, userID string, limit int) ([]models.PermissionChangeLog, error) {
	var entries []models.PermissionChangeLog

	q := c.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

// Summarize describes the flags of after that differ from before, in schema
// order, as "<module>.<action> ativada|desativada" joined by ", ". A flag
// missing from before counts as different. A nil before yields SummaryCreated
// and no difference yields SummaryNoChanges.
func Summarize(before, after Set) string {
	if before == nil {
		return SummaryCreated
	}

	var changes []string

	for _, sc := range schema {
		actions, ok := after[sc.module]
		if !ok {
			continue
		}

		for _, a := range sc.actions {
			v, ok := actions[a]
			if !ok {
				continue
			}

			prev, had := before[sc.module][a]
			if had && prev == v {
				continue
			}

			label := labelDisabled
			if v {
				label = labelEnabled
			}

			changes = append(changes, Join(sc.module, a)+" "+label)
		}
	}

	if len(changes) == 0 {
		return SummaryNoChanges
	}

	return strings.Join(changes, ", ")
}
