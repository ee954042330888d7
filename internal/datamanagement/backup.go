package datamanagement

import (
	"context"
	"errors"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/bulk"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// BackupVersion is written to every backup and checked on import.
const BackupVersion = 1

var (
	// ErrBackupVersion is returned when importing a backup of another version.
	ErrBackupVersion = errors.New("unsupported backup version")
	// ErrUnknownEmployee is reported for rows whose employee is neither stored nor imported.
	ErrUnknownEmployee = errors.New("employee does not exist")
)

// Backup is the portable copy of the operational data.
type Backup struct {
	Version    int                 `json:"version"`
	ExportedAt string              `json:"exportedAt"`
	Employees  []models.Employee   `json:"employees"`
	Attendance []models.Attendance `json:"attendance"`
	Bonuses    []models.Bonus      `json:"bonuses"`
	Payments   []models.Payment    `json:"payments"`
}

// ImportResult reports the outcome of each section of an import.
type ImportResult struct {
	Employees  bulk.Result `json:"employees"`
	Attendance bulk.Result `json:"attendance"`
	Bonuses    bulk.Result `json:"bonuses"`
	Payments   bulk.Result `json:"payments"`
}

// Export writes a JSON backup of employees, attendance, bonuses and payments.
func (s *Service) Export(ctx context.Context, userID string, w io.Writer) error {
	if err := s.guard.Require(ctx, userID, permission.PermDataManagementExport); err != nil {
		return err
	}

	b := Backup{Version: BackupVersion, ExportedAt: s.now().UTC().Format(time.RFC3339)}
	tx := s.db.WithContext(ctx)

	if err := tx.Order("name").Find(&b.Employees).Error; err != nil {
		return err
	}

	if err := tx.Order("date").Order("employee_id").Find(&b.Attendance).Error; err != nil {
		return err
	}

	if err := tx.Order("date").Order("employee_id").Find(&b.Bonuses).Error; err != nil {
		return err
	}

	if err := tx.Order("period_start").Order("employee_id").Find(&b.Payments).Error; err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(b); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:     userID,
		Action:     audit.ActionExport,
		Module:     audit.ModuleDataManagement,
		EntityType: "backup",
		Description: fmt.Sprintf("Backup exported: %d employees, %d attendance, %d bonuses, %d payments",
			len(b.Employees), len(b.Attendance), len(b.Bonuses), len(b.Payments)),
	}).Log()

	return nil
}

// Import restores a backup. Rows are upserted on their natural keys, so
// importing the same backup twice is harmless. Employees are imported first;
// a row whose employee failed counts as failed too.
func (s *Service) Import(ctx context.Context, userID string, b Backup) (*ImportResult, error) {
	if err := s.guard.Require(ctx, userID, permission.PermDataManagementImport); err != nil {
		return nil, err
	}

	if b.Version != BackupVersion {
		return nil, ErrBackupVersion
	}

	res := &ImportResult{}

	res.Employees = bulk.Run(ctx, s.concurrency, b.Employees,
		func(e models.Employee) string { return e.ID },
		func(ctx context.Context, e models.Employee) error {
			return s.db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "cpf", "position", "pix_key", "pix_key_type", "daily_rate", "active", "updated_at"}),
			}).Create(&e).Error
		})

	res.Attendance = bulk.Run(ctx, s.concurrency, b.Attendance,
		func(a models.Attendance) string { return a.EmployeeID + "@" + a.Date },
		func(ctx context.Context, a models.Attendance) error {
			if err := s.requireEmployee(ctx, a.EmployeeID); err != nil {
				return err
			}

			a.ID = 0

			return upsert(ctx, s.db, &a, []string{"employee_id", "date"}, []string{"status", "marked_by", "updated_at"})
		})

	res.Bonuses = bulk.Run(ctx, s.concurrency, b.Bonuses,
		func(x models.Bonus) string { return x.EmployeeID + "@" + x.Date + "/" + string(x.Kind) },
		func(ctx context.Context, x models.Bonus) error {
			if err := s.requireEmployee(ctx, x.EmployeeID); err != nil {
				return err
			}

			x.ID = 0

			return upsert(ctx, s.db, &x, []string{"employee_id", "date", "kind"}, []string{"amount", "reason", "created_by"})
		})

	res.Payments = bulk.Run(ctx, s.concurrency, b.Payments,
		func(p models.Payment) string { return p.EmployeeID + "@" + p.PeriodStart + "/" + p.PeriodEnd },
		func(ctx context.Context, p models.Payment) error {
			if err := s.requireEmployee(ctx, p.EmployeeID); err != nil {
				return err
			}

			p.ID = 0
			_, err := financial.UpsertPayment(ctx, s.db, p)

			return err
		})

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionImport,
		Module:      audit.ModuleDataManagement,
		EntityType:  "backup",
		NewData:     res,
		Description: "Backup imported: " + strconv.Itoa(res.Employees.Succeeded) + " employees",
	}).Log()

	return res, nil
}

func upsert(ctx context.Context, db *gorm.DB, row any, keys, updates []string) error {
	cols := make([]clause.Column, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, clause.Column{Name: k})
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(row).Error
}

func (s *Service) requireEmployee(ctx context.Context, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrUnknownEmployee
	}

	return nil
}
