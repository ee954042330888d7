// Package financial manages bonuses, discounts and payments, and computes payroll.
package financial

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/bulk"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

var (
	// ErrNotFound is returned when no bonus or payment has the given id.
	ErrNotFound = errors.New("financial record not found")
	// ErrUnknownEmployee is returned for an employee that does not exist.
	ErrUnknownEmployee = errors.New("employee does not exist")
	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("period ends before it starts")
)

// AdjustmentInput is a bonus or discount for one employee on one date.
// Amount is in centavos.
type AdjustmentInput struct {
	EmployeeID string `json:"employeeId" validate:"required,uuid"`
	Date       string `json:"date"       validate:"required,date"`
	Amount     int64  `json:"amount"     validate:"gt=0"`
	Reason     string `json:"reason"     validate:"max=255"`
}

// BulkAdjustmentInput applies the same adjustment to many employees.
type BulkAdjustmentInput struct {
	EmployeeIDs []string `json:"employeeIds" validate:"required,min=1,dive,required"`
	Date        string   `json:"date"        validate:"required,date"`
	Amount      int64    `json:"amount"      validate:"gt=0"`
	Reason      string   `json:"reason"      validate:"max=255"`
}

// BulkRemoveInput selects the bonuses of one date, optionally of some employees only.
type BulkRemoveInput struct {
	Date        string   `json:"date"        validate:"required,date"`
	EmployeeIDs []string `json:"employeeIds"`
}

// Period is an inclusive date range.
type Period struct {
	Start string `json:"periodStart" query:"periodStart" validate:"required,date"`
	End   string `json:"periodEnd"   query:"periodEnd"   validate:"required,date"`
}

func (p Period) Validate() error {
	if err := validation.Struct(p); err != nil {
		return err
	}

	if p.End < p.Start {
		return fmt.Errorf("%w: %w", validation.ErrInvalidInput, ErrInvalidPeriod)
	}

	return nil
}

// PaymentInput sets the amount owed to an employee for a period.
type PaymentInput struct {
	EmployeeID string               `json:"employeeId" validate:"required,uuid"`
	Period     Period               `json:"period"`
	Amount     int64                `json:"amount"     validate:"gte=0"`
	Status     models.PaymentStatus `json:"status"     validate:"omitempty,oneof=pending exported paid"`
}

// Service serves the guarded financial operations.
type Service struct {
	db          *gorm.DB
	guard       permission.Authorizer
	audit       audit.Recorder
	concurrency int
}

// New creates a financial service. concurrency bounds the bulk operations.
func New(db *gorm.DB, guard permission.Authorizer, rec audit.Recorder, concurrency int) *Service {
	return &Service{db: db, guard: guard, audit: rec, concurrency: concurrency}
}

// ApplyBonus adds or replaces the bonus of an employee on a date.
func (s *Service) ApplyBonus(ctx context.Context, userID string, in AdjustmentInput) (*models.Bonus, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialApplyBonus); err != nil {
		return nil, err
	}

	return s.adjust(ctx, userID, in, models.BonusKindBonus)
}

// ApplyDiscount adds or replaces the discount of an employee on a date.
func (s *Service) ApplyDiscount(ctx context.Context, userID string, in AdjustmentInput) (*models.Bonus, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialApplyDiscount); err != nil {
		return nil, err
	}

	return s.adjust(ctx, userID, in, models.BonusKindDiscount)
}

// ApplyBulkDiscount applies the same discount to every employee of in.
func (s *Service) ApplyBulkDiscount(ctx context.Context, userID string, in BulkAdjustmentInput) (bulk.Result, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialApplyDiscount); err != nil {
		return bulk.Result{}, err
	}

	if err := validation.Struct(in); err != nil {
		return bulk.Result{}, err
	}

	return bulk.Run(ctx, s.concurrency, in.EmployeeIDs,
		func(id string) string { return id },
		func(ctx context.Context, id string) error {
			_, err := s.adjust(ctx, userID, AdjustmentInput{
				EmployeeID: id,
				Date:       in.Date,
				Amount:     in.Amount,
				Reason:     in.Reason,
			}, models.BonusKindDiscount)

			return err
		}), nil
}

func (s *Service) adjust(ctx context.Context, userID string, in AdjustmentInput, kind models.BonusKind) (*models.Bonus, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.requireEmployee(ctx, in.EmployeeID); err != nil {
		return nil, err
	}

	row := models.Bonus{
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Kind:       kind,
		Amount:     in.Amount,
		Reason:     in.Reason,
		CreatedBy:  userID,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "reason", "created_by"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored models.Bonus
	if err := s.db.WithContext(ctx).
		Where("employee_id = ? AND date = ? AND kind = ?", in.EmployeeID, in.Date, kind).
		First(&stored).Error; err != nil {
		return nil, err
	}

	return &stored, nil
}

// RemoveBonus deletes bonus id and records it in the activity log.
func (s *Service) RemoveBonus(ctx context.Context, userID string, id uint64) error {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialRemoveBonus); err != nil {
		return err
	}

	var row models.Bonus

	err := s.db.WithContext(ctx).Where("id = ? AND kind = ?", id, models.BonusKindBonus).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&row).Error; err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionDelete,
		Module:      audit.ModuleFinancial,
		EntityType:  "bonus",
		EntityID:    fmt.Sprint(row.ID),
		OldData:     row,
		Description: fmt.Sprintf("Bonus of %s removed from employee %s on %s", FormatBRL(row.Amount), row.EmployeeID, row.Date),
	}).Log()

	return nil
}

// RemoveBulkBonus deletes the bonuses of a date, limited to in.EmployeeIDs when
// given, records the removal in the activity log and returns how many were removed.
func (s *Service) RemoveBulkBonus(ctx context.Context, userID string, in BulkRemoveInput) (int64, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialRemoveBulkBonus); err != nil {
		return 0, err
	}

	if err := validation.Struct(in); err != nil {
		return 0, err
	}

	q := s.db.WithContext(ctx).Where("date = ? AND kind = ?", in.Date, models.BonusKindBonus)
	if len(in.EmployeeIDs) > 0 {
		q = q.Where("employee_id IN ?", in.EmployeeIDs)
	}

	var removed []models.Bonus
	if err := q.Find(&removed).Error; err != nil {
		return 0, err
	}

	if len(removed) == 0 {
		return 0, nil
	}

	ids := make([]uint64, 0, len(removed))
	for _, b := range removed {
		ids = append(ids, b.ID)
	}

	result := s.db.WithContext(ctx).Delete(&models.Bonus{}, ids)
	if result.Error != nil {
		return 0, result.Error
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionBulkAction,
		Module:      audit.ModuleFinancial,
		EntityType:  "bonus",
		OldData:     removed,
		Description: fmt.Sprintf("%d bonuses removed on %s", result.RowsAffected, in.Date),
	}).Log()

	return result.RowsAffected, nil
}

// ListAdjustments returns bonuses and discounts dated within p.
func (s *Service) ListAdjustments(ctx context.Context, userID string, p Period) ([]models.Bonus, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialView); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	var out []models.Bonus

	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", p.Start, p.End).
		Order("date").Order("employee_id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
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
