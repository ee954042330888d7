package financial

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

// UpsertPayment sets the payment of an employee for a period. A missing status
// is stored as pending.
func (s *Service) UpsertPayment(ctx context.Context, userID string, in PaymentInput) (*models.Payment, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialEditPayment); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := in.Period.Validate(); err != nil {
		return nil, err
	}

	if err := s.requireEmployee(ctx, in.EmployeeID); err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = models.PaymentPending
	}

	return UpsertPayment(ctx, s.db, models.Payment{
		EmployeeID:  in.EmployeeID,
		PeriodStart: in.Period.Start,
		PeriodEnd:   in.Period.End,
		Amount:      in.Amount,
		Status:      in.Status,
	})
}

// UpsertPayment writes p keyed by (employee, period) and returns the stored row.
// Callers authorize the operation.
func UpsertPayment(ctx context.Context, db *gorm.DB, p models.Payment) (*models.Payment, error) {
	tx := db.WithContext(ctx)

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "period_start"}, {Name: "period_end"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, err
	}

	var stored models.Payment
	if err := tx.Where("employee_id = ? AND period_start = ? AND period_end = ?",
		p.EmployeeID, p.PeriodStart, p.PeriodEnd).First(&stored).Error; err != nil {
		return nil, err
	}

	return &stored, nil
}

// DeletePayment removes payment id.
func (s *Service) DeletePayment(ctx context.Context, userID string, id uint64) error {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialDeletePayment); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Payment{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearPayments removes every payment of period p and returns how many were removed.
func (s *Service) ClearPayments(ctx context.Context, userID string, p Period) (int64, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialClearPayments); err != nil {
		return 0, err
	}

	if err := p.Validate(); err != nil {
		return 0, err
	}

	result := s.db.WithContext(ctx).
		Where("period_start = ? AND period_end = ?", p.Start, p.End).
		Delete(&models.Payment{})

	return result.RowsAffected, result.Error
}

// GetPayment returns payment id.
func (s *Service) GetPayment(ctx context.Context, userID string, id uint64) (*models.Payment, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialView); err != nil {
		return nil, err
	}

	var p models.Payment

	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ListPayments returns the payments of period p.
func (s *Service) ListPayments(ctx context.Context, userID string, p Period) ([]models.Payment, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialView); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return PaymentsOf(ctx, s.db, p)
}

// PaymentsOf returns the payments of period p ordered by employee.
// Callers authorize the operation.
func PaymentsOf(ctx context.Context, db *gorm.DB, p Period) ([]models.Payment, error) {
	var out []models.Payment

	err := db.WithContext(ctx).
		Where("period_start = ? AND period_end = ?", p.Start, p.End).
		Order("employee_id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
