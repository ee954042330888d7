// Package attendance records the daily attendance marks of employees.
package attendance

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PontoAdmin/ponto-admin/internal/bulk"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

var (
	// ErrNotFound is returned when no attendance mark has the given id.
	ErrNotFound = errors.New("attendance record not found")
	// ErrUnknownEmployee is returned when marking an employee that does not exist.
	ErrUnknownEmployee = errors.New("employee does not exist")
)

// MarkInput marks one employee on one date.
type MarkInput struct {
	EmployeeID string                  `json:"employeeId" validate:"required,uuid"`
	Date       string                  `json:"date"       validate:"required,date"`
	Status     models.AttendanceStatus `json:"status"     validate:"required,oneof=present absent half off"`
}

// BulkInput marks many employees with the same status on one date.
type BulkInput struct {
	EmployeeIDs []string                `json:"employeeIds" validate:"required,min=1,dive,required"`
	Date        string                  `json:"date"        validate:"required,date"`
	Status      models.AttendanceStatus `json:"status"      validate:"required,oneof=present absent half off"`
}

// Filters narrows List. Dates are inclusive; zero values are ignored.
type Filters struct {
	From       string `query:"from"       validate:"omitempty,date"`
	To         string `query:"to"         validate:"omitempty,date"`
	EmployeeID string `query:"employeeId"`
}

// Service serves the guarded attendance operations.
type Service struct {
	db          *gorm.DB
	guard       permission.Authorizer
	concurrency int
}

// New creates an attendance service. concurrency bounds the bulk operations.
func New(db *gorm.DB, guard permission.Authorizer, concurrency int) *Service {
	return &Service{db: db, guard: guard, concurrency: concurrency}
}

// Mark sets the status of an employee on a date, replacing an earlier mark.
func (s *Service) Mark(ctx context.Context, userID string, in MarkInput) (*models.Attendance, error) {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceMark); err != nil {
		return nil, err
	}

	return s.mark(ctx, userID, in)
}

func (s *Service) mark(ctx context.Context, userID string, in MarkInput) (*models.Attendance, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.requireEmployee(ctx, in.EmployeeID); err != nil {
		return nil, err
	}

	row := models.Attendance{
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Status:     in.Status,
		MarkedBy:   userID,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored models.Attendance
	if err := s.db.WithContext(ctx).
		Where("employee_id = ? AND date = ?", in.EmployeeID, in.Date).
		First(&stored).Error; err != nil {
		return nil, err
	}

	return &stored, nil
}

// Update changes the status of mark id.
func (s *Service) Update(ctx context.Context, userID string, id uint64, status models.AttendanceStatus) (*models.Attendance, error) {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceEdit); err != nil {
		return nil, err
	}

	if err := validation.Var(string(status), "required,oneof=present absent half off"); err != nil {
		return nil, err
	}

	var row models.Attendance

	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	row.Status = status
	row.MarkedBy = userID

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

// Delete removes mark id.
func (s *Service) Delete(ctx context.Context, userID string, id uint64) error {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceDelete); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&models.Attendance{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// BulkMark marks every employee of in. Each employee succeeds or fails on its own.
func (s *Service) BulkMark(ctx context.Context, userID string, in BulkInput) (bulk.Result, error) {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceBulkMark); err != nil {
		return bulk.Result{}, err
	}

	if err := validation.Struct(in); err != nil {
		return bulk.Result{}, err
	}

	return bulk.Run(ctx, s.concurrency, in.EmployeeIDs,
		func(id string) string { return id },
		func(ctx context.Context, id string) error {
			_, err := s.mark(ctx, userID, MarkInput{EmployeeID: id, Date: in.Date, Status: in.Status})
			return err
		}), nil
}

// Import marks every item. Items are keyed "<employee id>@<date>" in the result.
func (s *Service) Import(ctx context.Context, userID string, items []MarkInput) (bulk.Result, error) {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceImport); err != nil {
		return bulk.Result{}, err
	}

	return bulk.Run(ctx, s.concurrency, items,
		func(in MarkInput) string { return in.EmployeeID + "@" + in.Date },
		func(ctx context.Context, in MarkInput) error {
			_, err := s.mark(ctx, userID, in)
			return err
		}), nil
}

// List returns marks ordered by date then employee.
func (s *Service) List(ctx context.Context, userID string, f Filters) ([]models.Attendance, error) {
	if err := s.guard.Require(ctx, userID, permission.PermAttendanceView); err != nil {
		return nil, err
	}

	return s.find(ctx, f)
}

func (s *Service) find(ctx context.Context, f Filters) ([]models.Attendance, error) {
	if err := validation.Struct(f); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.Attendance{})

	if f.From != "" {
		q = q.Where("date >= ?", f.From)
	}

	if f.To != "" {
		q = q.Where("date <= ?", f.To)
	}

	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}

	var out []models.Attendance
	if err := q.Order("date").Order("employee_id").Find(&out).Error; err != nil {
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

// DeleteBefore removes marks dated before cutoff (YYYY-MM-DD) and returns how
// many were removed. Callers authorize the operation.
func DeleteBefore(ctx context.Context, db *gorm.DB, cutoff string) (int64, error) {
	result := db.WithContext(ctx).Where("date < ?", cutoff).Delete(&models.Attendance{})
	return result.RowsAffected, result.Error
}
