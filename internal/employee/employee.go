// Package employee manages the employee registry.
package employee

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/bulk"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

var (
	// ErrNotFound is returned when no employee has the given id.
	ErrNotFound = errors.New("employee not found")
	// ErrDuplicateCPF is returned when another employee already uses the CPF.
	ErrDuplicateCPF = errors.New("an employee with this CPF already exists")
)

// Input is the editable part of an employee.
type Input struct {
	Name       string            `json:"name"       validate:"required,max=200"`
	CPF        string            `json:"cpf"        validate:"required,cpf"`
	Position   string            `json:"position"   validate:"max=100"`
	PixKey     string            `json:"pixKey"     validate:"required_with=PixKeyType,max=140"`
	PixKeyType models.PixKeyType `json:"pixKeyType" validate:"required_with=PixKey,omitempty,oneof=cpf email phone random"`
	DailyRate  int64             `json:"dailyRate"  validate:"gte=0"`
	Active     *bool             `json:"active"`
}

func (in Input) apply(e *models.Employee) {
	e.Name = strings.TrimSpace(in.Name)
	e.CPF = in.CPF
	e.Position = strings.TrimSpace(in.Position)
	e.PixKey = strings.TrimSpace(in.PixKey)
	e.PixKeyType = in.PixKeyType
	e.DailyRate = in.DailyRate

	if in.Active != nil {
		e.Active = *in.Active
	}
}

// Service serves the guarded employee operations.
type Service struct {
	db          *gorm.DB
	guard       permission.Authorizer
	concurrency int
}

// New creates an employee service. concurrency bounds Import.
func New(db *gorm.DB, guard permission.Authorizer, concurrency int) *Service {
	return &Service{db: db, guard: guard, concurrency: concurrency}
}

// Create registers a new active employee.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.Employee, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesCreate); err != nil {
		return nil, err
	}

	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in Input) (*models.Employee, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.checkCPF(ctx, in.CPF, ""); err != nil {
		return nil, err
	}

	e := &models.Employee{ID: uuid.NewString(), Active: true}
	in.apply(e)

	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}

	return e, nil
}

// Update replaces the editable fields of employee id.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*models.Employee, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesEdit); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkCPF(ctx, in.CPF, id); err != nil {
		return nil, err
	}

	in.apply(e)

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}

	return e, nil
}

// Delete removes employee id.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesDelete); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Employee{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Get returns employee id.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Employee, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesView); err != nil {
		return nil, err
	}

	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &e, nil
}

// List returns employees ordered by name.
func (s *Service) List(ctx context.Context, userID string, activeOnly bool) ([]models.Employee, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesView); err != nil {
		return nil, err
	}

	return s.list(ctx, activeOnly)
}

func (s *Service) list(ctx context.Context, activeOnly bool) ([]models.Employee, error) {
	q := s.db.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var out []models.Employee
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// Search matches query against name (case insensitive substring) and CPF (prefix).
func (s *Service) Search(ctx context.Context, userID, query string) ([]models.Employee, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesSearch); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Employee{}, nil
	}

	var out []models.Employee

	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR cpf LIKE ?", "%"+strings.ToLower(query)+"%", query+"%").
		Order("name").
		Limit(50).
		Find(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Import creates or updates (matched by CPF) every input. Items fail
// individually; the result counts both outcomes keyed by CPF.
func (s *Service) Import(ctx context.Context, userID string, items []Input) (bulk.Result, error) {
	if err := s.guard.Require(ctx, userID, permission.PermEmployeesImport); err != nil {
		return bulk.Result{}, err
	}

	res := bulk.Run(ctx, s.concurrency, items,
		func(in Input) string { return in.CPF },
		func(ctx context.Context, in Input) error {
			return s.importOne(ctx, in)
		})

	return res, nil
}

func (s *Service) importOne(ctx context.Context, in Input) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	var existing models.Employee

	err := s.db.WithContext(ctx).Where("cpf = ?", in.CPF).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_, err = s.create(ctx, in)
		return err
	}

	if err != nil {
		return err
	}

	in.apply(&existing)

	return s.db.WithContext(ctx).Save(&existing).Error
}

// checkCPF fails when an employee other than exceptID uses cpf.
func (s *Service) checkCPF(ctx context.Context, cpf, exceptID string) error {
	var count int64

	q := s.db.WithContext(ctx).Model(&models.Employee{}).Where("cpf = ?", cpf)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrDuplicateCPF
	}

	return nil
}
