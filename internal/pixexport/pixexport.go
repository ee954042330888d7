// Package pixexport turns the payroll of a period into PIX payments and the
// batch file uploaded to the C6 bank.
package pixexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// Skip reasons reported by Generate.
const (
	ReasonNothingOwed = "nothing owed"
	ReasonNoPixKey    = "no pix key"
	ReasonLocked      = "payment already exported"
)

// Row is a payment joined with the employee data the bank needs.
type Row struct {
	models.Payment
	Name       string            `json:"name"`
	CPF        string            `json:"cpf"`
	PixKey     string            `json:"pixKey"`
	PixKeyType models.PixKeyType `json:"pixKeyType"`
}

// Skipped is a payroll line Generate did not turn into a payment.
type Skipped struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

// GenerateResult lists the pending payments written and the lines left out.
type GenerateResult struct {
	Payments []models.Payment `json:"payments"`
	Skipped  []Skipped        `json:"skipped"`
}

// Service serves the guarded PIX payment operations.
type Service struct {
	db    *gorm.DB
	guard permission.Authorizer
	audit audit.Recorder
}

// New creates a PIX export service.
func New(db *gorm.DB, guard permission.Authorizer, rec audit.Recorder) *Service {
	return &Service{db: db, guard: guard, audit: rec}
}

// Generate writes one pending payment per payroll line of p with a positive net
// amount and a PIX key. Payments already exported or paid are left untouched.
func (s *Service) Generate(ctx context.Context, userID string, p financial.Period) (*GenerateResult, error) {
	if err := s.guard.Require(ctx, userID, permission.PermC6PaymentGenerate); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	lines, err := financial.Payroll(ctx, s.db, p)
	if err != nil {
		return nil, err
	}

	existing, err := financial.PaymentsOf(ctx, s.db, p)
	if err != nil {
		return nil, err
	}

	locked := make(map[string]bool, len(existing))
	for _, pay := range existing {
		if pay.Status != models.PaymentPending {
			locked[pay.EmployeeID] = true
		}
	}

	result := &GenerateResult{Payments: []models.Payment{}, Skipped: []Skipped{}}

	for _, l := range lines {
		reason := ""

		switch {
		case locked[l.EmployeeID]:
			reason = ReasonLocked
		case l.Net <= 0:
			reason = ReasonNothingOwed
		case l.PixKey == "":
			reason = ReasonNoPixKey
		}

		if reason != "" {
			result.Skipped = append(result.Skipped, Skipped{EmployeeID: l.EmployeeID, Name: l.Name, Reason: reason})

			continue
		}

		pay, err := financial.UpsertPayment(ctx, s.db, models.Payment{
			EmployeeID:  l.EmployeeID,
			PeriodStart: p.Start,
			PeriodEnd:   p.End,
			Amount:      l.Net,
			Status:      models.PaymentPending,
		})
		if err != nil {
			return nil, err
		}

		result.Payments = append(result.Payments, *pay)
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCreate,
		Module:      audit.ModuleC6Payment,
		EntityType:  "payment",
		NewData:     result.Payments,
		Description: fmt.Sprintf("%d PIX payments generated for %s to %s", len(result.Payments), p.Start, p.End),
	}).Log()

	return result, nil
}

// List returns the payments of p with their PIX data.
func (s *Service) List(ctx context.Context, userID string, p financial.Period) ([]Row, error) {
	if err := s.guard.Require(ctx, userID, permission.PermC6PaymentView); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return s.rows(ctx, p, models.PaymentPending, models.PaymentExported, models.PaymentPaid)
}

// Export writes the bank batch file for the pending and exported payments of p
// and marks the pending ones exported. It returns the number of rows written.
func (s *Service) Export(ctx context.Context, userID string, p financial.Period, w io.Writer) (int, error) {
	if err := s.guard.Require(ctx, userID, permission.PermC6PaymentExport); err != nil {
		return 0, err
	}

	if err := p.Validate(); err != nil {
		return 0, err
	}

	rows, err := s.rows(ctx, p, models.PaymentPending, models.PaymentExported)
	if err != nil {
		return 0, err
	}

	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("period_start = ? AND period_end = ? AND status = ?", p.Start, p.End, models.PaymentPending).
		Update("status", models.PaymentExported).Error
	if err != nil {
		return 0, err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionExport,
		Module:      audit.ModuleC6Payment,
		EntityType:  "payment",
		Description: fmt.Sprintf("%d PIX payments exported for %s to %s", len(rows), p.Start, p.End),
	}).Log()

	return len(rows), nil
}

func (s *Service) rows(ctx context.Context, p financial.Period, statuses ...models.PaymentStatus) ([]Row, error) {
	var out []Row

	err := s.db.WithContext(ctx).
		Table("payments").
		Select("payments.*, employees.name, employees.cpf, employees.pix_key, employees.pix_key_type").
		Joins("JOIN employees ON employees.id = payments.employee_id").
		Where("payments.period_start = ? AND payments.period_end = ? AND payments.status IN ?", p.Start, p.End, statuses).
		Order("employees.name").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}

// WriteCSV writes the batch file: one line per payment with the amount in
// reais using a dot as decimal separator.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Name", "CPF", "Pix Key Type", "Pix Key", "Amount", "Description"}); err != nil {
		return err
	}

	for _, r := range rows {
		if err := writer.Write([]string{
			r.Name,
			r.CPF,
			string(r.PixKeyType),
			r.PixKey,
			Amount(r.Amount),
			"Pagamento " + r.PeriodStart + " a " + r.PeriodEnd,
		}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// Amount formats centavos as a plain decimal, e.g. 123456 as "1234.56".
func Amount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}
