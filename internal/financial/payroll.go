package financial

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// PayrollLine is the pay of one employee for a period. Money is in centavos.
type PayrollLine struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	PixKey     string `json:"pixKey"`
	PixKeyType string `json:"pixKeyType"`
	FullDays   int    `json:"fullDays"`
	HalfDays   int    `json:"halfDays"`
	DailyRate  int64  `json:"dailyRate"`
	Gross      int64  `json:"gross"`
	Bonuses    int64  `json:"bonuses"`
	Discounts  int64  `json:"discounts"`
	Net        int64  `json:"net"`
}

// PayrollSummary computes the payroll of period p.
func (s *Service) PayrollSummary(ctx context.Context, userID string, p Period) ([]PayrollLine, error) {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialView); err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return Payroll(ctx, s.db, p)
}

// ExportPayroll writes the payroll of period p as CSV.
func (s *Service) ExportPayroll(ctx context.Context, userID string, p Period, w io.Writer) error {
	if err := s.guard.Require(ctx, userID, permission.PermFinancialExport); err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		return err
	}

	lines, err := Payroll(ctx, s.db, p)
	if err != nil {
		return err
	}

	return WritePayrollCSV(w, lines)
}

type attendanceCount struct {
	EmployeeID string
	Status     models.AttendanceStatus
	Total      int
}

type adjustmentSum struct {
	EmployeeID string
	Kind       models.BonusKind
	Total      int64
}

// Payroll computes one line per employee that is active or has attendance or
// adjustments in p: full days times the daily rate, half days at half rate,
// plus bonuses, minus discounts. Callers authorize the operation.
func Payroll(ctx context.Context, db *gorm.DB, p Period) ([]PayrollLine, error) {
	tx := db.WithContext(ctx)

	var employees []models.Employee
	if err := tx.Order("name").Find(&employees).Error; err != nil {
		return nil, err
	}

	var counts []attendanceCount

	err := tx.Model(&models.Attendance{}).
		Select("employee_id, status, COUNT(*) AS total").
		Where("date >= ? AND date <= ?", p.Start, p.End).
		Group("employee_id, status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	var sums []adjustmentSum

	err = tx.Model(&models.Bonus{}).
		Select("employee_id, kind, SUM(amount) AS total").
		Where("date >= ? AND date <= ?", p.Start, p.End).
		Group("employee_id, kind").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	lines := make(map[string]*PayrollLine, len(employees))
	for _, e := range employees {
		lines[e.ID] = &PayrollLine{
			EmployeeID: e.ID,
			Name:       e.Name,
			PixKey:     e.PixKey,
			PixKeyType: string(e.PixKeyType),
			DailyRate:  e.DailyRate,
		}
	}

	touched := make(map[string]bool)

	for _, c := range counts {
		l, ok := lines[c.EmployeeID]
		if !ok {
			continue
		}

		touched[c.EmployeeID] = true

		switch c.Status {
		case models.AttendancePresent:
			l.FullDays += c.Total
		case models.AttendanceHalf:
			l.HalfDays += c.Total
		case models.AttendanceAbsent, models.AttendanceOff:
		}
	}

	for _, sum := range sums {
		l, ok := lines[sum.EmployeeID]
		if !ok {
			continue
		}

		touched[sum.EmployeeID] = true

		if sum.Kind == models.BonusKindDiscount {
			l.Discounts += sum.Total
		} else {
			l.Bonuses += sum.Total
		}
	}

	out := make([]PayrollLine, 0, len(employees))

	for _, e := range employees {
		if !e.Active && !touched[e.ID] {
			continue
		}

		l := lines[e.ID]
		l.Gross = int64(l.FullDays)*l.DailyRate + int64(l.HalfDays)*l.DailyRate/2
		l.Net = l.Gross + l.Bonuses - l.Discounts
		out = append(out, *l)
	}

	return out, nil
}

// WritePayrollCSV serialises payroll lines as CSV with amounts in reais.
func WritePayrollCSV(w io.Writer, lines []PayrollLine) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"Employee", "Full Days", "Half Days", "Daily Rate", "Gross", "Bonuses", "Discounts", "Net",
	}); err != nil {
		return err
	}

	for _, l := range lines {
		if err := writer.Write([]string{
			l.Name,
			strconv.Itoa(l.FullDays),
			strconv.Itoa(l.HalfDays),
			FormatBRL(l.DailyRate),
			FormatBRL(l.Gross),
			FormatBRL(l.Bonuses),
			FormatBRL(l.Discounts),
			FormatBRL(l.Net),
		}); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// FormatBRL formats centavos as "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	reais := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, r := range reais {
		if i > 0 && (len(reais)-i)%3 == 0 {
			b.WriteByte('.')
		}

		b.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}
