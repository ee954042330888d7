// Package financial serves adjustments, payments and the payroll summary.
package financial

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the financial routes.
const Path = "/financial"

// Service is the financial handler service.
type Service struct {
	svc *financial.Service
}

// Handler is the financial handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *financial.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get("/adjustments", s.ListAdjustments)
		router.Post("/bonuses", s.ApplyBonus)
		router.Post("/bonuses/remove-bulk", s.RemoveBulkBonus)
		router.Delete("/bonuses/:id", s.RemoveBonus)
		router.Post("/discounts", s.ApplyDiscount)
		router.Post("/discounts/bulk", s.ApplyBulkDiscount)

		router.Get("/payments", s.ListPayments)
		router.Put("/payments", s.UpsertPayment)
		router.Delete("/payments", s.ClearPayments)
		router.Get("/payments/:id", s.GetPayment)
		router.Delete("/payments/:id", s.DeletePayment)

		router.Get("/payroll", s.Payroll)
		router.Get("/payroll/export.csv", s.ExportPayroll)
	})

	return nil
}

func period(c *fiber.Ctx) (financial.Period, error) {
	var p financial.Period
	err := handler.Query(c, &p)

	return p, err
}

// ListAdjustments returns the bonuses and discounts of ?periodStart=&periodEnd=.
func (s *Service) ListAdjustments(c *fiber.Ctx) error {
	p, err := period(c)
	if err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.svc.ListAdjustments(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// ApplyBonus records a bonus.
func (s *Service) ApplyBonus(c *fiber.Ctx) error {
	var in financial.AdjustmentInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.ApplyBonus(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(row)
}

// ApplyDiscount records a discount.
func (s *Service) ApplyDiscount(c *fiber.Ctx) error {
	var in financial.AdjustmentInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.ApplyDiscount(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(row)
}

// ApplyBulkDiscount records the same discount for many employees.
func (s *Service) ApplyBulkDiscount(c *fiber.Ctx) error {
	var in financial.BulkAdjustmentInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.ApplyBulkDiscount(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// RemoveBonus deletes one adjustment.
func (s *Service) RemoveBonus(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.RemoveBonus(c.UserContext(), auth.UserID(c), id); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveBulkBonus deletes the bonuses of one date.
func (s *Service) RemoveBulkBonus(c *fiber.Ctx) error {
	var in financial.BulkRemoveInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	n, err := s.svc.RemoveBulkBonus(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"removed": n})
}

// ListPayments returns the payments of a period.
func (s *Service) ListPayments(c *fiber.Ctx) error {
	p, err := period(c)
	if err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.svc.ListPayments(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// UpsertPayment sets the amount owed to an employee for a period.
func (s *Service) UpsertPayment(c *fiber.Ctx) error {
	var in financial.PaymentInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.UpsertPayment(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// GetPayment returns one payment.
func (s *Service) GetPayment(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.GetPayment(c.UserContext(), auth.UserID(c), id)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// DeletePayment removes one payment.
func (s *Service) DeletePayment(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.DeletePayment(c.UserContext(), auth.UserID(c), id); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ClearPayments removes every payment of a period.
func (s *Service) ClearPayments(c *fiber.Ctx) error {
	p, err := period(c)
	if err != nil {
		return handler.Error(c, err)
	}

	n, err := s.svc.ClearPayments(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(fiber.Map{"removed": n})
}

// Payroll returns the per-employee summary of a period.
func (s *Service) Payroll(c *fiber.Ctx) error {
	p, err := period(c)
	if err != nil {
		return handler.Error(c, err)
	}

	lines, err := s.svc.PayrollSummary(c.UserContext(), auth.UserID(c), p)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(lines)
}

// ExportPayroll downloads the payroll summary as CSV.
func (s *Service) ExportPayroll(c *fiber.Ctx) error {
	p, err := period(c)
	if err != nil {
		return handler.Error(c, err)
	}

	var buf bytes.Buffer
	if err := s.svc.ExportPayroll(c.UserContext(), auth.UserID(c), p, &buf); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "payroll_"+p.Start+"_"+p.End+".csv", handler.MIMECSV)

	return c.Send(buf.Bytes())
}
