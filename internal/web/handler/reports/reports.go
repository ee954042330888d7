// Package reports serves the audit log.
package reports

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the report routes.
const Path = "/reports"

// AuditQuery is the query string of the audit routes. Dates are inclusive days.
type AuditQuery struct {
	From       string `query:"from"`
	To         string `query:"to"`
	UserID     string `query:"userId"`
	Module     string `query:"module"`
	ActionType string `query:"actionType"`
	Limit      int    `query:"limit"`
}

// Filters converts q into audit filters.
func (q AuditQuery) Filters() (audit.Filters, error) {
	f := audit.Filters{
		UserID:     q.UserID,
		Module:     q.Module,
		ActionType: audit.ActionType(q.ActionType),
		Limit:      q.Limit,
	}

	if q.ActionType != "" && !audit.ValidActionType(f.ActionType) {
		return f, fmt.Errorf("%w: unknown action type %q", validation.ErrInvalidInput, q.ActionType)
	}

	if q.From != "" {
		t, err := time.ParseInLocation(validation.DateLayout, q.From, time.Local)
		if err != nil {
			return f, fmt.Errorf("%w: from: %w", validation.ErrInvalidInput, err)
		}

		f.StartDate = t
	}

	if q.To != "" {
		t, err := time.ParseInLocation(validation.DateLayout, q.To, time.Local)
		if err != nil {
			return f, fmt.Errorf("%w: to: %w", validation.ErrInvalidInput, err)
		}

		f.EndDate = t.Add(24*time.Hour - time.Nanosecond)
	}

	return f, nil
}

// Service is the report handler service.
type Service struct {
	audit *audit.Service
}

// Handler is the report handler.
var Handler = Service{}

// Init registers the routes on app. The audit query itself is not guarded,
// so every route carries its permission.
func (s *Service) Init(app fiber.Router, guard permission.Authorizer, svc *audit.Service) error {
	if app == nil || guard == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.audit = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get("/audit", auth.RequirePermission(guard, permission.PermReportsView), s.Audit)
		router.Get("/audit/export.csv", auth.RequirePermission(guard, permission.PermReportsExport), s.Export)
	})

	return nil
}

func (s *Service) query(c *fiber.Ctx) (audit.Filters, error) {
	var q AuditQuery
	if err := handler.Query(c, &q); err != nil {
		return audit.Filters{}, err
	}

	return q.Filters()
}

// Audit returns the matching audit entries, newest first.
func (s *Service) Audit(c *fiber.Ctx) error {
	f, err := s.query(c)
	if err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.audit.Query(c.UserContext(), f)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Export downloads the matching audit entries as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	f, err := s.query(c)
	if err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.audit.Query(c.UserContext(), f)
	if err != nil {
		return handler.Error(c, err)
	}

	var buf bytes.Buffer
	if err := audit.WriteCSV(&buf, rows); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "audit.csv", handler.MIMECSV)

	return c.Send(buf.Bytes())
}
