// Package attendance serves the attendance API.
package attendance

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the attendance routes.
const Path = "/attendance"

// StatusForm is the body of an attendance update.
type StatusForm struct {
	Status models.AttendanceStatus `json:"status"`
}

// Service is the attendance handler service.
type Service struct {
	svc *attendance.Service
}

// Handler is the attendance handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *attendance.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Mark)
		router.Post("/bulk", s.BulkMark)
		router.Post("/import", s.Import)
		router.Get("/export.csv", s.Export)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// List returns marks filtered by ?from=&to=&employeeId=.
func (s *Service) List(c *fiber.Ctx) error {
	var f attendance.Filters
	if err := handler.Query(c, &f); err != nil {
		return handler.Error(c, err)
	}

	rows, err := s.svc.List(c.UserContext(), auth.UserID(c), f)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Mark sets the status of one employee on one date.
func (s *Service) Mark(c *fiber.Ctx) error {
	var in attendance.MarkInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Mark(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// BulkMark sets the same status for many employees.
func (s *Service) BulkMark(c *fiber.Ctx) error {
	var in attendance.BulkInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.BulkMark(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// Import upserts a list of marks.
func (s *Service) Import(c *fiber.Ctx) error {
	var items []attendance.MarkInput
	if err := handler.Bind(c, &items); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.Import(c.UserContext(), auth.UserID(c), items)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// Update changes the status of a mark.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	var form StatusForm
	if err := handler.Bind(c, &form); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Update(c.UserContext(), auth.UserID(c), id, form.Status)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// Delete removes a mark.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.Delete(c.UserContext(), auth.UserID(c), id); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Export downloads the filtered marks as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	var f attendance.Filters
	if err := handler.Query(c, &f); err != nil {
		return handler.Error(c, err)
	}

	var buf bytes.Buffer
	if err := s.svc.Export(c.UserContext(), auth.UserID(c), f, &buf); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "attendance.csv", handler.MIMECSV)

	return c.Send(buf.Bytes())
}
