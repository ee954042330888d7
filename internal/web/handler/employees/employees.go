// Package employees serves the employee registry API.
package employees

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/employee"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the employee routes.
const Path = "/employees"

// Service is the employee handler service.
type Service struct {
	svc *employee.Service
}

// Handler is the employee handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *employee.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/search", s.Search)
		router.Get("/export.csv", s.Export)
		router.Post("/import", s.Import)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// List returns the employees; ?active=true keeps active ones only.
func (s *Service) List(c *fiber.Ctx) error {
	rows, err := s.svc.List(c.UserContext(), auth.UserID(c), c.QueryBool("active", false))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Search finds employees by name or CPF prefix.
func (s *Service) Search(c *fiber.Ctx) error {
	rows, err := s.svc.Search(c.UserContext(), auth.UserID(c), c.Query("q"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Get returns one employee.
func (s *Service) Get(c *fiber.Ctx) error {
	row, err := s.svc.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// Create adds an employee.
func (s *Service) Create(c *fiber.Ctx) error {
	var in employee.Input
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Create(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(row)
}

// Update edits an employee.
func (s *Service) Update(c *fiber.Ctx) error {
	var in employee.Input
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Update(c.UserContext(), auth.UserID(c), c.Params("id"), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// Delete removes an employee.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Import upserts a list of employees and reports each failure.
func (s *Service) Import(c *fiber.Ctx) error {
	var items []employee.Input
	if err := handler.Bind(c, &items); err != nil {
		return handler.Error(c, err)
	}

	res, err := s.svc.Import(c.UserContext(), auth.UserID(c), items)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(res)
}

// Export downloads the registry as CSV.
func (s *Service) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.svc.Export(c.UserContext(), auth.UserID(c), &buf); err != nil {
		return handler.Error(c, err)
	}

	handler.Attachment(c, "employees.csv", handler.MIMECSV)

	return c.Send(buf.Bytes())
}
