// Package users serves the application user accounts.
package users

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the user routes.
const Path = "/users"

// Service is the user handler service.
type Service struct {
	svc *users.Service
}

// Handler is the user handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *users.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// List returns every user.
func (s *Service) List(c *fiber.Ctx) error {
	rows, err := s.svc.List(c.UserContext(), auth.UserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	row, err := s.svc.Get(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// Create adds a user with the default permissions.
func (s *Service) Create(c *fiber.Ctx) error {
	var in users.CreateInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Create(c.UserContext(), auth.UserID(c), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(row)
}

// Update edits a user.
func (s *Service) Update(c *fiber.Ctx) error {
	var in users.UpdateInput
	if err := handler.Bind(c, &in); err != nil {
		return handler.Error(c, err)
	}

	row, err := s.svc.Update(c.UserContext(), auth.UserID(c), c.Params("id"), in)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(row)
}

// Delete removes a user and its permissions.
func (s *Service) Delete(c *fiber.Ctx) error {
	if err := s.svc.Delete(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
