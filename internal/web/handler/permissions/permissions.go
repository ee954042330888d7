// Package permissions serves the permission schema, the presets and the
// per-user permission sets.
package permissions

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the permission routes.
const Path = "/permissions"

type (
	// SchemaModule is one module of the schema with its actions.
	SchemaModule struct {
		Module  permission.Module `json:"module"`
		Actions []string          `json:"actions"`
	}

	// PresetForm selects a preset by name.
	PresetForm struct {
		Preset string `json:"preset"`
	}
)

// Service is the permission handler service.
type Service struct {
	svc *users.Service
}

// Handler is the permission handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *users.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/schema", s.Schema)
		router.Get("/presets", s.Presets)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Set)
		router.Put("/:id/preset", s.ApplyPreset)
		router.Delete("/:id", s.Reset)
		router.Get("/:id/history", s.History)
	})

	return nil
}

// Schema lists every module and its actions in schema order.
func (s *Service) Schema(c *fiber.Ctx) error {
	modules := permission.Modules()
	out := make([]SchemaModule, 0, len(modules))

	for _, m := range modules {
		out = append(out, SchemaModule{Module: m, Actions: permission.ActionsOf(m)})
	}

	return c.JSON(out)
}

// Presets returns every preset by name.
func (s *Service) Presets(c *fiber.Ctx) error {
	out := make(map[string]permission.Set)

	for _, name := range permission.PresetNames() {
		set, err := permission.Preset(name)
		if err != nil {
			return handler.Error(c, err)
		}

		out[name] = set
	}

	return c.JSON(out)
}

// List returns every stored permission set.
func (s *Service) List(c *fiber.Ctx) error {
	rows, err := s.svc.ListPermissions(c.UserContext(), auth.UserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}

// Get returns the effective set of one user.
func (s *Service) Get(c *fiber.Ctx) error {
	set, err := s.svc.Permissions(c.UserContext(), auth.UserID(c), c.Params("id"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(set)
}

// Set replaces the set of one user.
func (s *Service) Set(c *fiber.Ctx) error {
	set, err := permission.Decode(c.Body())
	if err != nil {
		return handler.Error(c, fmt.Errorf("%w: %w", validation.ErrInvalidInput, err))
	}

	if err := s.svc.SetPermissions(c.UserContext(), auth.UserID(c), c.Params("id"), set); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ApplyPreset replaces the set of one user with a preset.
func (s *Service) ApplyPreset(c *fiber.Ctx) error {
	var form PresetForm
	if err := handler.Bind(c, &form); err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.ApplyPreset(c.UserContext(), auth.UserID(c), c.Params("id"), form.Preset); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Reset removes the stored set of one user, who then gets the defaults.
func (s *Service) Reset(c *fiber.Ctx) error {
	if err := s.svc.ResetPermissions(c.UserContext(), auth.UserID(c), c.Params("id")); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// History returns the permission changes of one user, newest first.
func (s *Service) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", users.DefaultHistoryLimit)

	rows, err := s.svc.History(c.UserContext(), auth.UserID(c), c.Params("id"), limit)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(rows)
}
