// Package settings serves the application settings.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/retention"
	"github.com/PontoAdmin/ponto-admin/internal/settings"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
)

// Path is the base path of the settings routes.
const Path = "/settings"

// FlagForm is the body of a flag change.
type FlagForm struct {
	Enabled bool `json:"enabled"`
}

// Service is the settings handler service.
type Service struct {
	svc *settings.Service
}

// Handler is the settings handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, svc *settings.Service) error {
	if app == nil || svc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.svc = svc

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Put("/audit", s.SetAudit)
		router.Put("/notify-critical", s.SetNotifyCritical)
		router.Put("/retention", s.SetRetention)
	})

	return nil
}

// Get returns every setting.
func (s *Service) Get(c *fiber.Ctx) error {
	v, err := s.svc.Get(c.UserContext(), auth.UserID(c))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(v)
}

// SetAudit enables or disables the audit log.
func (s *Service) SetAudit(c *fiber.Ctx) error {
	var form FlagForm
	if err := handler.Bind(c, &form); err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.SetAuditEnabled(c.UserContext(), auth.UserID(c), form.Enabled); err != nil {
		return handler.Error(c, err)
	}

	return s.Get(c)
}

// SetNotifyCritical enables or disables critical error notifications.
func (s *Service) SetNotifyCritical(c *fiber.Ctx) error {
	var form FlagForm
	if err := handler.Bind(c, &form); err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.SetNotifyCritical(c.UserContext(), auth.UserID(c), form.Enabled); err != nil {
		return handler.Error(c, err)
	}

	return s.Get(c)
}

// SetRetention stores the data retention policy.
func (s *Service) SetRetention(c *fiber.Ctx) error {
	var p retention.Policy
	if err := handler.Bind(c, &p); err != nil {
		return handler.Error(c, err)
	}

	if err := s.svc.SetRetention(c.UserContext(), auth.UserID(c), p); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
