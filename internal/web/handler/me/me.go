// Package me serves what the logged in user needs about themself: profile,
// effective permissions, menu and password change.
package me

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
	"github.com/PontoAdmin/ponto-admin/internal/web/navigation"
)

// Path is the base path of the routes.
const Path = "/me"

type (
	// Profile is the answer of GET /me.
	Profile struct {
		User        *models.User   `json:"user"`
		SuperUser   bool           `json:"superUser"`
		Permissions permission.Set `json:"permissions"`
		Granted     []string       `json:"granted"`
	}

	// PasswordForm is the body of a password change.
	PasswordForm struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
)

// Service is the handler service.
type Service struct {
	guard    *permission.Guard
	provider *auth.LocalProvider
}

// Handler is the handler.
var Handler = Service{}

// Init registers the routes on app.
func (s *Service) Init(app fiber.Router, guard *permission.Guard, provider *auth.LocalProvider) error {
	if app == nil || guard == nil || provider == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.guard = guard
	s.provider = provider

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Get("/navigation", s.Navigation)
		router.Put("/password", s.ChangePassword)
	})

	return nil
}

// Get returns the user and the flags guards evaluate for them.
func (s *Service) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := auth.UserID(c)

	user, err := s.provider.GetUserByID(ctx, userID)
	if err != nil {
		return handler.Error(c, err)
	}

	set := s.guard.Effective(ctx, userID)

	granted := make([]string, 0)
	for _, p := range permission.All() {
		if permission.HasPermission(set, p) {
			granted = append(granted, p)
		}
	}

	return c.JSON(Profile{
		User:        user,
		SuperUser:   permission.IsSuperUser(userID),
		Permissions: set,
		Granted:     granted,
	})
}

// Navigation returns the menu entries the user may open.
func (s *Service) Navigation(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := auth.UserID(c)

	return c.JSON(navigation.For(func(p string) bool {
		return s.guard.Allowed(ctx, userID, p)
	}))
}

// ChangePassword replaces the password after checking the old one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	var form PasswordForm
	if err := handler.Bind(c, &form); err != nil {
		return handler.Error(c, err)
	}

	if err := s.provider.ChangePassword(c.UserContext(), auth.UserID(c), form.OldPassword, form.NewPassword); err != nil {
		return handler.Error(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
