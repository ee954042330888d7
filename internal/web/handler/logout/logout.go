package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
	"github.com/PontoAdmin/ponto-admin/internal/web/session"
)

// Path is the path of the logout endpoint.
const Path = "/logout"

// Service is the logout handler service.
type Service struct {
	cfg   *config.Config
	audit audit.Recorder
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app fiber.Router, cfg *config.Config, rec audit.Recorder) error {
	if app == nil || cfg == nil || rec == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.audit = rec

	app.Post(Path, s.Logout)

	return nil
}

// Logout handles user logout by clearing the session.
func (s *Service) Logout(c *fiber.Ctx) error {
	if userID := auth.UserID(c); userID != "" {
		s.audit.Log(c.UserContext(), audit.Entry{
			UserID:      userID,
			Action:      audit.ActionLogout,
			Module:      audit.ModuleAuth,
			EntityType:  "user",
			EntityID:    userID,
			Description: "User logged out",
		}).Log()
	}

	if sessionID := c.Cookies(session.CookieName); sessionID != "" {
		if err := session.Delete(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to delete session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   !s.cfg.DevMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.SendStatus(fiber.StatusNoContent)
}
