package login

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

const (
	// Path is the path of the login endpoint.
	Path = "/login"
)

// Form is the login request body.
type Form struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	provider *auth.LocalProvider
	audit    audit.Recorder
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app fiber.Router, cfg *config.Config, provider *auth.LocalProvider, rec audit.Recorder) error {
	if app == nil || cfg == nil || provider == nil || rec == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.provider = provider
	s.audit = rec

	app.Post(Path, s.Post)

	return nil
}

// Post checks the credentials, opens a session and sets the session cookie.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.ErrorResponse{Error: ErrInvalidFormData.Error()})
	}

	ctx := c.UserContext()

	user, err := s.provider.Authenticate(ctx, form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) && !errors.Is(err, auth.ErrUserAccountDisabled) {
			log.Error().Err(err).Msg("failed to authenticate")
			return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
		}

		log.Info().Str("username", form.Username).Err(err).Msg("login refused")

		return c.Status(fiber.StatusUnauthorized).JSON(handler.ErrorResponse{Error: ErrInvalidCredentials.Error()})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
	}

	userSession := &session.Data{UserID: user.ID, Username: user.Username}
	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).JSON(handler.ErrorResponse{Error: ErrInternalServerError.Error()})
	}

	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	s.audit.Log(ctx, audit.Entry{
		UserID:      user.ID,
		Action:      audit.ActionLogin,
		Module:      audit.ModuleAuth,
		EntityType:  "user",
		EntityID:    user.ID,
		Description: "User " + user.Username + " logged in",
	}).Log()

	return c.JSON(fiber.Map{"user": user})
}
