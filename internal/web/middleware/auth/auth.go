package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/web/session"
)

// Accounts looks up the account behind a session.
type Accounts interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// New returns a Fiber middleware that resolves the logged in user. A session
// whose account is gone or disabled is dropped and the request continues
// anonymous.
func New(accounts Accounts) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.SetUserContext(audit.WithUserAgent(c.UserContext(), c.Get(fiber.HeaderUserAgent)))

		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Next()
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil {
			log.Debug().Err(err).Msg("ignoring invalid session")
			return c.Next()
		}

		if sessData.UserID == "" {
			return c.Next()
		}

		user, err := accounts.GetUserByID(c.UserContext(), sessData.UserID)
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			log.Info().Str("user_id", sessData.UserID).Msg("dropping session of deleted account")
			drop(sessionID)

			return c.Next()
		case err != nil:
			log.Error().Err(err).Str("user_id", sessData.UserID).Msg("failed to load session account")
			return c.Next()
		case !user.Active:
			log.Info().Str("user_id", sessData.UserID).Msg("dropping session of disabled account")
			drop(sessionID)

			return c.Next()
		}

		c.Locals(auth.LocalsUserID, sessData.UserID)

		return c.Next()
	}
}

func drop(sessionID string) {
	if err := session.Delete(sessionID); err != nil {
		log.Warn().Err(err).Msg("failed to delete session")
	}
}
