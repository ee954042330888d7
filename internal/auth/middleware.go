package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// LocalsUserID is the fiber.Locals key holding the id of the logged in user.
const LocalsUserID = "UserID"

// UserID returns the id of the logged in user, or "" when there is none.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUserID).(string)
	return id
}

// RequireAuthenticated answers 401 when no user is logged in.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(guard permission.Authorizer, perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		if err := guard.Require(c.UserContext(), userID, perm); err != nil {
			log.Warn().Str("user_id", userID).Str("permission", perm).Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error(), "permission": perm})
		}

		return c.Next()
	}
}

// RequireAny creates Fiber middleware that requires at least one of the given permissions.
// The denial names the first permission.
func RequireAny(guard permission.Authorizer, perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		for _, perm := range perms {
			if guard.Allowed(c.UserContext(), userID, perm) {
				return c.Next()
			}
		}

		log.Warn().Str("user_id", userID).Strs("permissions", perms).Msg("User lacks required permissions")

		denied := &permission.DeniedError{}
		if len(perms) > 0 {
			denied.Permission = perms[0]
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": denied.Error(), "permission": denied.Permission})
	}
}
