// Package auth provides local authentication and the fiber middleware that
// gates routes by permission.
//
// # Authentication
//
// LocalProvider checks a username and password against the users table.
// Passwords are stored as Argon2id hashes (see models.HashPassword).
// Disabled accounts cannot log in.
//
// # Route gating
//
// The web layer stores the id of the logged in user in fiber.Locals under
// LocalsUserID. RequirePermission, RequireAny and RequireAuthenticated read it
// and answer 401 or 403 before the handler runs. Domain services check the
// same permissions again through permission.Guard, so the middleware only
// spares a round trip for routes that have no service behind them.
//
// Example:
//
//	app.Get("/api/audit",
//	    auth.RequirePermission(guard, permission.PermReportsView),
//	    h.List,
//	)
package auth
