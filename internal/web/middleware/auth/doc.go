// Package auth provides the session middleware of the web application.
//
// The middleware reads the session cookie and, when it names a live session
// of an existing, active account, stores the user id in fiber.Locals under
// auth.LocalsUserID. Sessions of deleted or disabled accounts are deleted.
// It never rejects a request: routes that need a user are wrapped with
// auth.RequireAuthenticated or auth.RequirePermission from internal/auth.
// It also attaches the request's user agent to the user context so the
// activity log can record it.
//
// Usage:
//
//	app.Use(authmiddleware.New(provider))
package auth
