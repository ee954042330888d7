package permission

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Resolver yields the effective permission set of a user.
type Resolver interface {
	Effective(ctx context.Context, userID string) Set
}

// Guard authorizes domain operations.
type Guard struct {
	resolver Resolver
}

// NewGuard creates a guard resolving sets through r.
func NewGuard(r Resolver) *Guard {
	return &Guard{resolver: r}
}

// Require returns nil when userID may perform permission and a *DeniedError
// otherwise. The super user is allowed without consulting the resolver. An
// empty user id is denied.
func (g *Guard) Require(ctx context.Context, userID, permission string) error {
	if g.Allowed(ctx, userID, permission) {
		return nil
	}

	deniedCounter().WithLabelValues(permission).Inc()
	log.Debug().Str("user_id", userID).Str("permission", permission).Msg("permission denied")

	return &DeniedError{Permission: permission}
}

// Allowed reports whether userID may perform permission, without side effects.
// Use it to hide UI entries.
func (g *Guard) Allowed(ctx context.Context, userID, permission string) bool {
	if IsSuperUser(userID) {
		return true
	}

	if userID == "" {
		return false
	}

	return HasPermission(g.resolver.Effective(ctx, userID), permission)
}

// Effective returns the set of userID as the guard sees it.
func (g *Guard) Effective(ctx context.Context, userID string) Set {
	if IsSuperUser(userID) {
		return Full()
	}

	if userID == "" {
		return nil
	}

	return g.resolver.Effective(ctx, userID)
}

// Authorizer is the part of Guard domain services depend on.
type Authorizer interface {
	Require(ctx context.Context, userID, permission string) error
	Allowed(ctx context.Context, userID, permission string) bool
}
