// Package permission implements the closed permission model of the back office.
//
// A permission set holds one boolean flag per (module, action) pair of a fixed
// schema. Permissions are addressed by "<module>.<action>" strings such as
// "employees.create".
//
// # Evaluation
//
// HasPermission is a pure and total check: malformed strings, unknown modules,
// unknown actions and nil sets all deny. Merge turns whatever was stored for a
// user (possibly nothing) into a complete set by overlaying it on the
// Supervisor preset.
//
// # Enforcement
//
// Guard.Require is called by every mutating domain operation before it touches
// storage. It bypasses the store for SuperUserID and otherwise evaluates the
// user's effective set, returning a *DeniedError naming the missing permission.
// Guard.Allowed is the silent variant used to hide UI entries.
//
// # Persistence
//
// Store keeps one JSON document per user. Every successful Save appends a
// ChangeLog entry with both snapshots and a readable summary of the flipped
// flags; a failed change log write never fails the save.
//
// Example usage:
//
//	store := permission.NewStore(db)
//	guard := permission.NewGuard(store)
//
//	if err := guard.Require(ctx, userID, permission.PermEmployeesCreate); err != nil {
//	    return err
//	}
package permission
