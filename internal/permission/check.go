package permission

// HasPermission reports whether set grants permission. It never panics:
// a nil set, a malformed permission string, an unknown module and an unknown
// action all deny. The super user is not special-cased here; see Guard.
func HasPermission(set Set, permission string) bool {
	if set == nil {
		return false
	}

	m, action, ok := Parse(permission)
	if !ok {
		return false
	}

	actions, ok := set[m]
	if !ok {
		return false
	}

	return actions[action]
}

// HasAny reports whether set grants at least one of permissions.
func HasAny(set Set, permissions ...string) bool {
	for _, p := range permissions {
		if HasPermission(set, p) {
			return true
		}
	}

	return false
}

// HasAll reports whether set grants every one of permissions.
// An empty list is granted.
func HasAll(set Set, permissions ...string) bool {
	for _, p := range permissions {
		if !HasPermission(set, p) {
			return false
		}
	}

	return true
}
