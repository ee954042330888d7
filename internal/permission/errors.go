package permission

import "errors"

// SuperUserID is the reserved id of the super administrator. It is always
// fully authorized, never has a stored set and cannot be saved or deleted.
const SuperUserID = "00000000-0000-0000-0000-000000000000"

var (
	// ErrDenied matches every *DeniedError through errors.Is.
	ErrDenied = errors.New("permission denied")

	// ErrSuperUserImmutable is returned when saving or deleting the permissions of SuperUserID.
	ErrSuperUserImmutable = errors.New("super user permissions cannot be changed")

	// ErrEmptyUserID is returned when an operation needs a user id and got none.
	ErrEmptyUserID = errors.New("user id is empty")

	// ErrNilSet is returned when saving a nil set.
	ErrNilSet = errors.New("permission set is nil")
)

// DeniedError is returned by Guard.Require when the acting user lacks Permission.
type DeniedError struct {
	Permission string
}

// Error returns the user facing denial message.
func (e *DeniedError) Error() string {
	return "Você não tem permissão para: " + e.Permission
}

// Is makes errors.Is(err, ErrDenied) match.
func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// IsSuperUser reports whether userID is the reserved super user.
func IsSuperUser(userID string) bool {
	return userID == SuperUserID
}
