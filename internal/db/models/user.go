package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User represents a back office account.
// Its permissions live in UserPermission, one row per user.
type User struct {
	// ID is the user id (uuid string), the identity every permission check is keyed by.
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Active indicates whether the account can log in.
	Active bool `json:"active"`
	// Username is the unique login name.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null" json:"email"`
	// Password is the Argon2id hash of the password.
	Password string `gorm:"size:255" json:"-"`
	// FullName is the display name.
	FullName string `gorm:"size:200" json:"fullName"`
	// CreatedAt is managed by GORM.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is managed by GORM.
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword verifies a plaintext password against the user's stored hash.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}
