package permission

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// AccountResolver resolves sets through a Store for existing, active
// accounts only. Unknown and disabled accounts resolve to nil and are denied
// everything.
type AccountResolver struct {
	db    *gorm.DB
	store *Store
}

// NewAccountResolver creates a resolver checking accounts in db.
func NewAccountResolver(db *gorm.DB, store *Store) *AccountResolver {
	return &AccountResolver{db: db, store: store}
}

// Effective returns Full for the super user, nil for a missing or inactive
// account and the stored set completed by Merge otherwise.
func (r *AccountResolver) Effective(ctx context.Context, userID string) Set {
	if IsSuperUser(userID) {
		return Full()
	}

	var user models.User

	err := r.db.WithContext(ctx).Select("id", "active").Where("id = ?", userID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Debug().Str("user_id", userID).Msg("no account for permission check")
		return nil
	case err != nil:
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load account")
		return nil
	case !user.Active:
		return nil
	}

	return r.store.Effective(ctx, userID)
}
