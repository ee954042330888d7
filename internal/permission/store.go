package permission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Record is one stored permission set.
type Record struct {
	UserID      string    `json:"userId"`
	Permissions Set       `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store persists one permission set per user.
type Store struct {
	db      *gorm.DB
	changes *ChangeLog
}

// NewStore creates a store over db with its change log.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		changes: NewChangeLog(db),
	}
}

// WithTx returns a store that reads and writes through tx, change log included.
func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{
		db:      tx,
		changes: NewChangeLog(tx),
	}
}

// ChangeLog returns the change log written by Save.
func (s *Store) ChangeLog() *ChangeLog {
	return s.changes
}

// Get returns the stored set of userID, or nil when there is none.
// Storage and decode errors are logged and also yield nil, so callers cannot
// tell "could not load" from "nothing stored".
func (s *Store) Get(ctx context.Context, userID string) Set {
	set, err := s.load(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load permissions")
		return nil
	}

	return set
}

func (s *Store) load(ctx context.Context, userID string) (Set, error) {
	row, err := s.row(ctx, userID)
	if err != nil || row == nil {
		return nil, err
	}

	return Decode(row.Permissions)
}

func (s *Store) row(ctx context.Context, userID string) (*models.UserPermission, error) {
	var row models.UserPermission

	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &row, nil
}

// Effective returns the set guards evaluate for userID: Full for the super
// user, otherwise the stored set completed by Merge.
func (s *Store) Effective(ctx context.Context, userID string) Set {
	if IsSuperUser(userID) {
		return Full()
	}

	return Merge(s.Get(ctx, userID))
}

// Save replaces the set of userID with next in a single upsert and then
// records the change. Keys outside the schema are not stored. Saving the
// super user fails with ErrSuperUserImmutable. A stored set that cannot be
// decoded is replaced and logged as created. A failed change log write is
// logged and does not fail the save.
func (s *Store) Save(ctx context.Context, userID string, next Set, actingUserID string) error {
	switch {
	case userID == "":
		return ErrEmptyUserID
	case IsSuperUser(userID):
		return ErrSuperUserImmutable
	case next == nil:
		return ErrNilSet
	}

	current, err := s.row(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load current permissions: %w", err)
	}

	var before Set
	if current != nil {
		if before, err = Decode(current.Permissions); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("replacing undecodable permissions")
			before = nil
		}
	}

	after := Prune(next)

	raw, err := Encode(after)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}

	row := models.UserPermission{
		UserID:      userID,
		Permissions: datatypes.JSON(raw),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save permissions: %w", err)
	}

	s.changes.Record(ctx, userID, actingUserID, before, after).Log()

	log.Info().Str("user_id", userID).Str("changed_by", actingUserID).Msg("permissions saved")

	return nil
}

// Delete removes the stored set of userID. Change log entries are kept.
// Deleting a user without a stored set is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	switch {
	case userID == "":
		return ErrEmptyUserID
	case IsSuperUser(userID):
		return ErrSuperUserImmutable
	}

	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserPermission{}).Error; err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}

	return nil
}

// ListAll returns every stored set, newest first by creation time.
// Storage errors are logged and yield an empty list.
func (s *Store) ListAll(ctx context.Context) []Record {
	var rows []models.UserPermission

	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		log.Error().Err(err).Msg("failed to list permissions")
		return []Record{}
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		set, err := Decode(row.Permissions)
		if err != nil {
			log.Warn().Err(err).Str("user_id", row.UserID).Msg("skipping undecodable permissions")
			continue
		}

		out = append(out, Record{
			UserID:      row.UserID,
			Permissions: set,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	return out
}
