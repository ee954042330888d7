// Package setting provides CRUD operations for managing application settings.
package setting

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Setting names used by the services.
const (
	KeyAuditLogEnabled     = "audit_log_enabled"
	KeyErrorNotifyCritical = "error_notify_critical"
	KeyDataRetention       = "data_retention"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to create/update a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting
	result := db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(ctx context.Context, db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	result := db.WithContext(ctx).Order("name").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Create creates a new setting in the database.
func Create(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	_, err := Get(ctx, db, name)
	if err == nil {
		return nil, ErrSettingAlreadyExists
	}
	if !errors.Is(err, ErrSettingNotFound) {
		return nil, err
	}

	setting := &models.Setting{
		Name:  name,
		Value: value,
	}

	if err := db.WithContext(ctx).Create(setting).Error; err != nil {
		return nil, err
	}

	return setting, nil
}

// Set creates or updates a setting by name (upsert operation).
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	setting, err := Get(ctx, db, name)
	if errors.Is(err, ErrSettingNotFound) {
		return Create(ctx, db, name, value)
	}
	if err != nil {
		return nil, err
	}

	setting.Value = value
	if err := db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}

	return setting, nil
}

// SetDefault stores value only when no setting with that name exists yet.
// It reports whether the value was written.
func SetDefault(ctx context.Context, db *gorm.DB, name string, value []byte) (bool, error) {
	_, err := Create(ctx, db, name, value)
	if errors.Is(err, ErrSettingAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// DeleteByName deletes a setting by name.
func DeleteByName(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}
	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// GetBool reads a boolean setting. Absent or unparsable values yield fallback.
// Storage errors other than not-found are returned together with fallback.
func GetBool(ctx context.Context, db *gorm.DB, name string, fallback bool) (bool, error) {
	s, err := Get(ctx, db, name)
	if errors.Is(err, ErrSettingNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	v, perr := strconv.ParseBool(string(s.Value))
	if perr != nil {
		return fallback, nil //nolint:nilerr // unparsable values fall back
	}

	return v, nil
}

// SetBool stores a boolean setting.
func SetBool(ctx context.Context, db *gorm.DB, name string, value bool) error {
	_, err := Set(ctx, db, name, []byte(strconv.FormatBool(value)))
	return err
}
