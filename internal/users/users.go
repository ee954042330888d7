// Package users manages back office accounts and their permission sets.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

var (
	// ErrNotFound is returned when no user has the given id.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameExists is returned when the username is taken.
	ErrUsernameExists = errors.New("username already exists")
	// ErrSelfDelete is returned when a user tries to delete their own account.
	ErrSelfDelete = errors.New("users cannot delete their own account")
)

// CreateInput holds the fields of a new account.
type CreateInput struct {
	Username string `json:"username" validate:"required,min=3,max=100,alphanumunicode"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UpdateInput holds the editable fields of an account. An empty Password
// keeps the current one.
type UpdateInput struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	FullName string `json:"fullName" validate:"max=200"`
	Active   bool   `json:"active"`
	Password string `json:"password" validate:"omitempty,min=8,max=128"`
}

// Service serves the guarded user operations.
type Service struct {
	db    *gorm.DB
	guard permission.Authorizer
	store *permission.Store
	audit audit.Recorder
}

// New creates a user service.
func New(db *gorm.DB, guard permission.Authorizer, store *permission.Store, rec audit.Recorder) *Service {
	return &Service{db: db, guard: guard, store: store, audit: rec}
}

// Create adds an account and stores the default permission set of new users.
// The account and its set are written in one transaction.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.User, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersCreate); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}

	if count > 0 {
		return nil, ErrUsernameExists
	}

	hashed, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Active:   true,
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: hashed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		return s.store.WithTx(tx).Save(ctx, user.ID, permission.NewUserDefault(), userID)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionCreate,
		Module:      audit.ModuleUsers,
		EntityType:  "user",
		EntityID:    user.ID,
		NewData:     user,
		Description: "User " + user.Username + " created",
	}).Log()

	return &user, nil
}

// Update edits account id.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.User, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersEdit); err != nil {
		return nil, err
	}

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if permission.IsSuperUser(id) && !in.Active {
		return nil, permission.ErrSuperUserImmutable
	}

	before, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"email":     in.Email,
		"full_name": in.FullName,
		"active":    in.Active,
	}

	if in.Password != "" {
		hashed, err := models.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		updates["password"] = hashed
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	after, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionUpdate,
		Module:      audit.ModuleUsers,
		EntityType:  "user",
		EntityID:    id,
		OldData:     before,
		NewData:     after,
		Description: "User " + after.Username + " updated",
	}).Log()

	return after, nil
}

// Delete removes account id together with its permission set in one
// transaction. Permission change history is kept. Sessions of the account
// stop resolving once the row is gone.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.guard.Require(ctx, userID, permission.PermUsersDelete); err != nil {
		return err
	}

	switch {
	case permission.IsSuperUser(id):
		return permission.ErrSuperUserImmutable
	case id == userID:
		return ErrSelfDelete
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return err
		}

		return s.store.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionDelete,
		Module:      audit.ModuleUsers,
		EntityType:  "user",
		EntityID:    id,
		OldData:     user,
		Description: "User " + user.Username + " deleted",
	}).Log()

	return nil
}

// Get returns account id.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.User, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersView); err != nil {
		return nil, err
	}

	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns every account ordered by username.
func (s *Service) List(ctx context.Context, userID string) ([]models.User, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersView); err != nil {
		return nil, err
	}

	var out []models.User
	if err := s.db.WithContext(ctx).Order("username").Find(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}
