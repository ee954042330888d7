package users

import (
	"context"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

// DefaultHistoryLimit bounds History when no limit is given.
const DefaultHistoryLimit = 50

// Permissions returns the effective set of account id.
func (s *Service) Permissions(ctx context.Context, userID, id string) (permission.Set, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersView); err != nil {
		return nil, err
	}

	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}

	return s.store.Effective(ctx, id), nil
}

// SetPermissions replaces the stored set of account id.
func (s *Service) SetPermissions(ctx context.Context, userID, id string, next permission.Set) error {
	if err := s.guard.Require(ctx, userID, permission.PermUsersManagePermissions); err != nil {
		return err
	}

	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	before := s.store.Get(ctx, id)
	after := permission.Prune(next)

	if err := s.store.Save(ctx, id, next, userID); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionUpdate,
		Module:      audit.ModulePermissions,
		EntityType:  "user_permissions",
		EntityID:    id,
		OldData:     before,
		NewData:     after,
		Description: permission.Summarize(before, after),
	}).Log()

	return nil
}

// ApplyPreset replaces the stored set of account id with a named preset.
func (s *Service) ApplyPreset(ctx context.Context, userID, id, preset string) error {
	if err := s.guard.Require(ctx, userID, permission.PermUsersManagePermissions); err != nil {
		return err
	}

	set, err := permission.Preset(preset)
	if err != nil {
		return err
	}

	return s.SetPermissions(ctx, userID, id, set)
}

// ResetPermissions deletes the stored set of account id, leaving it on the
// storage default.
func (s *Service) ResetPermissions(ctx context.Context, userID, id string) error {
	if err := s.guard.Require(ctx, userID, permission.PermUsersManagePermissions); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionDelete,
		Module:      audit.ModulePermissions,
		EntityType:  "user_permissions",
		EntityID:    id,
		Description: "Permissions reset",
	}).Log()

	return nil
}

// ListPermissions returns every stored set.
func (s *Service) ListPermissions(ctx context.Context, userID string) ([]permission.Record, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersManagePermissions); err != nil {
		return nil, err
	}

	return s.store.ListAll(ctx), nil
}

// History returns the permission changes of account id, newest first.
func (s *Service) History(ctx context.Context, userID, id string, limit int) ([]models.PermissionChangeLog, error) {
	if err := s.guard.Require(ctx, userID, permission.PermUsersManagePermissions); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return s.store.ChangeLog().History(ctx, id, limit)
}
