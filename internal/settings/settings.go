// Package settings serves the guarded application settings.
package settings

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/retention"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

// Refresher re-reads cached settings. The audit service and the error tracker implement it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Values is the current state of every setting.
type Values struct {
	AuditLogEnabled bool             `json:"auditLogEnabled"`
	NotifyCritical  bool             `json:"notifyCritical"`
	Retention       retention.Policy `json:"retention"`
}

// Options holds the values used while a setting was never saved.
type Options struct {
	AuditFallback  bool
	NotifyFallback bool
	RetentionDays  int
}

// Service serves the guarded settings operations.
type Service struct {
	db        *gorm.DB
	guard     permission.Authorizer
	audit     audit.Recorder
	opts      Options
	refreshed []Refresher
}

// New creates a settings service. Every refresher is refreshed after a flag changes.
func New(db *gorm.DB, guard permission.Authorizer, rec audit.Recorder, opts Options, refreshers ...Refresher) *Service {
	return &Service{db: db, guard: guard, audit: rec, opts: opts, refreshed: refreshers}
}

// Get returns the current settings.
func (s *Service) Get(ctx context.Context, userID string) (*Values, error) {
	if err := s.guard.Require(ctx, userID, permission.PermSettingsView); err != nil {
		return nil, err
	}

	var (
		v   Values
		err error
	)

	if v.AuditLogEnabled, err = setting.GetBool(ctx, s.db, setting.KeyAuditLogEnabled, s.opts.AuditFallback); err != nil {
		return nil, err
	}

	if v.NotifyCritical, err = setting.GetBool(ctx, s.db, setting.KeyErrorNotifyCritical, s.opts.NotifyFallback); err != nil {
		return nil, err
	}

	if v.Retention, err = retention.LoadOrDefault(ctx, s.db, s.opts.RetentionDays); err != nil {
		return nil, err
	}

	return &v, nil
}

// SetAuditEnabled turns the activity log on or off.
func (s *Service) SetAuditEnabled(ctx context.Context, userID string, enabled bool) error {
	return s.setFlag(ctx, userID, setting.KeyAuditLogEnabled, enabled)
}

// SetNotifyCritical turns notification of critical errors on or off.
func (s *Service) SetNotifyCritical(ctx context.Context, userID string, enabled bool) error {
	return s.setFlag(ctx, userID, setting.KeyErrorNotifyCritical, enabled)
}

func (s *Service) setFlag(ctx context.Context, userID, name string, value bool) error {
	if err := s.guard.Require(ctx, userID, permission.PermSettingsEdit); err != nil {
		return err
	}

	if err := setting.SetBool(ctx, s.db, name, value); err != nil {
		return err
	}

	s.refresh(ctx)

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionUpdate,
		Module:      audit.ModuleSettings,
		EntityType:  "setting",
		EntityID:    name,
		NewData:     map[string]bool{name: value},
		Description: fmt.Sprintf("Setting %s set to %t", name, value),
	}).Log()

	return nil
}

// SetRetention stores the data retention policy.
func (s *Service) SetRetention(ctx context.Context, userID string, p retention.Policy) error {
	if err := s.guard.Require(ctx, userID, permission.PermSettingsRetention); err != nil {
		return err
	}

	if err := validation.Struct(p); err != nil {
		return err
	}

	if err := p.Save(ctx, s.db); err != nil {
		return err
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:      userID,
		Action:      audit.ActionUpdate,
		Module:      audit.ModuleSettings,
		EntityType:  "setting",
		EntityID:    setting.KeyDataRetention,
		NewData:     p,
		Description: fmt.Sprintf("Retention set to %d days", p.Days),
	}).Log()

	return nil
}

func (s *Service) refresh(ctx context.Context) {
	for _, r := range s.refreshed {
		if err := r.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to refresh cached settings")
		}
	}
}
