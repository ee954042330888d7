// Package datamanagement serves retention cleanup and full data backups.
package datamanagement

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/retention"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/errortrack"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

// Stats counts the rows of every table.
type Stats struct {
	Users            int64 `json:"users"`
	Employees        int64 `json:"employees"`
	Attendance       int64 `json:"attendance"`
	Bonuses          int64 `json:"bonuses"`
	Payments         int64 `json:"payments"`
	AuditLogs        int64 `json:"auditLogs"`
	ErrorLogs        int64 `json:"errorLogs"`
	PermissionChange int64 `json:"permissionChanges"`
}

// CleanupResult reports what Cleanup removed.
type CleanupResult struct {
	Cutoff         string `json:"cutoff"`
	Attendance     int64  `json:"attendance"`
	ResolvedErrors int64  `json:"resolvedErrors"`
}

// Service serves the guarded data management operations.
type Service struct {
	db            *gorm.DB
	guard         permission.Authorizer
	audit         audit.Recorder
	retentionDays int
	concurrency   int
	now           func() time.Time
}

// New creates a data management service. retentionDays is used while no
// retention policy was saved and concurrency bounds the import.
func New(db *gorm.DB, guard permission.Authorizer, rec audit.Recorder, retentionDays, concurrency int) *Service {
	return &Service{
		db:            db,
		guard:         guard,
		audit:         rec,
		retentionDays: retentionDays,
		concurrency:   concurrency,
		now:           time.Now,
	}
}

// Stats returns the row count of every table.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	if err := s.guard.Require(ctx, userID, permission.PermDataManagementView); err != nil {
		return nil, err
	}

	var st Stats

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &st.Users},
		{&models.Employee{}, &st.Employees},
		{&models.Attendance{}, &st.Attendance},
		{&models.Bonus{}, &st.Bonuses},
		{&models.Payment{}, &st.Payments},
		{&models.AuditLog{}, &st.AuditLogs},
		{&models.ErrorLog{}, &st.ErrorLogs},
		{&models.PermissionChangeLog{}, &st.PermissionChange},
	}

	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	return &st, nil
}

// Cleanup removes attendance rows and resolved errors older than the retention
// policy allows. The activity log and permission history are never touched.
func (s *Service) Cleanup(ctx context.Context, userID string) (*CleanupResult, error) {
	if err := s.guard.Require(ctx, userID, permission.PermDataManagementCleanup); err != nil {
		return nil, err
	}

	policy, err := retention.LoadOrDefault(ctx, s.db, s.retentionDays)
	if err != nil {
		return nil, err
	}

	if err := validation.Struct(policy); err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, -policy.Days)
	result := &CleanupResult{Cutoff: cutoff.Format(validation.DateLayout)}

	if policy.Attendance {
		if result.Attendance, err = attendance.DeleteBefore(ctx, s.db, result.Cutoff); err != nil {
			return nil, err
		}
	}

	if policy.ResolvedErrors {
		if result.ResolvedErrors, err = errortrack.DeleteResolvedBefore(ctx, s.db, cutoff); err != nil {
			return nil, err
		}
	}

	s.audit.Log(ctx, audit.Entry{
		UserID:     userID,
		Action:     audit.ActionDelete,
		Module:     audit.ModuleDataManagement,
		EntityType: "cleanup",
		NewData:    result,
		Description: fmt.Sprintf("Cleanup before %s removed %d attendance rows and %d resolved errors",
			result.Cutoff, result.Attendance, result.ResolvedErrors),
	}).Log()

	return result, nil
}
