package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/retention"
	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/validation"
)

const (
	admin = permission.SuperUserID
	super = "supervisor"
)

type countingRefresher struct {
	n int
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.n++
	return nil
}

func setup(t *testing.T) (*Service, *audit.Service, *countingRefresher, *gorm.DB) {
	t.Helper()

	ctx := context.Background()
	db := dbtest.Open(t)
	guard := permission.NewGuard(permission.NewStore(db))
	rec := audit.New(ctx, db, true)
	tracker := &countingRefresher{}

	s := New(db, guard, rec, Options{AuditFallback: true, NotifyFallback: false, RetentionDays: 365}, rec, tracker)

	return s, rec, tracker, db
}

func TestGetDefaults(t *testing.T) {
	s, _, _, _ := setup(t)

	v, err := s.Get(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, Values{
		AuditLogEnabled: true,
		NotifyCritical:  false,
		Retention:       retention.Default(365),
	}, *v)
}

func TestSetAuditEnabledRefreshes(t *testing.T) {
	ctx := context.Background()
	s, rec, tracker, db := setup(t)

	require.NoError(t, s.SetAuditEnabled(ctx, admin, false))
	assert.False(t, rec.Enabled())
	assert.Equal(t, 1, tracker.n)

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Zero(t, count, "disabling is not logged once the log is off")

	require.NoError(t, s.SetAuditEnabled(ctx, admin, true))
	assert.True(t, rec.Enabled())

	require.NoError(t, db.Model(&models.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, s.SetNotifyCritical(ctx, admin, true))
	assert.Equal(t, 3, tracker.n)

	v, err := s.Get(ctx, admin)
	require.NoError(t, err)
	assert.True(t, v.AuditLogEnabled)
	assert.True(t, v.NotifyCritical)
}

func TestSetRetention(t *testing.T) {
	ctx := context.Background()
	s, _, _, _ := setup(t)

	testCases := []struct {
		name    string
		policy  retention.Policy
		wantErr error
	}{
		{name: "valid", policy: retention.Policy{Days: 90, Attendance: true}},
		{name: "too short", policy: retention.Policy{Days: 7}, wantErr: validation.ErrInvalidInput},
		{name: "too long", policy: retention.Policy{Days: 5000}, wantErr: validation.ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.SetRetention(ctx, admin, tc.policy)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			v, err := s.Get(ctx, admin)
			require.NoError(t, err)
			assert.Equal(t, tc.policy, v.Retention)
		})
	}
}

func TestDeniedOperationsDoNotTouchStorage(t *testing.T) {
	ctx := context.Background()
	s, _, tracker, db := setup(t)

	mutations := dbtest.CountMutations(t, db)

	require.ErrorIs(t, s.SetAuditEnabled(ctx, super, false), permission.ErrDenied)
	require.ErrorIs(t, s.SetNotifyCritical(ctx, super, true), permission.ErrDenied)
	require.ErrorIs(t, s.SetRetention(ctx, super, retention.Default(90)), permission.ErrDenied)

	_, err := s.Get(ctx, super)
	require.ErrorIs(t, err, permission.ErrDenied)

	assert.Zero(t, mutations.Count())
	assert.Zero(t, tracker.n)
}
