package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

func TestStoreGetAbsent(t *testing.T) {
	s := NewStore(dbtest.Open(t))

	assert.Nil(t, s.Get(context.Background(), "nobody"))
	assert.Equal(t, Supervisor(), s.Effective(context.Background(), "nobody"))
}

func TestStoreSaveUpserts(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	require.NoError(t, s.Save(ctx, "u1", ReadOnly(), "admin"))

	next := ReadOnly()
	next[ModuleUsers]["view"] = true
	next["zone"] = Actions{"view": true}
	require.NoError(t, s.Save(ctx, "u1", next, "admin"))

	var count int64
	require.NoError(t, db.Model(&models.UserPermission{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got := s.Get(ctx, "u1")
	assert.True(t, got[ModuleUsers]["view"])
	_, ok := got["zone"]
	assert.False(t, ok, "unknown modules are not stored")

	history, err := s.ChangeLog().History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "users.view ativada", history[0].Summary)
	assert.Equal(t, SummaryCreated, history[1].Summary)
	assert.Equal(t, "admin", history[0].ChangedBy)
}

func TestStoreEffectiveFillsMissingFlags(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	require.NoError(t, db.Create(&models.UserPermission{
		UserID:      "legacy",
		Permissions: []byte(`{"attendance":{"view":true,"mark":false}}`),
	}).Error)

	eff := s.Effective(ctx, "legacy")
	requireComplete(t, eff)
	assert.False(t, eff[ModuleAttendance]["mark"])
	assert.Equal(t, Supervisor()[ModuleEmployees], eff[ModuleEmployees])
}

func TestStoreSuperUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)
	mutations := dbtest.CountMutations(t, db)

	require.ErrorIs(t, s.Save(ctx, SuperUserID, ReadOnly(), "admin"), ErrSuperUserImmutable)
	require.ErrorIs(t, s.Delete(ctx, SuperUserID), ErrSuperUserImmutable)
	assert.Zero(t, mutations.Count())

	assert.Equal(t, Full(), s.Effective(ctx, SuperUserID))
}

func TestStoreSaveRejectsInvalidInput(t *testing.T) {
	s := NewStore(dbtest.Open(t))

	require.ErrorIs(t, s.Save(context.Background(), "", Full(), "admin"), ErrEmptyUserID)
	require.ErrorIs(t, s.Save(context.Background(), "u1", nil, "admin"), ErrNilSet)
	require.ErrorIs(t, s.Delete(context.Background(), ""), ErrEmptyUserID)
}

func TestStoreDeleteKeepsChangeLog(t *testing.T) {
	ctx := context.Background()
	s := NewStore(dbtest.Open(t))

	require.NoError(t, s.Save(ctx, "u1", Full(), "admin"))
	require.NoError(t, s.Delete(ctx, "u1"))
	require.NoError(t, s.Delete(ctx, "u1"), "deleting twice is not an error")

	assert.Nil(t, s.Get(ctx, "u1"))

	history, err := s.ChangeLog().History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStoreListAll(t *testing.T) {
	ctx := context.Background()
	s := NewStore(dbtest.Open(t))

	assert.Empty(t, s.ListAll(ctx))

	require.NoError(t, s.Save(ctx, "first", ReadOnly(), "admin"))
	require.NoError(t, s.Save(ctx, "second", Full(), "admin"))

	all := s.ListAll(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].UserID)
	assert.Equal(t, "first", all[1].UserID)
	assert.Equal(t, Full(), all[0].Permissions)
}

func TestStoreStorageErrors(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	assert.Nil(t, s.Get(ctx, "u1"))
	assert.Equal(t, []Record{}, s.ListAll(ctx))
	require.Error(t, s.Save(ctx, "u1", Full(), "admin"))
	require.Error(t, s.Delete(ctx, "u1"))
}

func TestStoreSaveSurvivesChangeLogFailure(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	require.NoError(t, db.Migrator().DropTable(&models.PermissionChangeLog{}))

	require.NoError(t, s.Save(ctx, "u1", ReadOnly(), "admin"))
	assert.Equal(t, ReadOnly(), s.Get(ctx, "u1"))
}

func TestStoreSaveReplacesUndecodableRow(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	require.NoError(t, db.Create(&models.UserPermission{
		UserID:      "u1",
		Permissions: []byte(`["oops"]`),
	}).Error)

	require.NoError(t, s.Save(ctx, "u1", ReadOnly(), SuperUserID))
	assert.Equal(t, ReadOnly(), s.Get(ctx, "u1"))

	var count int64
	require.NoError(t, db.Model(&models.UserPermission{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	history, err := s.ChangeLog().History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, SummaryCreated, history[0].Summary)
}

func TestStoreWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	s := NewStore(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, s.WithTx(tx).Save(ctx, "u1", ReadOnly(), SuperUserID))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	assert.Nil(t, s.Get(ctx, "u1"))

	history, err := s.ChangeLog().History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
