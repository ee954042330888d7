package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

func TestAccountResolver(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	store := NewStore(db)
	r := NewAccountResolver(db, store)

	require.NoError(t, db.Create(&models.User{ID: "active", Active: true, Username: "active", Email: "a@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "unset", Active: true, Username: "unset", Email: "u@example.com"}).Error)
	require.NoError(t, db.Create(&models.User{ID: "disabled", Active: true, Username: "disabled", Email: "d@example.com"}).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "disabled").Update("active", false).Error)

	require.NoError(t, store.Save(ctx, "active", ReadOnly(), SuperUserID))
	require.NoError(t, store.Save(ctx, "disabled", Full(), SuperUserID))
	require.NoError(t, store.Save(ctx, "ghost", Full(), SuperUserID))

	testCases := []struct {
		name   string
		userID string
		want   Set
	}{
		{name: "super user", userID: SuperUserID, want: Full()},
		{name: "active with stored set", userID: "active", want: ReadOnly()},
		{name: "active without stored set", userID: "unset", want: Supervisor()},
		{name: "disabled account", userID: "disabled"},
		{name: "set without account", userID: "ghost"},
		{name: "unknown", userID: "nobody"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Effective(ctx, tc.userID))
		})
	}

	g := NewGuard(r)
	assert.False(t, g.Allowed(ctx, "nobody", PermEmployeesCreate))
	assert.False(t, g.Allowed(ctx, "disabled", PermEmployeesView))
	assert.True(t, g.Allowed(ctx, "unset", PermEmployeesCreate))
}
