package pixexport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/db/dbtest"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

const (
	admin  = permission.SuperUserID
	reader = "reader"
	super  = "supervisor"
)

var march = financial.Period{Start: "2026-03-01", End: "2026-03-31"}

func setup(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	ctx := context.Background()
	db := dbtest.Open(t)
	store := permission.NewStore(db)
	require.NoError(t, store.Save(ctx, reader, permission.ReadOnly(), admin))

	return New(db, permission.NewGuard(store), audit.New(ctx, db, true)), db
}

func seed(t *testing.T, db *gorm.DB, name, cpf, pixKey string, presentDays int) string {
	t.Helper()

	e := models.Employee{
		ID:         uuid.NewString(),
		Name:       name,
		CPF:        cpf,
		PixKey:     pixKey,
		PixKeyType: models.PixKeyCPF,
		DailyRate:  10000,
		Active:     true,
	}
	require.NoError(t, db.Create(&e).Error)

	for day := 1; day <= presentDays; day++ {
		require.NoError(t, db.Create(&models.Attendance{
			EmployeeID: e.ID,
			Date:       "2026-03-" + string(rune('0'+day/10)) + string(rune('0'+day%10)),
			Status:     models.AttendancePresent,
		}).Error)
	}

	return e.ID
}

func TestAmount(t *testing.T) {
	testCases := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "zero", cents: 0, want: "0.00"},
		{name: "centavos", cents: 7, want: "0.07"},
		{name: "reais", cents: 123456, want: "1234.56"},
		{name: "negative", cents: -150, want: "-1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Amount(tc.cents))
		})
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t)
	ana := seed(t, db, "Ana", "11111111111", "11111111111", 3)
	bia := seed(t, db, "Bia", "22222222222", "", 2)
	caio := seed(t, db, "Caio", "33333333333", "33333333333", 0)

	result, err := s.Generate(ctx, super, march)
	require.NoError(t, err)
	require.Len(t, result.Payments, 1)
	assert.Equal(t, ana, result.Payments[0].EmployeeID)
	assert.Equal(t, int64(30000), result.Payments[0].Amount)
	assert.Equal(t, models.PaymentPending, result.Payments[0].Status)

	reasons := map[string]string{}
	for _, sk := range result.Skipped {
		reasons[sk.EmployeeID] = sk.Reason
	}

	assert.Equal(t, map[string]string{bia: ReasonNoPixKey, caio: ReasonNothingOwed}, reasons)

	// generating again updates the pending payment in place
	require.NoError(t, db.Create(&models.Attendance{EmployeeID: ana, Date: "2026-03-20", Status: models.AttendancePresent}).Error)

	again, err := s.Generate(ctx, super, march)
	require.NoError(t, err)
	require.Len(t, again.Payments, 1)
	assert.Equal(t, result.Payments[0].ID, again.Payments[0].ID)
	assert.Equal(t, int64(40000), again.Payments[0].Amount)
}

func TestExportMarksExportedAndLocksGenerate(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t)
	ana := seed(t, db, "Ana", "11111111111", "11111111111", 2)

	_, err := s.Generate(ctx, admin, march)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := s.Export(ctx, super, march, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,CPF,Pix Key Type,Pix Key,Amount,Description", lines[0])
	assert.Equal(t, "Ana,11111111111,cpf,11111111111,200.00,Pagamento 2026-03-01 a 2026-03-31", lines[1])

	rows, err := s.List(ctx, reader, march)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.PaymentExported, rows[0].Status)
	assert.Equal(t, "Ana", rows[0].Name)

	result, err := s.Generate(ctx, admin, march)
	require.NoError(t, err)
	assert.Empty(t, result.Payments)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, Skipped{EmployeeID: ana, Name: "Ana", Reason: ReasonLocked}, result.Skipped[0])

	var audits int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("module = ?", audit.ModuleC6Payment).Count(&audits).Error)
	assert.Equal(t, int64(3), audits)
}

func TestDeniedOperationsDoNotTouchStorage(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t)
	seed(t, db, "Ana", "11111111111", "11111111111", 2)

	clerk := permission.ReadOnly()
	clerk[permission.ModuleC6Payment] = permission.Actions{"view": false, "generate": false, "export": false}
	require.NoError(t, permission.NewStore(db).Save(ctx, "clerk", clerk, admin))

	mutations := dbtest.CountMutations(t, db)

	_, err := s.Generate(ctx, reader, march)
	require.ErrorIs(t, err, permission.ErrDenied)

	var buf bytes.Buffer
	_, err = s.Export(ctx, "clerk", march, &buf)
	require.ErrorIs(t, err, permission.ErrDenied)
	assert.Zero(t, buf.Len())

	_, err = s.List(ctx, "clerk", march)
	require.ErrorIs(t, err, permission.ErrDenied)

	_, err = s.Generate(ctx, "", march)
	require.ErrorIs(t, err, permission.ErrDenied)

	assert.Zero(t, mutations.Count())
}
