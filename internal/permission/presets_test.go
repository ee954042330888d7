package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireComplete asserts that s has exactly the modules and actions of the schema.
func requireComplete(t *testing.T, s Set) {
	t.Helper()

	require.Len(t, s, len(schema))

	for _, sc := range schema {
		actions, ok := s[sc.module]
		require.True(t, ok, "missing module %s", sc.module)
		require.Len(t, actions, len(sc.actions), "module %s", sc.module)

		for _, a := range sc.actions {
			_, ok := actions[a]
			require.True(t, ok, "missing %s", Join(sc.module, a))
		}
	}
}

func TestPresetsAreComplete(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			s, err := Preset(name)
			require.NoError(t, err)
			requireComplete(t, s)
		})
	}

	_, err := Preset("root")
	require.ErrorIs(t, err, ErrUnknownPreset)
}

func TestFull(t *testing.T) {
	full := Full()
	for _, p := range All() {
		assert.True(t, HasPermission(full, p), p)
	}
}

func TestSupervisor(t *testing.T) {
	s := Supervisor()

	granted := []string{
		PermAttendanceMark, PermAttendanceBulkMark, PermEmployeesCreate, PermEmployeesEdit,
		PermFinancialApplyBonus, PermReportsGenerate, PermC6PaymentGenerate, PermErrorsView,
	}
	for _, p := range granted {
		assert.True(t, HasPermission(s, p), p)
	}

	denied := []string{
		PermEmployeesDelete, PermFinancialClearPayments, PermFinancialRemoveBulkBonus,
		PermFinancialDeletePayment, PermAttendanceImport, PermEmployeesImport, PermErrorsResolve,
	}
	for _, p := range denied {
		assert.False(t, HasPermission(s, p), p)
	}

	for _, m := range []Module{ModuleSettings, ModuleUsers, ModuleDataManagement} {
		for a, v := range s[m] {
			assert.False(t, v, Join(m, a))
		}
	}
}

func TestReadOnly(t *testing.T) {
	s := ReadOnly()

	for _, sc := range schema {
		for _, a := range sc.actions {
			want := a == "view" || a == "search" || a == "export"
			if sc.module == ModuleSettings || sc.module == ModuleUsers || sc.module == ModuleDataManagement {
				want = false
			}

			assert.Equal(t, want, s[sc.module][a], Join(sc.module, a))
		}
	}

	assert.Equal(t, ReadOnly(), NewUserDefault())
}

func TestPresetsAreFreshCopies(t *testing.T) {
	a := Supervisor()
	a[ModuleUsers]["create"] = true

	assert.False(t, Supervisor()[ModuleUsers]["create"])
}
