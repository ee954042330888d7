package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	stored, err := Decode([]byte(`{"employees":{"view":true,"create":"yes","delete":1,"edit":null}}`))
	assert.NoError(t, err)

	testCases := []struct {
		name       string
		set        Set
		permission string
		want       bool
	}{
		{name: "nil set", set: nil, permission: PermEmployeesView},
		{name: "empty string", set: Full(), permission: ""},
		{name: "no dot", set: Full(), permission: "employees"},
		{name: "leading dot", set: Full(), permission: ".view"},
		{name: "trailing dot", set: Full(), permission: "employees."},
		{name: "only a dot", set: Full(), permission: "."},
		{name: "multiple dots", set: Full(), permission: "employees.view.extra"},
		{name: "unknown module", set: Full(), permission: "zone.view"},
		{name: "unknown action", set: Full(), permission: "employees.fly"},
		{name: "upper case is not normalized", set: Full(), permission: "Employees.View"},
		{name: "granted", set: Full(), permission: PermEmployeesView, want: true},
		{name: "not granted", set: ReadOnly(), permission: PermEmployeesCreate},
		{name: "module without actions", set: Set{ModuleEmployees: nil}, permission: PermEmployeesView},
		{name: "decoded bool leaf", set: stored, permission: PermEmployeesView, want: true},
		{name: "decoded string leaf ignored", set: stored, permission: PermEmployeesCreate},
		{name: "decoded number leaf ignored", set: stored, permission: PermEmployeesDelete},
		{name: "decoded null leaf ignored", set: stored, permission: PermEmployeesEdit},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, HasPermission(tc.set, tc.permission))
			})
		})
	}
}

func TestHasAnyAndAll(t *testing.T) {
	set := ReadOnly()

	assert.True(t, HasAny(set, PermUsersCreate, PermEmployeesView))
	assert.False(t, HasAny(set, PermUsersCreate, PermSettingsView))
	assert.False(t, HasAny(set))

	assert.True(t, HasAll(set, PermEmployeesView, PermAttendanceExport))
	assert.False(t, HasAll(set, PermEmployeesView, PermEmployeesCreate))
	assert.True(t, HasAll(set))
}

func TestParse(t *testing.T) {
	m, a, ok := Parse("financial.apply_bonus")
	assert.True(t, ok)
	assert.Equal(t, ModuleFinancial, m)
	assert.Equal(t, "apply_bonus", a)

	_, a, ok = Parse("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "b.c", a)

	_, _, ok = Parse("nodot")
	assert.False(t, ok)
}

func TestKnown(t *testing.T) {
	for _, p := range All() {
		assert.True(t, Known(p), p)
	}

	assert.False(t, Known("employees.fly"))
	assert.False(t, Known("zone.view"))
	assert.False(t, Known(""))
}
