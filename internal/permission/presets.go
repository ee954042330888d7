package permission

import "errors"

// Preset names accepted by Preset.
const (
	PresetFull       = "full"
	PresetSupervisor = "supervisor"
	PresetReadOnly   = "readonly"
)

// ErrUnknownPreset is returned by Preset for an unknown name.
var ErrUnknownPreset = errors.New("unknown permission preset")

// supervisorGrants are the day-to-day operational flags.
var supervisorGrants = map[string]bool{ //nolint:gochecknoglobals
	PermAttendanceView:     true,
	PermAttendanceMark:     true,
	PermAttendanceEdit:     true,
	PermAttendanceBulkMark: true,
	PermAttendanceExport:   true,

	PermEmployeesView:   true,
	PermEmployeesCreate: true,
	PermEmployeesEdit:   true,
	PermEmployeesSearch: true,
	PermEmployeesExport: true,

	PermFinancialView:          true,
	PermFinancialApplyBonus:    true,
	PermFinancialRemoveBonus:   true,
	PermFinancialApplyDiscount: true,
	PermFinancialEditPayment:   true,
	PermFinancialExport:        true,

	PermReportsView:     true,
	PermReportsGenerate: true,
	PermReportsExport:   true,

	PermC6PaymentView:     true,
	PermC6PaymentGenerate: true,
	PermC6PaymentExport:   true,

	PermErrorsView: true,
}

// Full returns a set with every flag granted.
func Full() Set {
	return build(func(Module, string) bool { return true })
}

// Supervisor returns the operational preset. It is also the skeleton of Merge.
func Supervisor() Set {
	return build(func(m Module, a string) bool {
		return supervisorGrants[Join(m, a)]
	})
}

// ReadOnly returns a set granting only view, search and export flags, and
// nothing at all in the settings, users and datamanagement modules.
func ReadOnly() Set {
	return build(func(m Module, a string) bool {
		switch m {
		case ModuleSettings, ModuleUsers, ModuleDataManagement:
			return false
		default:
			return a == "view" || a == "search" || a == "export"
		}
	})
}

// NewUserDefault returns the set a new user starts with in the permission editor.
// It differs from the storage fallback of Merge, which is Supervisor.
func NewUserDefault() Set {
	return ReadOnly()
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (Set, error) {
	switch name {
	case PresetFull:
		return Full(), nil
	case PresetSupervisor:
		return Supervisor(), nil
	case PresetReadOnly:
		return ReadOnly(), nil
	default:
		return nil, ErrUnknownPreset
	}
}

// PresetNames returns the names accepted by Preset.
func PresetNames() []string {
	return []string{PresetFull, PresetSupervisor, PresetReadOnly}
}
