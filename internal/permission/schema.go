package permission

import (
	"sort"
	"strings"
)

// Module is a functional area of the application.
type Module string

// Modules of the schema.
const (
	ModuleAttendance     Module = "attendance"
	ModuleEmployees      Module = "employees"
	ModuleFinancial      Module = "financial"
	ModuleReports        Module = "reports"
	ModuleC6Payment      Module = "c6payment"
	ModuleErrors         Module = "errors"
	ModuleSettings       Module = "settings"
	ModuleUsers          Module = "users"
	ModuleDataManagement Module = "datamanagement"
)

// Actions maps an action name of one module to its grant.
type Actions map[string]bool

// Set is a permission set: one Actions map per module.
type Set map[Module]Actions

// Permission strings, "<module>.<action>".
const (
	PermAttendanceView     = "attendance.view"
	PermAttendanceMark     = "attendance.mark"
	PermAttendanceEdit     = "attendance.edit"
	PermAttendanceDelete   = "attendance.delete"
	PermAttendanceBulkMark = "attendance.bulk_mark"
	PermAttendanceExport   = "attendance.export"
	PermAttendanceImport   = "attendance.import"

	PermEmployeesView   = "employees.view"
	PermEmployeesCreate = "employees.create"
	PermEmployeesEdit   = "employees.edit"
	PermEmployeesDelete = "employees.delete"
	PermEmployeesSearch = "employees.search"
	PermEmployeesExport = "employees.export"
	PermEmployeesImport = "employees.import"

	PermFinancialView            = "financial.view"
	PermFinancialApplyBonus      = "financial.apply_bonus"
	PermFinancialRemoveBonus     = "financial.remove_bonus"
	PermFinancialRemoveBulkBonus = "financial.remove_bulk_bonus"
	PermFinancialApplyDiscount   = "financial.apply_discount"
	PermFinancialEditPayment     = "financial.edit_payment"
	PermFinancialDeletePayment   = "financial.delete_payment"
	PermFinancialClearPayments   = "financial.clear_payments"
	PermFinancialExport          = "financial.export"

	PermReportsView     = "reports.view"
	PermReportsGenerate = "reports.generate"
	PermReportsExport   = "reports.export"

	PermC6PaymentView     = "c6payment.view"
	PermC6PaymentGenerate = "c6payment.generate"
	PermC6PaymentExport   = "c6payment.export"

	PermErrorsView    = "errors.view"
	PermErrorsResolve = "errors.resolve"
	PermErrorsDelete  = "errors.delete"
	PermErrorsExport  = "errors.export"

	PermSettingsView      = "settings.view"
	PermSettingsEdit      = "settings.edit"
	PermSettingsRetention = "settings.retention"

	PermUsersView              = "users.view"
	PermUsersCreate            = "users.create"
	PermUsersEdit              = "users.edit"
	PermUsersDelete            = "users.delete"
	PermUsersManagePermissions = "users.manage_permissions"

	PermDataManagementView    = "datamanagement.view"
	PermDataManagementCleanup = "datamanagement.cleanup"
	PermDataManagementExport  = "datamanagement.export"
	PermDataManagementImport  = "datamanagement.import"
)

type moduleSchema struct {
	module  Module
	actions []string
}

// schema is ordered; summaries and listings follow this order.
var schema = []moduleSchema{ //nolint:gochecknoglobals
	{ModuleAttendance, []string{"view", "mark", "edit", "delete", "bulk_mark", "export", "import"}},
	{ModuleEmployees, []string{"view", "create", "edit", "delete", "search", "export", "import"}},
	{ModuleFinancial, []string{
		"view", "apply_bonus", "remove_bonus", "remove_bulk_bonus", "apply_discount",
		"edit_payment", "delete_payment", "clear_payments", "export",
	}},
	{ModuleReports, []string{"view", "generate", "export"}},
	{ModuleC6Payment, []string{"view", "generate", "export"}},
	{ModuleErrors, []string{"view", "resolve", "delete", "export"}},
	{ModuleSettings, []string{"view", "edit", "retention"}},
	{ModuleUsers, []string{"view", "create", "edit", "delete", "manage_permissions"}},
	{ModuleDataManagement, []string{"view", "cleanup", "export", "import"}},
}

// Modules returns the modules of the schema in schema order.
func Modules() []Module {
	out := make([]Module, 0, len(schema))
	for _, m := range schema {
		out = append(out, m.module)
	}

	return out
}

// ActionsOf returns the actions of module m in schema order, or nil for unknown modules.
func ActionsOf(m Module) []string {
	for _, s := range schema {
		if s.module == m {
			out := make([]string, len(s.actions))
			copy(out, s.actions)

			return out
		}
	}

	return nil
}

// All returns every permission string of the schema in schema order.
func All() []string {
	var out []string

	for _, s := range schema {
		for _, a := range s.actions {
			out = append(out, Join(s.module, a))
		}
	}

	return out
}

// Join builds the permission string of module m and action a.
func Join(m Module, a string) string {
	return string(m) + "." + a
}

// Parse splits a permission string at its first dot. ok is false when either
// side is empty or there is no dot.
func Parse(permission string) (m Module, action string, ok bool) {
	mod, act, found := strings.Cut(permission, ".")
	if !found || mod == "" || act == "" {
		return "", "", false
	}

	return Module(mod), act, true
}

// Known reports whether permission names a (module, action) pair of the schema.
func Known(permission string) bool {
	m, a, ok := Parse(permission)
	if !ok {
		return false
	}

	for _, known := range ActionsOf(m) {
		if known == a {
			return true
		}
	}

	return false
}

// build returns a complete set whose flags are given by grant.
func build(grant func(m Module, action string) bool) Set {
	out := make(Set, len(schema))
	for _, s := range schema {
		actions := make(Actions, len(s.actions))
		for _, a := range s.actions {
			actions[a] = grant(s.module, a)
		}

		out[s.module] = actions
	}

	return out
}

// Clone returns a deep copy of s. A nil set stays nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}

	out := make(Set, len(s))
	for m, actions := range s {
		if actions == nil {
			out[m] = nil
			continue
		}

		cp := make(Actions, len(actions))
		for a, v := range actions {
			cp[a] = v
		}

		out[m] = cp
	}

	return out
}

// Granted returns the granted permission strings of s, sorted.
func (s Set) Granted() []string {
	out := make([]string, 0)

	for m, actions := range s {
		for a, v := range actions {
			if v {
				out = append(out, Join(m, a))
			}
		}
	}

	sort.Strings(out)

	return out
}
