// Package navigation builds the menu of the back office, hiding the entries the
// user may not open.
package navigation

// Item is one menu entry. An empty Permission means every logged in user sees it.
type Item struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Permission string `json:"permission,omitempty"`
	Children   []Item `json:"children,omitempty"`
}

var menu = []Item{
	{Key: "dashboard", Title: "Início", URL: "/"},
	{Key: "attendance", Title: "Ponto", URL: "/attendance", Permission: "attendance.view"},
	{Key: "employees", Title: "Funcionários", URL: "/employees", Permission: "employees.view"},
	{Key: "financial", Title: "Financeiro", URL: "/financial", Permission: "financial.view", Children: []Item{
		{Key: "payroll", Title: "Folha", URL: "/financial/payroll", Permission: "financial.view"},
		{Key: "c6payment", Title: "Pagamentos C6", URL: "/financial/pix", Permission: "c6payment.view"},
	}},
	{Key: "reports", Title: "Relatórios", URL: "/reports", Permission: "reports.view"},
	{Key: "admin", Title: "Administração", URL: "#", Children: []Item{
		{Key: "users", Title: "Usuários", URL: "/admin/users", Permission: "users.view"},
		{Key: "errors", Title: "Erros", URL: "/admin/errors", Permission: "errors.view"},
		{Key: "settings", Title: "Configurações", URL: "/admin/settings", Permission: "settings.view"},
		{Key: "datamanagement", Title: "Gestão de Dados", URL: "/admin/data", Permission: "datamanagement.view"},
	}},
}

// Menu returns the full menu.
func Menu() []Item {
	return filter(menu, func(string) bool { return true })
}

// For returns the entries allowed reports true for. A parent stays visible
// when one of its children is visible, even without its own permission.
func For(allowed func(permission string) bool) []Item {
	return filter(menu, allowed)
}

func filter(items []Item, allowed func(string) bool) []Item {
	out := make([]Item, 0, len(items))

	for _, it := range items {
		children := filter(it.Children, allowed)
		own := it.Permission == "" || allowed(it.Permission)

		switch {
		case len(it.Children) == 0 && own:
		case len(it.Children) > 0 && len(children) > 0:
		default:
			continue
		}

		it.Children = nil
		if len(children) > 0 {
			it.Children = children
		}

		out = append(out, it)
	}

	return out
}
