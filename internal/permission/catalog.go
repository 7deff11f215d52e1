package permission

// RoleInfo 描述一个可分配的角色，供用户管理界面展示。
type RoleInfo struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ModuleInfo 描述一个权限模块。
type ModuleInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Roles 返回可分配角色目录。
func Roles() []RoleInfo {
	return []RoleInfo{
		{Value: RoleAdmin, Label: "Admin", Description: "Full access to all features"},
		{Value: RoleOperator, Label: "Operator", Description: "Can add and edit, cannot delete"},
		{Value: RoleViewer, Label: "Viewer", Description: "View only access"},
	}
}

// Modules 返回权限模块目录，顺序与后台导航一致。
func Modules() []ModuleInfo {
	return []ModuleInfo{
		{Key: "users", Label: "User Management"},
		{Key: "stations", Label: "Stations"},
		{Key: "drivers", Label: "Drivers"},
		{Key: "bilty_types", Label: "Bilty Types"},
		{Key: "expenses", Label: "Expenses"},
		{Key: "diesel_stations", Label: "Diesel Stations"},
		{Key: "accounts_categories", Label: "Account Categories"},
		{Key: "items", Label: "Items"},
		{Key: "chart_of_accounts", Label: "Chart of Accounts"},
		{Key: "bookings", Label: "Bookings"},
		{Key: "challans", Label: "Challans"},
		{Key: "invoices", Label: "Invoices"},
		{Key: "payments", Label: "Payments"},
		{Key: "reports", Label: "Reports"},
		{Key: "settings", Label: "Settings"},
	}
}

// ValidRole 报告 role 是否为已知角色。
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}
