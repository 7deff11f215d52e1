// Package permission resolves what a user may do to a business module.
//
// Roles:
//   - admin: full access to everything
//   - operator: can view, add and edit but not delete or manage users
//   - viewer: view only
//
// Per-user custom permissions can override the role defaults per module.
package permission

// 动作名。reports 使用 view/export，settings 使用 view/edit，其余模块为四元组。
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionExport = "export"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// CapabilitySet maps action names to whether the action is allowed. Missing
// keys count as denied, which lets the reduced shapes of the reports and
// settings modules share the same resolution rule as everything else.
type CapabilitySet map[string]bool

// Subject carries the permission-relevant projection of a user. A nil Subject
// resolves to no permissions at all.
type Subject struct {
	Role              string
	CustomPermissions map[string]CapabilitySet
}

func full() CapabilitySet {
	return CapabilitySet{ActionView: true, ActionAdd: true, ActionEdit: true, ActionDelete: true}
}

func editOnly() CapabilitySet {
	return CapabilitySet{ActionView: true, ActionAdd: true, ActionEdit: true, ActionDelete: false}
}

func viewOnly() CapabilitySet {
	return CapabilitySet{ActionView: true, ActionAdd: false, ActionEdit: false, ActionDelete: false}
}

func none() CapabilitySet {
	return CapabilitySet{ActionView: false, ActionAdd: false, ActionEdit: false, ActionDelete: false}
}

// rolePermissions 是每个角色对每个模块的默认能力表。每个模块必须对每个角色
// 都有定义。
var rolePermissions = map[string]map[string]CapabilitySet{
	RoleAdmin: {
		"users":               full(),
		"stations":            full(),
		"drivers":             full(),
		"bilty_types":         full(),
		"expenses":            full(),
		"diesel_stations":     full(),
		"accounts_categories": full(),
		"items":               full(),
		"chart_of_accounts":   full(),
		"bookings":            full(),
		"challans":            full(),
		"invoices":            full(),
		"payments":            full(),
		"reports":             {ActionView: true, ActionExport: true},
		"settings":            {ActionView: true, ActionEdit: true},
	},
	RoleOperator: {
		"users":               none(),
		"stations":            editOnly(),
		"drivers":             editOnly(),
		"bilty_types":         editOnly(),
		"expenses":            editOnly(),
		"diesel_stations":     editOnly(),
		"accounts_categories": editOnly(),
		"items":               editOnly(),
		"chart_of_accounts":   editOnly(),
		"bookings":            editOnly(),
		"challans":            editOnly(),
		"invoices":            editOnly(),
		"payments":            editOnly(),
		"reports":             {ActionView: true, ActionExport: true},
		"settings":            {ActionView: true, ActionEdit: false},
	},
	RoleViewer: {
		"users":               none(),
		"stations":            viewOnly(),
		"drivers":             viewOnly(),
		"bilty_types":         viewOnly(),
		"expenses":            viewOnly(),
		"diesel_stations":     viewOnly(),
		"accounts_categories": viewOnly(),
		"items":               viewOnly(),
		"chart_of_accounts":   viewOnly(),
		"bookings":            viewOnly(),
		"challans":            viewOnly(),
		"invoices":            viewOnly(),
		"payments":            viewOnly(),
		"reports":             {ActionView: true, ActionExport: false},
		"settings":            {ActionView: true, ActionEdit: false},
	},
}

// GetPermissions resolves the capability set for a subject on a module. The
// role default is looked up first (unknown roles fall back to viewer, unknown
// modules to all-denied), then any custom override keys for the module are
// shallow-merged on top. Never returns nil and never panics; a nil subject
// yields the all-denied set.
func GetPermissions(subject *Subject, module string) CapabilitySet {
	if subject == nil {
		return none()
	}

	role := subject.Role
	if role == "" {
		role = RoleViewer
	}
	roleTable, ok := rolePermissions[role]
	if !ok {
		roleTable = rolePermissions[RoleViewer]
	}

	defaults, ok := roleTable[module]
	if !ok {
		return none()
	}

	resolved := make(CapabilitySet, len(defaults))
	for action, allowed := range defaults {
		resolved[action] = allowed
	}
	if override, ok := subject.CustomPermissions[module]; ok {
		for action, allowed := range override {
			resolved[action] = allowed
		}
	}
	return resolved
}

// Has reports whether the subject may perform action on module. Anything but
// an explicit true counts as denied.
func Has(subject *Subject, module, action string) bool {
	return GetPermissions(subject, module)[action]
}

// IsAdmin reports whether the subject holds the admin role.
func IsAdmin(subject *Subject) bool {
	return subject != nil && subject.Role == RoleAdmin
}

// OverridesFrom converts the loosely typed custom_permissions JSON object
// stored on a user record into typed override sets. Non-boolean values are
// dropped rather than trusted.
func OverridesFrom(raw map[string]interface{}) map[string]CapabilitySet {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]CapabilitySet, len(raw))
	for module, value := range raw {
		var caps CapabilitySet
		switch typed := value.(type) {
		case map[string]interface{}:
			caps = make(CapabilitySet, len(typed))
			for action, allowed := range typed {
				if b, ok := allowed.(bool); ok {
					caps[action] = b
				}
			}
		case CapabilitySet:
			caps = typed
		case map[string]bool:
			caps = CapabilitySet(typed)
		}
		if len(caps) > 0 {
			out[module] = caps
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
