package permission

// ModulePermissions is the resolved capability view for one subject on one
// module, with convenience flags for gating UI actions. It carries no state
// of its own; recompute it whenever the subject or module changes.
type ModulePermissions struct {
	Caps   CapabilitySet `json:"caps"`
	Module string        `json:"module"`

	CanView   bool `json:"can_view"`
	CanAdd    bool `json:"can_add"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	Admin     bool `json:"is_admin"`

	subject *Subject
}

// For derives the module permission view for a subject. Safe on a nil
// subject, which yields the all-denied view.
func For(subject *Subject, module string) ModulePermissions {
	caps := GetPermissions(subject, module)
	return ModulePermissions{
		Caps:      caps,
		Module:    module,
		CanView:   caps[ActionView],
		CanAdd:    caps[ActionAdd],
		CanEdit:   caps[ActionEdit],
		CanDelete: caps[ActionDelete],
		Admin:     IsAdmin(subject),
		subject:   subject,
	}
}

// Has answers a point query for an arbitrary action name, including the
// module-specific ones like export.
func (m ModulePermissions) Has(action string) bool {
	return Has(m.subject, m.Module, action)
}
