package domain

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID    int64
	Email string
	Roles RoleSet
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role Role) bool {
	return p != nil && p.Roles.Has(role)
}

// IsStaff reports whether the principal holds ADMIN or TECNICO.
func (p *Principal) IsStaff() bool {
	return p != nil && p.Roles.HasAny(RoleAdmin, RoleTecnico)
}
