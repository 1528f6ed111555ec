package domain

import (
	"sort"
	"time"
)

// Role is an authorization tag held by a person.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTecnico Role = "TECNICO"
	RoleCliente Role = "CLIENTE"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTecnico, RoleCliente:
		return true
	}
	return false
}

// PersonKind distinguishes the two concrete person records.
type PersonKind string

const (
	PersonKindClient     PersonKind = "CLIENT"
	PersonKindTechnician PersonKind = "TECHNICIAN"
)

// DefaultRole is the role implied by a person kind.
func (k PersonKind) DefaultRole() Role {
	if k == PersonKindTechnician {
		return RoleTecnico
	}
	return RoleCliente
}

// Label is the human name used in errors and logs.
func (k PersonKind) Label() string {
	if k == PersonKindTechnician {
		return "Technician"
	}
	return "Client"
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set contains at least one of roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Add inserts role into the set.
func (s RoleSet) Add(role Role) {
	s[role] = struct{}{}
}

// Slice returns the roles in a stable order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the roles as plain strings in a stable order.
func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RoleSetFromStrings parses stored role names, ignoring unknown values.
func RoleSetFromStrings(values []string) RoleSet {
	set := make(RoleSet, len(values))
	for _, v := range values {
		if r := Role(v); r.Valid() {
			set.Add(r)
		}
	}
	return set
}

// Person is the shared record behind clients and technicians.
type Person struct {
	ID           int64
	Kind         PersonKind
	Name         string
	TaxID        string
	Email        string
	PasswordHash string
	Roles        RoleSet
	CreatedAt    time.Time
}

// EnsureDefaultRole guarantees the role implied by the kind is present.
func (p *Person) EnsureDefaultRole() {
	if p.Roles == nil {
		p.Roles = NewRoleSet()
	}
	p.Roles.Add(p.Kind.DefaultRole())
}

// Sanitized returns a copy without the password hash.
func (p Person) Sanitized() Person {
	p.PasswordHash = ""
	roles := make(RoleSet, len(p.Roles))
	for r := range p.Roles {
		roles.Add(r)
	}
	p.Roles = roles
	return p
}
