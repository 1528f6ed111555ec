package authz

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Scope narrows a listing to the rows a principal may see.
// The zero value (All=false, no ids) matches nothing.
type Scope struct {
	All          bool
	SelfID       *int64
	ClientID     *int64
	TechnicianID *int64
}

// ListScope authorizes a ReadAll on kind and returns the filter to apply.
//
// Clients: staff see everyone, a plain CLIENTE sees only its own record.
// Tickets: ADMIN sees all, TECNICO sees tickets assigned to it, anyone else
// sees the tickets it opened as client. Technicians are visible to all.
func ListScope(p *domain.Principal, kind ResourceKind) (Scope, error) {
	if err := Check(p, ActionReadAll, Kind(kind)); err != nil {
		return Scope{}, err
	}
	id := p.ID
	switch kind {
	case ResourceClient:
		if p.IsStaff() {
			return Scope{All: true}, nil
		}
		return Scope{SelfID: &id}, nil
	case ResourceTicket:
		switch {
		case p.HasRole(domain.RoleAdmin):
			return Scope{All: true}, nil
		case p.HasRole(domain.RoleTecnico):
			return Scope{TechnicianID: &id}, nil
		default:
			return Scope{ClientID: &id}, nil
		}
	default:
		return Scope{All: true}, nil
	}
}
