// Package authz holds the access rules for clients, technicians and tickets.
//
// Every rule lives in the table below so the full policy can be read in one
// place. Authorize is a pure function of the principal, the action and the
// target resource; it never touches storage. Listing endpoints do not deny,
// they narrow: ListScope tells the caller which rows a principal may see.
package authz

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Action is an operation attempted on a resource.
type Action string

const (
	ActionRead        Action = "read"
	ActionReadAll     Action = "read_all"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionAssignRoles Action = "assign_roles"
)

// ResourceKind identifies the entity an action targets.
type ResourceKind string

const (
	ResourceClient     ResourceKind = "client"
	ResourceTechnician ResourceKind = "technician"
	ResourceTicket     ResourceKind = "ticket"
)

// Resource describes the target of an action. Owner references are only
// consulted by rules that need them: ID for a client's own record, ClientID
// and TechnicianID for a ticket.
type Resource struct {
	Kind         ResourceKind
	ID           int64
	ClientID     int64
	TechnicianID int64
}

// Client targets a client record.
func Client(id int64) Resource { return Resource{Kind: ResourceClient, ID: id} }

// Technician targets a technician record.
func Technician(id int64) Resource { return Resource{Kind: ResourceTechnician, ID: id} }

// Ticket targets a ticket and its owning parties.
func Ticket(t *domain.Ticket) Resource {
	if t == nil {
		return Resource{Kind: ResourceTicket}
	}
	return Resource{Kind: ResourceTicket, ID: t.ID, ClientID: t.ClientID, TechnicianID: t.TechnicianID}
}

// Kind targets a resource kind without a specific row.
func Kind(kind ResourceKind) Resource { return Resource{Kind: kind} }

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed         bool
	Unauthenticated bool
	Reason          string
}

// Err converts a denial into the matching domain error; nil when allowed.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Unauthenticated:
		return apperrors.NewUnauthenticated(d.Reason)
	default:
		return apperrors.NewForbidden(d.Reason)
	}
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

type rule func(p *domain.Principal, res Resource) Decision

type ruleKey struct {
	kind   ResourceKind
	action Action
}

func anyAuthenticated(*domain.Principal, Resource) Decision { return allow() }

func requireRoles(reason string, roles ...domain.Role) rule {
	return func(p *domain.Principal, _ Resource) Decision {
		if p.Roles.HasAny(roles...) {
			return allow()
		}
		return deny(reason)
	}
}

var rules = map[ruleKey]rule{
	{ResourceClient, ActionCreate}: requireRoles("only administrators may create clients", domain.RoleAdmin),
	{ResourceClient, ActionUpdate}: requireRoles("only administrators may update clients", domain.RoleAdmin),
	{ResourceClient, ActionDelete}: requireRoles("only administrators may delete clients", domain.RoleAdmin),
	{ResourceClient, ActionRead}: func(p *domain.Principal, res Resource) Decision {
		if p.IsStaff() || p.ID == res.ID {
			return allow()
		}
		return deny("clients may only view their own data")
	},
	{ResourceClient, ActionReadAll}: anyAuthenticated,

	{ResourceTechnician, ActionCreate}:      anyAuthenticated,
	{ResourceTechnician, ActionRead}:        anyAuthenticated,
	{ResourceTechnician, ActionReadAll}:     anyAuthenticated,
	{ResourceTechnician, ActionUpdate}:      requireRoles("only administrators may update technicians", domain.RoleAdmin),
	{ResourceTechnician, ActionDelete}:      requireRoles("only administrators may delete technicians", domain.RoleAdmin),
	{ResourceTechnician, ActionAssignRoles}: requireRoles("only administrators may grant the ADMIN role", domain.RoleAdmin),

	{ResourceTicket, ActionCreate}: requireRoles("a helpdesk role is required to open tickets",
		domain.RoleCliente, domain.RoleTecnico, domain.RoleAdmin),
	{ResourceTicket, ActionRead}: func(p *domain.Principal, res Resource) Decision {
		if p.IsStaff() || p.ID == res.ClientID {
			return allow()
		}
		return deny("you may only view your own tickets")
	},
	{ResourceTicket, ActionReadAll}: anyAuthenticated,
	{ResourceTicket, ActionUpdate}: requireRoles("only technicians or administrators may update tickets",
		domain.RoleTecnico, domain.RoleAdmin),
	{ResourceTicket, ActionDelete}: requireRoles("only administrators may delete tickets", domain.RoleAdmin),
}

// Authorize decides whether principal may perform action on res.
// A nil principal is always denied as unauthenticated.
func Authorize(p *domain.Principal, action Action, res Resource) Decision {
	if p == nil {
		return Decision{Unauthenticated: true, Reason: "not authenticated"}
	}
	r, ok := rules[ruleKey{res.Kind, action}]
	if !ok {
		return deny("action not permitted")
	}
	return r(p, res)
}

// Check is Authorize returning an error.
func Check(p *domain.Principal, action Action, res Resource) error {
	return Authorize(p, action, res).Err()
}
