package service

import (
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TechnicianService manages technician records.
type TechnicianService struct {
	personService
}

// NewTechnicianService constructs the service.
func NewTechnicianService(deps PersonDependencies) *TechnicianService {
	return &TechnicianService{personService: newPersonService(domain.PersonKindTechnician, authz.ResourceTechnician, deps, technicianRoles)}
}

// technicianRoles always keeps TECNICO. On update a nil role list keeps the
// stored roles. Granting or revoking ADMIN requires an administrator, and an
// administrator may not revoke their own ADMIN role.
func technicianRoles(p *domain.Principal, input PersonInput, existing *domain.Person) (domain.RoleSet, error) {
	if input.Roles == nil && existing != nil {
		return existing.Roles, nil
	}
	roles := domain.NewRoleSet(domain.RoleTecnico)
	for _, r := range input.Roles {
		switch r {
		case domain.RoleTecnico:
		case domain.RoleAdmin:
			alreadyAdmin := existing != nil && existing.Roles.Has(domain.RoleAdmin)
			if !alreadyAdmin {
				if err := authz.Check(p, authz.ActionAssignRoles, authz.Kind(authz.ResourceTechnician)); err != nil {
					return nil, err
				}
			}
			roles.Add(domain.RoleAdmin)
		default:
			return nil, apperrors.NewValidationError("technicians may only hold TECNICO and ADMIN roles",
				map[string]any{"role": string(r)})
		}
	}
	if existing != nil && existing.Roles.Has(domain.RoleAdmin) && !roles.Has(domain.RoleAdmin) {
		if err := authz.Check(p, authz.ActionAssignRoles, authz.Kind(authz.ResourceTechnician)); err != nil {
			return nil, err
		}
		if p.ID == existing.ID {
			return nil, apperrors.NewForbidden("administrators cannot revoke their own ADMIN role")
		}
	}
	return roles, nil
}
