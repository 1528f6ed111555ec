package service

import (
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ClientService manages client records. Only administrators write; a plain
// client sees nothing but its own record.
type ClientService struct {
	personService
}

// NewClientService constructs the service.
func NewClientService(deps PersonDependencies) *ClientService {
	return &ClientService{personService: newPersonService(domain.PersonKindClient, authz.ResourceClient, deps, clientRoles)}
}

func clientRoles(_ *domain.Principal, input PersonInput, _ *domain.Person) (domain.RoleSet, error) {
	for _, r := range input.Roles {
		if r != domain.RoleCliente {
			return nil, apperrors.NewValidationError("clients may only hold the CLIENTE role",
				map[string]any{"role": string(r)})
		}
	}
	return domain.NewRoleSet(domain.RoleCliente), nil
}
