package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// PersonRequest is the create/update payload for clients and technicians.
// Senha is write-only; it never appears in responses.
type PersonRequest struct {
	Nome   string   `json:"nome"`
	CPF    string   `json:"cpf"`
	Email  string   `json:"email"`
	Senha  string   `json:"senha"`
	Perfis []string `json:"perfis"`
}

// ToInput converts the payload to service input. A missing perfis field
// stays nil so updates keep the stored roles.
func (r PersonRequest) ToInput() service.PersonInput {
	var roles []domain.Role
	if r.Perfis != nil {
		roles = make([]domain.Role, 0, len(r.Perfis))
		for _, p := range r.Perfis {
			roles = append(roles, domain.Role(p))
		}
	}
	return service.PersonInput{
		Name:     r.Nome,
		TaxID:    r.CPF,
		Email:    r.Email,
		Password: r.Senha,
		Roles:    roles,
	}
}

// PersonResponse is the public view of a client or technician.
type PersonResponse struct {
	ID          int64    `json:"id"`
	Nome        string   `json:"nome"`
	CPF         string   `json:"cpf"`
	Email       string   `json:"email"`
	Perfis      []string `json:"perfis"`
	DataCriacao Date     `json:"dataCriacao"`
}

// NewPersonResponse renders a person.
func NewPersonResponse(p *domain.Person) PersonResponse {
	return PersonResponse{
		ID:          p.ID,
		Nome:        p.Name,
		CPF:         p.TaxID,
		Email:       p.Email,
		Perfis:      p.Roles.Strings(),
		DataCriacao: Date(p.CreatedAt),
	}
}

// NewPersonResponses renders a list, never nil.
func NewPersonResponses(persons []domain.Person) []PersonResponse {
	out := make([]PersonResponse, 0, len(persons))
	for i := range persons {
		out = append(out, NewPersonResponse(&persons[i]))
	}
	return out
}

// LoginRequest carries credentials. Password is accepted as an alias of Senha.
type LoginRequest struct {
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	Password string `json:"password"`
}

// Secret returns whichever password field was supplied.
func (r LoginRequest) Secret() string {
	if r.Senha != "" {
		return r.Senha
	}
	return r.Password
}
