package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// personService is satisfied by both service.ClientService and
// service.TechnicianService.
type personService interface {
	List(ctx context.Context, p *domain.Principal) ([]domain.Person, error)
	Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Person, error)
	Create(ctx context.Context, p *domain.Principal, input service.PersonInput) (*domain.Person, error)
	Update(ctx context.Context, p *domain.Principal, id int64, input service.PersonInput) (*domain.Person, error)
	Delete(ctx context.Context, p *domain.Principal, id int64) error
}

// PersonsHandler serves /clientes and /tecnicos.
type PersonsHandler struct {
	service personService
}

// NewClientsHandler serves client endpoints.
func NewClientsHandler(svc *service.ClientService) *PersonsHandler {
	return &PersonsHandler{service: svc}
}

// NewTechniciansHandler serves technician endpoints.
func NewTechniciansHandler(svc *service.TechnicianService) *PersonsHandler {
	return &PersonsHandler{service: svc}
}

// List GET /.
func (h *PersonsHandler) List(c *fiber.Ctx) error {
	persons, err := h.service.List(c.UserContext(), auth.PrincipalFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPersonResponses(persons))
}

// Get GET /:id.
func (h *PersonsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	person, err := h.service.Get(c.UserContext(), auth.PrincipalFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPersonResponse(person))
}

// Create POST /.
func (h *PersonsHandler) Create(c *fiber.Ctx) error {
	var req dto.PersonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	person, err := h.service.Create(c.UserContext(), auth.PrincipalFromContext(c), req.ToInput())
	if err != nil {
		return err
	}
	return created(c, person.ID, dto.NewPersonResponse(person))
}

// Update PUT /:id.
func (h *PersonsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.PersonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	person, err := h.service.Update(c.UserContext(), auth.PrincipalFromContext(c), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPersonResponse(person))
}

// Delete DELETE /:id.
func (h *PersonsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), auth.PrincipalFromContext(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
