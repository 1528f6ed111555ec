package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketInput carries the replace-style fields of a ticket. A nil Status
// defaults to OPEN on create and keeps the stored status on update.
type TicketInput struct {
	Priority     domain.TicketPriority
	Status       *domain.TicketStatus
	Title        string
	Notes        string
	TechnicianID int64
	ClientID     int64
}

// TicketDependencies wires the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	PersonRepo repository.PersonRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// TicketService orchestrates ticket CRUD.
type TicketService struct {
	tickets    repository.TicketRepository
	persons    repository.PersonRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		persons:    deps.PersonRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// List returns the tickets visible to the principal: all for ADMIN, the
// assigned ones for TECNICO, the opened ones otherwise.
func (s *TicketService) List(ctx context.Context, p *domain.Principal) ([]domain.Ticket, error) {
	scope, err := authz.ListScope(p, authz.ResourceTicket)
	if err != nil {
		return nil, err
	}
	filter := repository.TicketFilter{ClientID: scope.ClientID, TechnicianID: scope.TechnicianID}
	if !scope.All && filter.ClientID == nil && filter.TechnicianID == nil {
		return []domain.Ticket{}, nil
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get fetches a ticket the principal is allowed to see.
func (s *TicketService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Ticket, error) {
	if err := authz.Check(p, authz.ActionReadAll, authz.Kind(authz.ResourceTicket)); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ActionRead, authz.Ticket(ticket)); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Create opens a ticket after resolving its technician and client.
func (s *TicketService) Create(ctx context.Context, p *domain.Principal, input TicketInput) (*domain.Ticket, error) {
	if err := authz.Check(p, authz.ActionCreate, authz.Kind(authz.ResourceTicket)); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}
	technician, client, err := s.resolveParties(ctx, input)
	if err != nil {
		return nil, err
	}

	today := domain.DateOf(s.now())
	ticket := &domain.Ticket{
		OpenedAt:       today,
		Priority:       input.Priority,
		Status:         domain.TicketStatusOpen,
		Title:          input.Title,
		Notes:          input.Notes,
		TechnicianID:   technician.ID,
		ClientID:       client.ID,
		TechnicianName: technician.Name,
		ClientName:     client.Name,
	}
	ticket.ApplyStatus(input.Status, today)

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, s.persistError(err, 0, input)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("client_id", ticket.ClientID),
		zap.Int64("technician_id", ticket.TechnicianID),
		zap.Int64("actor_id", p.ID))
	s.publish(ctx, p, events.EventTicketCreated, ticket.ID, events.TicketCreatedPayload{
		Title:        ticket.Title,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		TechnicianID: ticket.TechnicianID,
		ClientID:     ticket.ClientID,
	})
	return ticket, nil
}

// Update replaces the ticket's fields. The technician and client are
// re-resolved on every update; a status change maintains the closing date.
func (s *TicketService) Update(ctx context.Context, p *domain.Principal, id int64, input TicketInput) (*domain.Ticket, error) {
	if err := authz.Check(p, authz.ActionUpdate, authz.Kind(authz.ResourceTicket)); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(p, authz.ActionUpdate, authz.Ticket(ticket)); err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}
	technician, client, err := s.resolveParties(ctx, input)
	if err != nil {
		return nil, err
	}

	previous := ticket.Status
	ticket.ApplyStatus(input.Status, domain.DateOf(s.now()))
	ticket.Priority = input.Priority
	ticket.Title = input.Title
	ticket.Notes = input.Notes
	ticket.TechnicianID = technician.ID
	ticket.ClientID = client.ID
	ticket.TechnicianName = technician.Name
	ticket.ClientName = client.Name

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.persistError(err, id, input)
	}

	s.publish(ctx, p, events.EventTicketUpdated, ticket.ID, nil)
	if previous != ticket.Status {
		s.logger.Info("ticket status changed",
			zap.Int64("ticket_id", ticket.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(ticket.Status)))
		s.publish(ctx, p, events.EventTicketStatusChanged, ticket.ID, events.TicketStatusChangedPayload{
			OldStatus: previous,
			NewStatus: ticket.Status,
			ClosedAt:  ticket.ClosedAt,
		})
	}
	return ticket, nil
}

// Delete removes a ticket. Only administrators may delete.
func (s *TicketService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	if err := authz.Check(p, authz.ActionDelete, authz.Kind(authz.ResourceTicket)); err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Ticket", id)
		}
		return apperrors.MapError(err)
	}
	s.logger.Info("ticket deleted", zap.Int64("ticket_id", id), zap.Int64("actor_id", p.ID))
	s.publish(ctx, p, events.EventTicketDeleted, id, nil)
	return nil
}

func (s *TicketService) load(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Ticket", id)
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// resolveParties loads the referenced technician and client, naming the
// reference that failed to resolve.
func (s *TicketService) resolveParties(ctx context.Context, input TicketInput) (*domain.Person, *domain.Person, error) {
	technician, err := s.resolvePerson(ctx, input.TechnicianID, domain.PersonKindTechnician)
	if err != nil {
		return nil, nil, err
	}
	client, err := s.resolvePerson(ctx, input.ClientID, domain.PersonKindClient)
	if err != nil {
		return nil, nil, err
	}
	return technician, client, nil
}

func (s *TicketService) resolvePerson(ctx context.Context, id int64, kind domain.PersonKind) (*domain.Person, error) {
	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(kind.Label(), id)
		}
		return nil, apperrors.MapError(err)
	}
	if person.Kind != kind {
		return nil, apperrors.NewNotFound(kind.Label(), id)
	}
	return person, nil
}

// persistError handles a reference that vanished between resolution and write.
func (s *TicketService) persistError(err error, id int64, input TicketInput) error {
	if errors.Is(err, repository.ErrReferenced) {
		return apperrors.NewValidationError("ticket references a person that no longer exists",
			map[string]any{"technician": input.TechnicianID, "client": input.ClientID})
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("Ticket", id)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publish(ctx context.Context, p *domain.Principal, eventType events.EventType, ticketID int64, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  ticketID,
		Actor:     actorOf(p),
		Timestamp: s.now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
