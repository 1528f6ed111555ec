package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// SeedService loads a demo data set into an empty store.
type SeedService struct {
	persons repository.PersonRepository
	tickets repository.TicketRepository
	hasher  auth.PasswordHasher
	logger  *zap.Logger
	now     func() time.Time
}

// NewSeedService builds the service.
func NewSeedService(persons repository.PersonRepository, tickets repository.TicketRepository, hasher auth.PasswordHasher, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{persons: persons, tickets: tickets, hasher: hasher, logger: logger, now: time.Now}
}

type seedPerson struct {
	kind  domain.PersonKind
	name  string
	taxID string
	email string
	admin bool
}

type seedTicket struct {
	priority   domain.TicketPriority
	status     domain.TicketStatus
	title      string
	notes      string
	technician int
	client     int
}

var seedPersons = []seedPerson{
	{domain.PersonKindTechnician, "admin", "00000000000", "admin@mail.com", true},
	{domain.PersonKindTechnician, "Bill Gates", "76045777093", "bill@mail.com", false},
	{domain.PersonKindTechnician, "Arisio", "7184712141243", "arisio@mail.com", false},
	{domain.PersonKindTechnician, "Steve Jobs", "12345678901", "steve@mail.com", false},
	{domain.PersonKindTechnician, "Ada Lovelace", "98765432100", "ada@mail.com", false},
	{domain.PersonKindClient, "Linus Torvalds", "70511744013", "linus@mail.com", false},
	{domain.PersonKindClient, "Guido van Rossum", "70511744014", "guido@mail.com", false},
	{domain.PersonKindClient, "Dennis Ritchie", "70511744015", "dennis@mail.com", false},
}

// technician and client index into seedPersons.
var seedTickets = []seedTicket{
	{domain.TicketPriorityMedium, domain.TicketStatusInProgress, "VPN access error", "first ticket", 1, 5},
	{domain.TicketPriorityHigh, domain.TicketStatusInProgress, "Slow login", "second ticket", 1, 6},
	{domain.TicketPriorityLow, domain.TicketStatusInProgress, "Software installation request", "third ticket", 2, 5},
	{domain.TicketPriorityHigh, domain.TicketStatusOpen, "Printer not printing", "fourth ticket", 3, 6},
	{domain.TicketPriorityMedium, domain.TicketStatusClosed, "Email password recovery", "fifth ticket", 4, 7},
	{domain.TicketPriorityLow, domain.TicketStatusClosed, "Antivirus update", "sixth ticket", 2, 7},
	{domain.TicketPriorityHigh, domain.TicketStatusInProgress, "Database server failure", "seventh ticket", 3, 5},
	{domain.TicketPriorityMedium, domain.TicketStatusInProgress, "Shared folder access request", "eighth ticket", 4, 6},
	{domain.TicketPriorityMedium, domain.TicketStatusInProgress, "Wi-Fi connection problem", "ninth ticket", 4, 5},
}

// Seed inserts the demo persons and tickets, all sharing password. It does
// nothing when any person already exists and reports whether it ran.
func (s *SeedService) Seed(ctx context.Context, password string) (bool, error) {
	count, err := s.persons.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count persons: %w", err)
	}
	if count > 0 {
		s.logger.Info("store already populated; skipping seed", zap.Int64("persons", count))
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}

	created := make([]*domain.Person, 0, len(seedPersons))
	for _, sp := range seedPersons {
		person := &domain.Person{
			Kind:         sp.kind,
			Name:         sp.name,
			TaxID:        sp.taxID,
			Email:        sp.email,
			PasswordHash: hash,
			Roles:        domain.NewRoleSet(),
		}
		if sp.admin {
			person.Roles.Add(domain.RoleAdmin)
		}
		person.EnsureDefaultRole()
		if err := s.persons.Create(ctx, person); err != nil {
			return false, fmt.Errorf("seed person %s: %w", sp.email, err)
		}
		created = append(created, person)
	}

	today := domain.DateOf(s.now())
	for _, st := range seedTickets {
		status := st.status
		ticket := &domain.Ticket{
			OpenedAt:     today,
			Priority:     st.priority,
			Status:       domain.TicketStatusOpen,
			Title:        st.title,
			Notes:        st.notes,
			TechnicianID: created[st.technician].ID,
			ClientID:     created[st.client].ID,
		}
		ticket.ApplyStatus(&status, today)
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return false, fmt.Errorf("seed ticket %q: %w", st.title, err)
		}
	}

	s.logger.Info("seed data loaded",
		zap.Int("persons", len(seedPersons)),
		zap.Int("tickets", len(seedTickets)))
	return true, nil
}
