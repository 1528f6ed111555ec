package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// countingPersons records uniqueness lookups made through the repository.
type countingPersons struct {
	repository.PersonRepository
	taxLookups   int
	emailLookups int
}

func (c *countingPersons) GetByTaxID(ctx context.Context, taxID string) (*domain.Person, error) {
	c.taxLookups++
	return c.PersonRepository.GetByTaxID(ctx, taxID)
}

func (c *countingPersons) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	c.emailLookups++
	return c.PersonRepository.GetByEmail(ctx, email)
}

type fixture struct {
	store       *memory.Store
	persons     *countingPersons
	dispatcher  events.Dispatcher
	clients     *ClientService
	technicians *TechnicianService
	tickets     *TicketService
	hasher      auth.PasswordHasher
	now         time.Time

	admin *domain.Principal
	tech  *domain.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:      store,
		persons:    &countingPersons{PersonRepository: store.Persons()},
		dispatcher: events.NewInMemoryDispatcher(),
		hasher:     auth.NewBcryptHasher(bcrypt.MinCost),
		now:        time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
	}
	deps := PersonDependencies{PersonRepo: f.persons, Hasher: f.hasher, Dispatcher: f.dispatcher}
	f.clients = NewClientService(deps)
	f.technicians = NewTechnicianService(deps)
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo: store.Tickets(),
		PersonRepo: f.persons,
		Dispatcher: f.dispatcher,
		Clock:      func() time.Time { return f.now },
	})

	f.admin = f.seedPrincipal(t, domain.PersonKindTechnician, "admin", "000", "admin@mail.com", domain.RoleAdmin)
	f.tech = f.seedPrincipal(t, domain.PersonKindTechnician, "Bill", "001", "bill@mail.com")
	f.persons.taxLookups, f.persons.emailLookups = 0, 0
	return f
}

// seedPrincipal stores a person directly and returns its principal.
func (f *fixture) seedPrincipal(t *testing.T, kind domain.PersonKind, name, taxID, email string, extra ...domain.Role) *domain.Principal {
	t.Helper()
	person := &domain.Person{Kind: kind, Name: name, TaxID: taxID, Email: email, PasswordHash: "x", Roles: domain.NewRoleSet(extra...)}
	person.EnsureDefaultRole()
	require.NoError(t, f.store.Persons().Create(context.Background(), person))
	return auth.PrincipalOf(person)
}

func (f *fixture) newClient(t *testing.T, name, taxID, email string) *domain.Principal {
	t.Helper()
	return f.seedPrincipal(t, domain.PersonKindClient, name, taxID, email)
}

func (f *fixture) newTicket(t *testing.T, techID, clientID int64) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.Create(context.Background(), f.admin, TicketInput{
		Priority:     domain.TicketPriorityMedium,
		Title:        "Printer offline",
		TechnicianID: techID,
		ClientID:     clientID,
	})
	require.NoError(t, err)
	return ticket
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.Is(err, code), "expected %s, got %v", code, err)
}

func conflictField(t *testing.T, err error) string {
	t.Helper()
	requireCode(t, err, apperrors.CodeConflict)
	field, _ := apperrors.ToDomainError(err).Details["field"].(string)
	return field
}
