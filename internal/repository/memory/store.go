// Package memory provides map-backed repositories with the same constraints
// as the Postgres schema: unique tax id and email across persons, and
// ticket references that block person deletion.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Store holds persons and tickets behind a single lock.
type Store struct {
	mu           sync.RWMutex
	persons      map[int64]domain.Person
	tickets      map[int64]domain.Ticket
	nextPersonID int64
	nextTicketID int64
	now          func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		persons: make(map[int64]domain.Person),
		tickets: make(map[int64]domain.Ticket),
		now:     time.Now,
	}
}

// Persons returns the person repository view of the store.
func (s *Store) Persons() repository.PersonRepository { return personRepo{s} }

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

type personRepo struct{ s *Store }

func (r personRepo) Create(_ context.Context, person *domain.Person) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duplicateLocked(person.TaxID, person.Email, 0) {
		return repository.ErrDuplicate
	}
	s.nextPersonID++
	person.ID = s.nextPersonID
	person.CreatedAt = s.now()
	s.persons[person.ID] = clonePerson(*person)
	return nil
}

func (r personRepo) Update(_ context.Context, person *domain.Person) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.persons[person.ID]
	if !ok || stored.Kind != person.Kind {
		return repository.ErrNotFound
	}
	if s.duplicateLocked(person.TaxID, person.Email, person.ID) {
		return repository.ErrDuplicate
	}
	updated := clonePerson(*person)
	updated.CreatedAt = stored.CreatedAt
	s.persons[person.ID] = updated
	return nil
}

func (r personRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[id]; !ok {
		return repository.ErrNotFound
	}
	for _, t := range s.tickets {
		if t.ClientID == id || t.TechnicianID == id {
			return repository.ErrReferenced
		}
	}
	delete(s.persons, id)
	return nil
}

func (r personRepo) GetByID(_ context.Context, id int64) (*domain.Person, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := clonePerson(p)
	return &out, nil
}

func (r personRepo) GetByTaxID(_ context.Context, taxID string) (*domain.Person, error) {
	return r.find(func(p domain.Person) bool { return p.TaxID == taxID })
}

func (r personRepo) GetByEmail(_ context.Context, email string) (*domain.Person, error) {
	return r.find(func(p domain.Person) bool { return p.Email == email })
}

func (r personRepo) List(_ context.Context, kind domain.PersonKind) ([]domain.Person, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Person
	for _, p := range s.persons {
		if p.Kind == kind {
			out = append(out, clonePerson(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r personRepo) Count(_ context.Context) (int64, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.persons)), nil
}

func (r personRepo) find(match func(domain.Person) bool) (*domain.Person, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if match(p) {
			out := clonePerson(p)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) duplicateLocked(taxID, email string, exclude int64) bool {
	for id, p := range s.persons {
		if id == exclude {
			continue
		}
		if p.TaxID == taxID || p.Email == email {
			return true
		}
	}
	return false
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.referencesExistLocked(ticket) {
		return repository.ErrReferenced
	}
	s.nextTicketID++
	ticket.ID = s.nextTicketID
	s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !s.referencesExistLocked(ticket) {
		return repository.ErrReferenced
	}
	updated := cloneTicket(*ticket)
	updated.OpenedAt = stored.OpenedAt
	s.tickets[ticket.ID] = updated
	return nil
}

func (r ticketRepo) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tickets, id)
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s.withNamesLocked(t)
	return &out, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Ticket
	for _, t := range s.tickets {
		if filter.ClientID != nil && t.ClientID != *filter.ClientID {
			continue
		}
		if filter.TechnicianID != nil && t.TechnicianID != *filter.TechnicianID {
			continue
		}
		out = append(out, s.withNamesLocked(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) referencesExistLocked(t *domain.Ticket) bool {
	_, techOK := s.persons[t.TechnicianID]
	_, clientOK := s.persons[t.ClientID]
	return techOK && clientOK
}

func (s *Store) withNamesLocked(t domain.Ticket) domain.Ticket {
	out := cloneTicket(t)
	out.TechnicianName = s.persons[t.TechnicianID].Name
	out.ClientName = s.persons[t.ClientID].Name
	return out
}

func clonePerson(p domain.Person) domain.Person {
	roles := domain.NewRoleSet()
	for r := range p.Roles {
		roles.Add(r)
	}
	p.Roles = roles
	return p
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.ClosedAt != nil {
		closed := *t.ClosedAt
		t.ClosedAt = &closed
	}
	return t
}
