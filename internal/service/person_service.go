package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// PersonInput carries create/update fields for clients and technicians.
// An empty Password on update keeps the stored hash.
type PersonInput struct {
	Name     string
	TaxID    string
	Email    string
	Password string
	Roles    []domain.Role
}

// PersonDependencies bundles collaborators for the client and technician services.
type PersonDependencies struct {
	PersonRepo repository.PersonRepository
	Hasher     auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// rolePolicy computes the role set to store for a create (existing == nil)
// or update, authorizing any grant it implies.
type rolePolicy func(p *domain.Principal, input PersonInput, existing *domain.Person) (domain.RoleSet, error)

// personService implements the CRUD flow shared by clients and technicians:
// authorize, validate, check uniqueness, persist, strip the password hash.
type personService struct {
	kind       domain.PersonKind
	resource   authz.ResourceKind
	persons    repository.PersonRepository
	validator  *IntegrityValidator
	hasher     auth.PasswordHasher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	roles      rolePolicy
}

func newPersonService(kind domain.PersonKind, resource authz.ResourceKind, deps PersonDependencies, roles rolePolicy) personService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return personService{
		kind:       kind,
		resource:   resource,
		persons:    deps.PersonRepo,
		validator:  NewIntegrityValidator(deps.PersonRepo),
		hasher:     deps.Hasher,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		roles:      roles,
	}
}

func (s *personService) target(id int64) authz.Resource {
	return authz.Resource{Kind: s.resource, ID: id}
}

// List returns the persons of this kind visible to the principal.
func (s *personService) List(ctx context.Context, p *domain.Principal) ([]domain.Person, error) {
	scope, err := authz.ListScope(p, s.resource)
	if err != nil {
		return nil, err
	}
	if scope.SelfID != nil {
		self, err := s.load(ctx, *scope.SelfID)
		if err != nil {
			return nil, err
		}
		return []domain.Person{self.Sanitized()}, nil
	}
	if !scope.All {
		return []domain.Person{}, nil
	}

	persons, err := s.persons.List(ctx, s.kind)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	out := make([]domain.Person, 0, len(persons))
	for _, person := range persons {
		out = append(out, person.Sanitized())
	}
	return out, nil
}

// Get returns one person by id.
func (s *personService) Get(ctx context.Context, p *domain.Principal, id int64) (*domain.Person, error) {
	if err := authz.Check(p, authz.ActionRead, s.target(id)); err != nil {
		return nil, err
	}
	person, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out := person.Sanitized()
	return &out, nil
}

// Create registers a new person with a freshly hashed password.
func (s *personService) Create(ctx context.Context, p *domain.Principal, input PersonInput) (*domain.Person, error) {
	if err := authz.Check(p, authz.ActionCreate, authz.Kind(s.resource)); err != nil {
		return nil, err
	}
	input = normalizePersonInput(input)
	if err := validatePersonInput(input, true); err != nil {
		return nil, err
	}
	roles, err := s.roles(p, input, nil)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUnique(ctx, s.kind, input.TaxID, input.Email, nil); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	person := &domain.Person{
		Kind:         s.kind,
		Name:         input.Name,
		TaxID:        input.TaxID,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
	}
	person.EnsureDefaultRole()
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, s.persistError(ctx, err, input, nil)
	}

	s.logger.Info("person created",
		zap.String("kind", string(s.kind)),
		zap.Int64("person_id", person.ID),
		zap.Int64("actor_id", p.ID))
	s.publish(ctx, p, events.EventPersonCreated, person)
	out := person.Sanitized()
	return &out, nil
}

// Update replaces the person's fields. Uniqueness is only re-checked when
// the tax id or email actually changes.
func (s *personService) Update(ctx context.Context, p *domain.Principal, id int64, input PersonInput) (*domain.Person, error) {
	if err := authz.Check(p, authz.ActionUpdate, s.target(id)); err != nil {
		return nil, err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	input = normalizePersonInput(input)
	if err := validatePersonInput(input, false); err != nil {
		return nil, err
	}
	roles, err := s.roles(p, input, existing)
	if err != nil {
		return nil, err
	}
	if identityChanged(existing, input.TaxID, input.Email) {
		if err := s.validator.ValidateUnique(ctx, s.kind, input.TaxID, input.Email, &id); err != nil {
			return nil, err
		}
	}

	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		existing.PasswordHash = hash
	}
	existing.Name = input.Name
	existing.TaxID = input.TaxID
	existing.Email = input.Email
	existing.Roles = roles
	existing.EnsureDefaultRole()

	if err := s.persons.Update(ctx, existing); err != nil {
		return nil, s.persistError(ctx, err, input, &id)
	}
	out := existing.Sanitized()
	return &out, nil
}

// Delete removes a person that no ticket references.
func (s *personService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	if err := authz.Check(p, authz.ActionDelete, s.target(id)); err != nil {
		return err
	}
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.persons.Delete(ctx, id); err != nil {
		return s.persistError(ctx, err, PersonInput{}, &id)
	}
	s.logger.Info("person deleted",
		zap.String("kind", string(s.kind)),
		zap.Int64("person_id", id),
		zap.Int64("actor_id", p.ID))
	s.publish(ctx, p, events.EventPersonDeleted, existing)
	return nil
}

// load fetches a person of this service's kind; other kinds are not found.
func (s *personService) load(ctx context.Context, id int64) (*domain.Person, error) {
	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(s.kind.Label(), id)
		}
		return nil, apperrors.MapError(err)
	}
	if person.Kind != s.kind {
		return nil, apperrors.NewNotFound(s.kind.Label(), id)
	}
	return person, nil
}

// persistError maps store failures. A duplicate that slipped past the
// uniqueness check is looked up again to name the colliding field.
func (s *personService) persistError(ctx context.Context, err error, input PersonInput, excludeID *int64) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		if conflict := s.validator.ValidateUnique(ctx, s.kind, input.TaxID, input.Email, excludeID); apperrors.Is(conflict, apperrors.CodeConflict) {
			return conflict
		}
		return apperrors.NewConflict("taxId or email", s.kind.Label()+": tax id or email already registered")
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.NewConflict("tickets", s.kind.Label()+" still has tickets and cannot be deleted")
	}
	return apperrors.MapError(err)
}

func (s *personService) publish(ctx context.Context, p *domain.Principal, eventType events.EventType, person *domain.Person) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  person.ID,
		Actor:     actorOf(p),
		Timestamp: time.Now(),
		Payload: events.PersonPayload{
			Kind:  person.Kind,
			Name:  person.Name,
			Email: person.Email,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func normalizePersonInput(input PersonInput) PersonInput {
	input.Name = strings.TrimSpace(input.Name)
	input.TaxID = strings.TrimSpace(input.TaxID)
	input.Email = strings.TrimSpace(input.Email)
	return input
}

func actorOf(p *domain.Principal) events.Actor {
	if p == nil {
		return events.Actor{}
	}
	return events.Actor{PersonID: p.ID, Roles: p.Roles.Strings()}
}
