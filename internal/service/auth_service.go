package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const invalidCredentials = "invalid email or password"

// AuthDependencies wires the login flow.
type AuthDependencies struct {
	PersonRepo repository.PersonRepository
	Hasher     auth.PasswordHasher
	Tokens     auth.TokenIssuer
	Logger     *zap.Logger
}

// AuthService exchanges credentials for bearer tokens.
type AuthService struct {
	persons repository.PersonRepository
	hasher  auth.PasswordHasher
	tokens  auth.TokenIssuer
	logger  *zap.Logger
}

// LoginResult carries the issued token and the authenticated person.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Person    domain.Person
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{persons: deps.PersonRepo, hasher: deps.Hasher, tokens: deps.Tokens, logger: logger}
}

// Login verifies email and password. Unknown emails and wrong passwords fail
// with the same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewUnauthenticated(invalidCredentials)
	}

	person, err := s.persons.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("login for unknown email", zap.String("email", email))
			return nil, apperrors.NewUnauthenticated(invalidCredentials)
		}
		return nil, apperrors.MapError(err)
	}
	if !s.hasher.Verify(person.PasswordHash, password) {
		s.logger.Debug("login with wrong password", zap.Int64("person_id", person.ID))
		return nil, apperrors.NewUnauthenticated(invalidCredentials)
	}

	token, exp, err := s.tokens.GenerateToken(auth.PrincipalOf(person))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Person: person.Sanitized()}, nil
}
