package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens  TokenIssuer
	persons repository.PersonRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenIssuer, persons repository.PersonRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, persons: persons}
}

// Handle enforces authentication for protected routes. Roles come from the
// stored person, not the token, so revoked roles and deleted accounts take
// effect immediately.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}
	id, err := claims.PersonID()
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token subject")
	}

	person, err := m.persons.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthenticated("account no longer exists")
		}
		return apperrors.MapError(err)
	}

	WithPrincipal(c, PrincipalOf(person))
	return c.Next()
}

// PrincipalOf derives the request principal from a stored person.
func PrincipalOf(person *domain.Person) *domain.Principal {
	roles := domain.NewRoleSet()
	for r := range person.Roles {
		roles.Add(r)
	}
	roles.Add(person.Kind.DefaultRole())
	return &domain.Principal{ID: person.ID, Email: person.Email, Roles: roles}
}

// PrincipalFromContext retrieves the authenticated principal. It returns nil
// when the request carries none, which every service treats as unauthenticated.
func PrincipalFromContext(c *fiber.Ctx) *domain.Principal {
	principal, _ := c.Locals(principalKey).(*domain.Principal)
	return principal
}

// WithPrincipal attaches a principal to the request.
func WithPrincipal(c *fiber.Ctx, principal *domain.Principal) {
	c.Locals(principalKey, principal)
}
