package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hashed, err := h.Hash("123")
	require.NoError(t, err)
	assert.NotEqual(t, "123", hashed)
	assert.True(t, h.Verify(hashed, "123"))
	assert.False(t, h.Verify(hashed, "1234"))
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	principal := &domain.Principal{ID: 42, Email: "a@x.com", Roles: domain.NewRoleSet(domain.RoleTecnico, domain.RoleAdmin)}

	token, exp, err := tm.GenerateToken(principal)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	id, err := claims.PersonID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, []string{"ADMIN", "TECNICO"}, claims.Roles)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken(&domain.Principal{ID: 1, Roles: domain.NewRoleSet()})
	require.NoError(t, err)

	_, err = NewTokenManager("other", 1).ParseToken(token)
	assert.Error(t, err)

	later := NewTokenManager("secret", 1)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.ParseToken(token)
	assert.Error(t, err)
}

func newProtectedApp(t *testing.T) (*fiber.App, *TokenManager, *domain.Person) {
	t.Helper()
	store := memory.NewStore()
	person := &domain.Person{Kind: domain.PersonKindClient, Name: "Linus", TaxID: "1", Email: "linus@mail.com"}
	person.EnsureDefaultRole()
	require.NoError(t, store.Persons().Create(context.Background(), person))

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, store.Persons())

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"id": p.ID, "roles": p.Roles.Strings()})
	})
	return app, tm, person
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, person := newProtectedApp(t)
	token, _, err := tm.GenerateToken(PrincipalOf(person))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthMiddlewareUnknownSubject(t *testing.T) {
	app, tm, _ := newProtectedApp(t)
	token, _, err := tm.GenerateToken(&domain.Principal{ID: 999, Roles: domain.NewRoleSet(domain.RoleAdmin)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPrincipalOfAddsKindRole(t *testing.T) {
	p := PrincipalOf(&domain.Person{ID: 3, Kind: domain.PersonKindTechnician, Roles: domain.NewRoleSet(domain.RoleAdmin)})
	assert.True(t, p.HasRole(domain.RoleAdmin))
	assert.True(t, p.HasRole(domain.RoleTecnico))
	assert.False(t, p.HasRole(domain.RoleCliente))
}

func TestWithPrincipalRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if c.Query("as") != "" {
			WithPrincipal(c, &domain.Principal{ID: 42, Roles: domain.NewRoleSet(domain.RoleTecnico)})
		}
		p := PrincipalFromContext(c)
		if p == nil {
			return c.SendStatus(http.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"id": p.ID})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/whoami?as=tech", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
