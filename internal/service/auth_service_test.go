package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.clients.Create(ctx, f.admin, PersonInput{Name: "Linus", TaxID: "10", Email: "linus@mail.com", Password: "123"})
	require.NoError(t, err)

	tokens := auth.NewTokenManager("secret", 5)
	svc := NewAuthService(AuthDependencies{PersonRepo: f.persons, Hasher: f.hasher, Tokens: tokens})

	result, err := svc.Login(ctx, " linus@mail.com ", "123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.Person.PasswordHash)

	claims, err := tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "linus@mail.com", claims.Email)
	assert.Equal(t, []string{"CLIENTE"}, claims.Roles)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "linus@mail.com", "1234"},
		{"unknown email", "nobody@mail.com", "123"},
		{"empty password", "linus@mail.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			requireCode(t, err, apperrors.CodeUnauthenticated)
			assert.Equal(t, "invalid email or password", err.Error())
		})
	}
}
