package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestSeedLoadsOnceIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	svc := NewSeedService(store.Persons(), store.Tickets(), hasher, nil)

	ran, err := svc.Seed(ctx, "123")
	require.NoError(t, err)
	assert.True(t, ran)

	techs, err := store.Persons().List(ctx, domain.PersonKindTechnician)
	require.NoError(t, err)
	assert.Len(t, techs, 5)
	clients, err := store.Persons().List(ctx, domain.PersonKindClient)
	require.NoError(t, err)
	assert.Len(t, clients, 3)

	admin, err := store.Persons().GetByEmail(ctx, "admin@mail.com")
	require.NoError(t, err)
	assert.True(t, admin.Roles.Has(domain.RoleAdmin))
	assert.True(t, admin.Roles.Has(domain.RoleTecnico))
	assert.True(t, hasher.Verify(admin.PasswordHash, "123"))

	tickets, err := store.Tickets().List(ctx, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, tickets, 9)
	for _, tk := range tickets {
		assert.Equal(t, tk.Status == domain.TicketStatusClosed, tk.ClosedAt != nil, tk.Title)
	}

	ran, err = svc.Seed(ctx, "123")
	require.NoError(t, err)
	assert.False(t, ran)
	count, err := store.Persons().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
}
