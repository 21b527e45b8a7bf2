package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
)

func newTestService() *Service {
	svc := NewService(mongodb.NewMemoryRepository(), nil)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	require.NoError(t, svc.Register(ctx, "clerk", "s3cret", models.ScopeUser))

	id, err := svc.Authenticate(ctx, "clerk", "s3cret", models.ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{Username: "clerk", Scope: models.ScopeUser}, id)

	_, err = svc.Authenticate(ctx, "clerk", "wrong", models.ScopeUser)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Authenticate(ctx, "nobody", "s3cret", models.ScopeUser)
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAuthenticate_AdminScope(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	require.NoError(t, svc.Register(ctx, "clerk", "pw", models.ScopeUser))
	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "pw"))
	require.NoError(t, svc.EnsureAdmin(ctx, "boss", "pw"))

	_, err := svc.Authenticate(ctx, "clerk", "pw", models.ScopeAdmin)
	assert.True(t, errors.Is(err, ErrForbidden))

	id, err := svc.Authenticate(ctx, "boss", "pw", models.ScopeAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeAdmin, id.Scope)

	_, err = svc.Authenticate(ctx, "boss", "pw", models.ScopeUser)
	assert.NoError(t, err)
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	require.NoError(t, svc.Register(ctx, "clerk", "pw", models.ScopeUser))

	assert.True(t, errors.Is(svc.Register(ctx, "clerk", "pw2", models.ScopeUser), ErrUserExists))
	assert.True(t, errors.Is(svc.Register(ctx, "x", "pw", models.Scope("root")), ErrInvalidScope))
	assert.True(t, errors.Is(svc.Register(ctx, " ", "pw", models.ScopeUser), ErrMissingCredentials))
	assert.True(t, errors.Is(svc.Register(ctx, "clerk2", "", models.ScopeUser), ErrMissingCredentials))
}
