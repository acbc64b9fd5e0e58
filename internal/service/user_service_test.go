package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/domain"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.registeredUser(t, phone, "asha@example.com")
	env.registeredUser(t, "9123456780", "taken@example.com")

	name := "Asha K"
	addr := domain.Address{City: "Pune", Country: "IN"}
	updated, err := env.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "Pune", updated.Address.City)

	taken := "TAKEN@example.com"
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: &taken})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	bad := "not-an-email"
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Email: &bad})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	pending := env.verifiedUser(t, "9000000001")
	_, err = env.users.UpdateProfile(ctx, pending.ID, ProfileUpdate{Name: &name})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.verifiedUser(t, phone)

	assert.True(t, apperrors.IsCode(env.users.Deactivate(ctx, user.ID, user.ID), apperrors.CodeForbidden))
	assert.True(t, apperrors.IsCode(env.users.Deactivate(ctx, "admin", "missing"), apperrors.CodeNotFound))

	require.NoError(t, env.users.Deactivate(ctx, "admin", user.ID))
	got, err := env.users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	listed, err := env.users.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, listed.Total)
}
