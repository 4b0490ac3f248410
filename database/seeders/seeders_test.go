package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
)

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemory().Users()
	var out bytes.Buffer
	env := Env{Auth: services.NewAuthService(users), AdminUsername: "admin", AdminPassword: "s3cret", Out: &out}

	require.NoError(t, RunAll(ctx, env))
	require.NoError(t, RunAll(ctx, env))
	assert.Contains(t, out.String(), "already exists")

	u, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword(u.Password, "s3cret"))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMemory().Users()
	var out bytes.Buffer

	require.NoError(t, SeedAdmin(ctx, Env{Auth: services.NewAuthService(users), Out: &out}))
	assert.Contains(t, out.String(), "skipped")

	_, err := users.FindByUsername(ctx, "")
	assert.ErrorIs(t, err, repositories.ErrNoRecord)
}
