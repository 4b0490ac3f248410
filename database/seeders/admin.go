package seeders

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the admin account named by ADMIN_USERNAME. An existing
// account is left untouched.
func SeedAdmin(ctx context.Context, env Env) error {
	if env.Out == nil {
		env.Out = io.Discard
	}
	if env.AdminUsername == "" || env.AdminPassword == "" {
		fmt.Fprint(env.Out, "(ADMIN_USERNAME/ADMIN_PASSWORD not set, skipped) ")
		return nil
	}

	_, err := env.Auth.Signup(ctx, services.SignupInput{
		Username: env.AdminUsername,
		Password: env.AdminPassword,
		Role:     string(models.RoleAdmin),
	})
	if errors.Is(err, services.ErrUsernameTaken) {
		logger.Info("seed: admin already exists", "username", env.AdminUsername)
		fmt.Fprint(env.Out, "(already exists) ")
		return nil
	}
	return err
}
