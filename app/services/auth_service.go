package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
	"github.com/shashiranjanraj/tailorshop/pkg/validate"
)

type SignupInput struct {
	Username string `form:"username" json:"username" validate:"required,max=64"`
	Password string `form:"password" json:"password" validate:"required"`
	Role     string `form:"role"     json:"role"     validate:"required"`
}

type Credentials struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type AuthService struct {
	users UserStore
	hash  func(string) (string, error)
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users, hash: auth.HashPassword}
}

// Signup registers a new user. An existing username is never overwritten.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"role": err.Error()}}
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil || errors.Is(err, repositories.ErrMalformedRecord) {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNoRecord) {
		return nil, fmt.Errorf("signup: %w", err)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}
	u := &models.User{Username: in.Username, Password: hashed, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "username", u.Username, "role", u.Role)
	return u, nil
}

// Login returns the user whose stored password matches. Every failure,
// unknown user or wrong password, is ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, c Credentials) (*models.User, error) {
	if c.Username == "" || c.Password == "" {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByUsername(ctx, c.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNoRecord) || errors.Is(err, repositories.ErrMalformedRecord) {
			metrics.LoginAttempts.WithLabelValues("invalid").Inc()
			if errors.Is(err, repositories.ErrMalformedRecord) {
				logger.WithCtx(ctx).Warn("malformed user record", "username", c.Username, "error", err)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !auth.MatchPassword(u.Password, c.Password) {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return u, nil
}

// VerifyPassword re-checks the password of an already signed-in user.
func (s *AuthService) VerifyPassword(ctx context.Context, username, password string) error {
	_, err := s.Login(ctx, Credentials{Username: username, Password: password})
	return err
}
