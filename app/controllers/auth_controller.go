package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
)

type AuthController struct {
	Base
	auth *services.AuthService
}

func NewAuthController(base Base, auth *services.AuthService) *AuthController {
	return &AuthController{Base: base, auth: auth}
}

func (ctl *AuthController) Index(c *ctx.Context) {
	c.Redirect("/home")
}

func (ctl *AuthController) Home(c *ctx.Context) {
	ctl.render(c, "home", "Home", nil)
}

// Login shows the form on GET and signs the user in on POST.
func (ctl *AuthController) Login(c *ctx.Context) {
	if !c.IsPost() {
		ctl.render(c, "login", "Login", nil)
		return
	}

	var creds services.Credentials
	if err := c.BindForm(&creds); err != nil {
		c.Flash("Invalid credentials")
		ctl.render(c, "login", "Login", nil)
		return
	}

	user, err := ctl.auth.Login(c.Context(), creds)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logger.WithCtx(c.Context()).Error("login failed", "username", creds.Username, "error", err)
		}
		c.Flash("Invalid credentials")
		ctl.render(c, "login", "Login", nil)
		return
	}

	sess := c.Session()
	sess.Renew()
	sess.Set(middleware.SessionUsername, user.Username)
	sess.Set(middleware.SessionRole, string(user.Role))
	logger.WithCtx(c.Context()).Info("user signed in", "username", user.Username, "role", user.Role)
	c.Redirect(dashboardFor(user.Role))
}

func (ctl *AuthController) Signup(c *ctx.Context) {
	if !c.IsPost() {
		ctl.render(c, "signup", "Sign up", nil)
		return
	}

	var in services.SignupInput
	if err := c.BindForm(&in); err != nil {
		c.Flash(err.Error())
		ctl.render(c, "signup", "Sign up", nil)
		return
	}

	_, err := ctl.auth.Signup(c.Context(), in)
	switch {
	case err == nil:
		c.Flash("Signup successful! Please login.")
		c.Redirect(loginPage)
	case errors.Is(err, services.ErrUsernameTaken):
		c.Flash("Username already exists")
		ctl.render(c, "signup", "Sign up", nil)
	case flashValidation(c, err):
		ctl.render(c, "signup", "Sign up", nil)
	default:
		logger.WithCtx(c.Context()).Error("signup failed", "username", in.Username, "error", err)
		c.Flash(noticeStoreFailure)
		ctl.render(c, "signup", "Sign up", nil)
	}
}

// Logout drops the session data and its ID.
func (ctl *AuthController) Logout(c *ctx.Context) {
	sess := c.Session()
	sess.Clear()
	sess.Renew()
	c.Redirect(loginPage)
}
