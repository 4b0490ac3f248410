package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
)

// APIController serves the bearer-token JSON API.
type APIController struct {
	auth     *services.AuthService
	orders   *services.OrderService
	invoices *services.InvoiceService
	signer   *auth.Signer
}

func NewAPIController(a *services.AuthService, orders *services.OrderService, invoices *services.InvoiceService, signer *auth.Signer) *APIController {
	return &APIController{auth: a, orders: orders, invoices: invoices, signer: signer}
}

// Token exchanges credentials for a signed token.
func (ctl *APIController) Token(c *ctx.Context) {
	var creds services.Credentials
	if !c.BindJSON(&creds) {
		return
	}

	user, err := ctl.auth.Login(c.Context(), creds)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logger.WithCtx(c.Context()).Error("token login failed", "error", err)
			c.Error(http.StatusInternalServerError, "login failed")
			return
		}
		c.Unauthorized("Invalid credentials")
		return
	}

	token, err := ctl.signer.GenerateToken(user.Username, string(user.Role))
	if err != nil {
		logger.WithCtx(c.Context()).Error("token signing failed", "error", err)
		c.Error(http.StatusInternalServerError, "could not issue token")
		return
	}
	c.Success(map[string]string{"token": token})
}

// Orders lists every order for admins (optionally narrowed by ?bill_no=)
// and the caller's own orders for customers.
func (ctl *APIController) Orders(c *ctx.Context) {
	id, _ := middleware.IdentityFrom(c.Context())

	var (
		orders []models.Order
		err    error
	)
	switch {
	case !id.IsAdmin():
		orders, err = ctl.orders.ByMobile(c.Context(), id.Username)
	case c.Query("bill_no") != "":
		var res *services.SearchResult
		if res, err = ctl.orders.Search(c.Context(), c.Query("bill_no")); err == nil {
			orders = res.Orders
		}
	default:
		orders, err = ctl.orders.All(c.Context())
	}
	if err != nil {
		logger.WithCtx(c.Context()).Error("list orders failed", "error", err)
		c.Error(http.StatusInternalServerError, "could not list orders")
		return
	}
	c.Success(orders)
}

func (ctl *APIController) Invoice(c *ctx.Context) {
	id, _ := middleware.IdentityFrom(c.Context())

	inv, err := ctl.invoices.Render(c.Context(), c.Param("bill_no"), viewer(id))
	switch {
	case err == nil:
		c.Attachment(inv.Filename, "application/pdf", inv.PDF)
	case errors.Is(err, services.ErrNotFound):
		c.NotFound("Order not found")
	case errors.Is(err, services.ErrNotOwner):
		c.Forbidden("Unauthorized access to invoice")
	default:
		c.Error(http.StatusInternalServerError, "Error generating invoice")
	}
}
