// Package controllers holds the HTTP handlers. Web handlers answer with
// flash + redirect or a rendered page; API handlers answer with the JSON
// envelope.
package controllers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/view"
)

const (
	adminDashboard    = "/admin_dashboard"
	customerDashboard = "/customer_dashboard"
	loginPage         = "/login"

	noticeStoreFailure = "Something went wrong. Please try again."
)

// Base renders pages with the signed-in user and queued flashes.
type Base struct {
	views *view.Renderer
}

func NewBase(views *view.Renderer) Base {
	return Base{views: views}
}

func (b Base) render(c *ctx.Context, name, title string, data any) {
	p := view.Page{Title: title, Data: data}
	if id, ok := middleware.IdentityFrom(c.Context()); ok {
		p.Username, p.Role = id.Username, string(id.Role)
	} else if id, ok := middleware.SessionIdentity(c.R); ok {
		p.Username, p.Role = id.Username, string(id.Role)
	}
	p.Flashes = c.Session().Flashes()

	if err := b.views.Render(c.W, name, p); err != nil {
		logger.WithCtx(c.Context()).Error("render failed", "view", name, "error", err)
		http.Error(c.W, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// flashValidation queues one flash per invalid field, in field order.
func flashValidation(c *ctx.Context, err error) bool {
	var verr *services.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		c.Flash(verr.Fields[f])
	}
	return true
}

// storeFailure logs err and sends the user back to url with a generic notice.
func storeFailure(c *ctx.Context, err error, url string) {
	logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
	c.Flash(noticeStoreFailure)
	c.Redirect(url)
}

func dashboardFor(role models.Role) string {
	if role == models.RoleAdmin {
		return adminDashboard
	}
	return customerDashboard
}
