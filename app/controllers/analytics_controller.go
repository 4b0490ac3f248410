package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
)

type AnalyticsController struct {
	Base
	analytics *services.AnalyticsService
}

func NewAnalyticsController(base Base, analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Base: base, analytics: analytics}
}

// Show asks for the admin's password and, once it matches, renders the
// report. The report is never cached in the session.
func (ctl *AnalyticsController) Show(c *ctx.Context) {
	if !c.IsPost() {
		ctl.render(c, "analytics_password", "Analytics", nil)
		return
	}

	id, _ := middleware.IdentityFrom(c.Context())
	summary, err := ctl.analytics.Report(c.Context(), id.Username, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			logger.WithCtx(c.Context()).Error("analytics failed", "error", err)
		}
		c.Flash("Incorrect analytics password")
		ctl.render(c, "analytics_password", "Analytics", nil)
		return
	}
	ctl.render(c, "analytics", "Analytics", summary)
}
