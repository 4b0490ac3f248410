package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
)

type InvoiceController struct {
	invoices *services.InvoiceService
}

func NewInvoiceController(invoices *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoices: invoices}
}

// Download streams the PDF invoice. Admins may fetch any invoice, customers
// only their own.
func (ctl *InvoiceController) Download(c *ctx.Context) {
	id, _ := middleware.IdentityFrom(c.Context())

	inv, err := ctl.invoices.Render(c.Context(), c.Param("bill_no"), viewer(id))
	switch {
	case err == nil:
		c.Attachment(inv.Filename, "application/pdf", inv.PDF)
	case errors.Is(err, services.ErrOrderNotFound):
		c.Flash("Order not found")
		c.Redirect(dashboardFor(id.Role))
	case errors.Is(err, services.ErrNotOwner):
		c.Flash("Unauthorized access to invoice")
		c.Redirect(customerDashboard)
	default:
		c.Flash("Error generating invoice")
		c.Redirect(dashboardFor(id.Role))
	}
}

func viewer(id middleware.Identity) services.Viewer {
	return services.Viewer{Username: id.Username, Role: id.Role}
}
