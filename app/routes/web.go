package routes

import (
	"github.com/shashiranjanraj/tailorshop/app/controllers"
	gate "github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/router"
)

// RegisterWeb mounts the HTML pages.
func RegisterWeb(r *router.Router, a *App) {
	base := controllers.NewBase(a.Views)
	authCtl := controllers.NewAuthController(base, a.Auth)
	dashboard := controllers.NewDashboardController(base, a.Customers, a.Orders)
	customers := controllers.NewCustomerController(base, a.Customers)
	orders := controllers.NewOrderController(base, a.Orders)
	invoices := controllers.NewInvoiceController(a.Invoices)
	analytics := controllers.NewAnalyticsController(base, a.Analytics)

	r.Get("/", "index", ctx.Wrap(authCtl.Index))
	r.Get("/home", "home", ctx.Wrap(authCtl.Home))
	r.Match("/login", "login", ctx.Wrap(authCtl.Login), a.LoginLimiter.Middleware)
	r.Match("/signup", "signup", ctx.Wrap(authCtl.Signup))
	r.Get("/logout", "logout", ctx.Wrap(authCtl.Logout))

	admin := r.Group("", gate.RequireAdmin)
	admin.Match("/admin_dashboard", "admin.dashboard", ctx.Wrap(dashboard.Admin))
	admin.Post("/add_customer", "customers.add", ctx.Wrap(customers.Add))
	admin.Match("/edit_customer/{mobile}", "customers.edit", ctx.Wrap(customers.Edit))
	admin.Post("/delete_customer/{mobile}", "customers.delete", ctx.Wrap(customers.Delete))
	admin.Post("/create_order", "orders.create", ctx.Wrap(orders.Create))
	admin.Match("/edit_order/{bill_no}", "orders.edit", ctx.Wrap(orders.Edit))
	admin.Post("/delete_order/{bill_no}", "orders.delete", ctx.Wrap(orders.Delete))
	admin.Match("/analytics", "analytics", ctx.Wrap(analytics.Show))

	r.Get("/customer_dashboard", "customer.dashboard", ctx.Wrap(dashboard.Customer), gate.RequireCustomer)
	r.Get("/download_invoice/{bill_no}", "invoices.download", ctx.Wrap(invoices.Download),
		gate.RequireLogin("Please log in to download the invoice"))
}
