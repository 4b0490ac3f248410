package controllers

import (
	"github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
)

type adminDashboardData struct {
	Customers []models.Customer
	Orders    []models.Order
	Query     string
}

type customerDashboardData struct {
	CustomerCode string
	Orders       []models.Order
}

type DashboardController struct {
	Base
	customers *services.CustomerService
	orders    *services.OrderService
}

func NewDashboardController(base Base, customers *services.CustomerService, orders *services.OrderService) *DashboardController {
	return &DashboardController{Base: base, customers: customers, orders: orders}
}

// Admin lists every customer and order. A POST carrying bill_no narrows
// the orders to a bill number search.
func (ctl *DashboardController) Admin(c *ctx.Context) {
	data := adminDashboardData{}

	customers, err := ctl.customers.List(c.Context())
	if err != nil {
		storeFailure(c, err, "/home")
		return
	}
	data.Customers = customers

	if c.IsPost() && hasFormField(c, "bill_no") {
		res, err := ctl.orders.Search(c.Context(), c.PostForm("bill_no"))
		if err != nil {
			storeFailure(c, err, adminDashboard)
			return
		}
		data.Orders, data.Query = res.Orders, res.Query
		c.Flash(res.Notice)
	} else {
		if data.Orders, err = ctl.orders.All(c.Context()); err != nil {
			storeFailure(c, err, "/home")
			return
		}
	}

	ctl.render(c, "admin_dashboard", "Admin Dashboard", data)
}

// Customer lists the signed-in customer's own orders.
func (ctl *DashboardController) Customer(c *ctx.Context) {
	id, _ := middleware.IdentityFrom(c.Context())

	orders, err := ctl.orders.ByMobile(c.Context(), id.Username)
	if err != nil {
		storeFailure(c, err, "/home")
		return
	}
	ctl.render(c, "customer_dashboard", "My Orders", customerDashboardData{
		CustomerCode: ctl.customers.CodeFor(c.Context(), id.Username),
		Orders:       orders,
	})
}

func hasFormField(c *ctx.Context, name string) bool {
	if err := c.R.ParseForm(); err != nil {
		return false
	}
	_, ok := c.R.PostForm[name]
	return ok
}
