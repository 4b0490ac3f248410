package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
)

const noticeAddCustomerFirst = "Customer not found. Please add the customer first."

type OrderController struct {
	Base
	orders *services.OrderService
}

func NewOrderController(base Base, orders *services.OrderService) *OrderController {
	return &OrderController{Base: base, orders: orders}
}

func (ctl *OrderController) Create(c *ctx.Context) {
	var in services.OrderInput
	if err := c.BindForm(&in); err != nil {
		c.Flash(err.Error())
		c.Redirect(adminDashboard)
		return
	}

	_, err := ctl.orders.Create(c.Context(), in)
	switch {
	case err == nil:
		c.Flash("Order created successfully")
	case errors.Is(err, services.ErrCustomerNotFound):
		c.Flash(noticeAddCustomerFirst)
	case flashValidation(c, err):
	default:
		storeFailure(c, err, adminDashboard)
		return
	}
	c.Redirect(adminDashboard)
}

// Edit shows the order form on GET and replaces the order on POST. A
// rejected POST goes back to the form.
func (ctl *OrderController) Edit(c *ctx.Context) {
	billNo := c.Param("bill_no")
	formURL := "/edit_order/" + billNo

	if !c.IsPost() {
		order, err := ctl.orders.ForEdit(c.Context(), billNo)
		if errors.Is(err, services.ErrOrderNotFound) {
			c.Flash("Order not found")
			c.Redirect(adminDashboard)
			return
		}
		if err != nil {
			storeFailure(c, err, adminDashboard)
			return
		}
		ctl.render(c, "edit_order", "Edit Order", order)
		return
	}

	var in services.OrderInput
	if err := c.BindForm(&in); err != nil {
		c.Flash(err.Error())
		c.Redirect(formURL)
		return
	}

	_, err := ctl.orders.Edit(c.Context(), billNo, in)
	switch {
	case err == nil:
		c.Flash("Order updated successfully")
		c.Redirect(adminDashboard)
	case errors.Is(err, services.ErrOrderNotFound):
		c.Flash("Order not found")
		c.Redirect(adminDashboard)
	case errors.Is(err, services.ErrCustomerNotFound):
		c.Flash(noticeAddCustomerFirst)
		c.Redirect(formURL)
	case flashValidation(c, err):
		c.Redirect(formURL)
	default:
		storeFailure(c, err, formURL)
	}
}

func (ctl *OrderController) Delete(c *ctx.Context) {
	if err := ctl.orders.Delete(c.Context(), c.Param("bill_no")); err != nil {
		storeFailure(c, err, adminDashboard)
		return
	}
	c.Flash("Order deleted successfully")
	c.Redirect(adminDashboard)
}
