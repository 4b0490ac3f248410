package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
)

type CustomerController struct {
	Base
	customers *services.CustomerService
}

func NewCustomerController(base Base, customers *services.CustomerService) *CustomerController {
	return &CustomerController{Base: base, customers: customers}
}

func (ctl *CustomerController) Add(c *ctx.Context) {
	var in services.CustomerInput
	if err := c.BindForm(&in); err != nil {
		c.Flash(err.Error())
		c.Redirect(adminDashboard)
		return
	}

	_, err := ctl.customers.Add(c.Context(), in)
	switch {
	case err == nil:
		c.Flash("Customer added successfully")
	case errors.Is(err, services.ErrCustomerExists):
		c.Flash("Customer with this mobile number already exists")
	case flashValidation(c, err):
	default:
		storeFailure(c, err, adminDashboard)
		return
	}
	c.Redirect(adminDashboard)
}

// Edit shows the customer form on GET and saves code and measurements on
// POST. The mobile number in the path is never changed.
func (ctl *CustomerController) Edit(c *ctx.Context) {
	mobile := c.Param("mobile")

	customer, err := ctl.customers.Get(c.Context(), mobile)
	if errors.Is(err, services.ErrNotFound) {
		c.Flash("Customer not found")
		c.Redirect(adminDashboard)
		return
	}
	if err != nil {
		storeFailure(c, err, adminDashboard)
		return
	}

	if !c.IsPost() {
		ctl.render(c, "edit_customer", "Edit Customer", customer)
		return
	}

	err = ctl.customers.Edit(c.Context(), mobile, c.PostForm("customer_code"), c.PostForm("measurements"))
	switch {
	case err == nil:
		c.Flash("Customer updated successfully")
	case errors.Is(err, services.ErrNotFound):
		c.Flash("Customer not found")
	default:
		storeFailure(c, err, adminDashboard)
		return
	}
	c.Redirect(adminDashboard)
}

// Delete removes the customer and every order placed under the mobile.
func (ctl *CustomerController) Delete(c *ctx.Context) {
	if _, err := ctl.customers.Delete(c.Context(), c.Param("mobile")); err != nil {
		storeFailure(c, err, adminDashboard)
		return
	}
	c.Flash("Customer and their orders deleted successfully")
	c.Redirect(adminDashboard)
}
