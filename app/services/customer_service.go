package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/validate"
)

type CustomerInput struct {
	Mobile       string `form:"mobile"        json:"mobile"        validate:"required,max=20"`
	CustomerCode string `form:"customer_code" json:"customer_code"`
	Measurements string `form:"measurements"  json:"measurements"`
}

type CustomerService struct {
	customers CustomerStore
	orders    OrderStore
}

func NewCustomerService(customers CustomerStore, orders OrderStore) *CustomerService {
	return &CustomerService{customers: customers, orders: orders}
}

func (s *CustomerService) Add(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	if _, err := s.customers.FindByMobile(ctx, in.Mobile); err == nil {
		return nil, ErrCustomerExists
	} else if !errors.Is(err, repositories.ErrNoRecord) {
		return nil, fmt.Errorf("add customer: %w", err)
	}

	c := &models.Customer{Mobile: in.Mobile, CustomerCode: in.CustomerCode, Measurements: in.Measurements}
	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCustomerExists
		}
		return nil, fmt.Errorf("add customer: %w", err)
	}
	return c, nil
}

// Get returns the customer for mobile or ErrCustomerNotFound.
func (s *CustomerService) Get(ctx context.Context, mobile string) (*models.Customer, error) {
	c, err := s.customers.FindByMobile(ctx, mobile)
	if errors.Is(err, repositories.ErrNoRecord) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// Edit replaces the code and measurements of an existing customer. The
// mobile number is the identity and never changes.
func (s *CustomerService) Edit(ctx context.Context, mobile, code, measurements string) error {
	err := s.customers.Update(ctx, mobile, code, measurements)
	if errors.Is(err, repositories.ErrNoRecord) {
		return ErrCustomerNotFound
	}
	if err != nil {
		return fmt.Errorf("edit customer: %w", err)
	}
	return nil
}

// Delete removes every order for mobile, then the customer. Deleting an
// unknown mobile succeeds and removes nothing.
func (s *CustomerService) Delete(ctx context.Context, mobile string) (int64, error) {
	n, err := s.orders.DeleteByMobile(ctx, mobile)
	if err != nil {
		return 0, fmt.Errorf("delete customer orders: %w", err)
	}
	if err := s.customers.Delete(ctx, mobile); err != nil {
		return n, fmt.Errorf("delete customer: %w", err)
	}
	logger.WithCtx(ctx).Info("customer deleted", "mobile", mobile, "orders_removed", n)
	return n, nil
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return s.customers.All(ctx)
}

// CodeFor returns the customer code shown on a customer's dashboard,
// falling back to the username when no customer record matches.
func (s *CustomerService) CodeFor(ctx context.Context, username string) string {
	c, err := s.customers.FindByMobile(ctx, username)
	if err != nil {
		return username
	}
	return c.CustomerCode
}
