package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/pkg/logger"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
	"github.com/shashiranjanraj/tailorshop/pkg/validate"
)

// Search notices shown above the order listing.
const (
	NoticeEmptySearch = "Please enter a bill number to search"
	noticeNoMatch     = "No orders found with bill number containing: %s"
	noticeMatches     = "Found %d order(s) matching: %s"
)

// OrderInput is the submitted order form. Measurements are only read on
// edit; a new order copies the customer's.
type OrderInput struct {
	Mobile       string `form:"mobile"        json:"mobile"        validate:"required"`
	Measurements string `form:"measurements"  json:"measurements"  validate:"max=1000"`
	Description  string `form:"description"   json:"description"   validate:"max=1000"`
	TotalAmount  string `form:"total_amount"  json:"total_amount"  validate:"required,decimal"`
	Advance      string `form:"advance"       json:"advance"       validate:"required,decimal"`
	DeliveryDate string `form:"delivery_date" json:"delivery_date" validate:"required"`
	Status       string `form:"status"        json:"status"`
}

type SearchResult struct {
	Query  string
	Orders []models.Order
	Notice string
}

type OrderService struct {
	orders    OrderStore
	customers CustomerStore
	now       func() time.Time
	billNo    func() string
}

type OrderOption func(*OrderService)

// WithClock overrides the clock used to stamp created_date.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// WithBillNumbers overrides the bill number generator.
func WithBillNumbers(gen func() string) OrderOption {
	return func(s *OrderService) { s.billNo = gen }
}

func NewOrderService(orders OrderStore, customers CustomerStore, opts ...OrderOption) *OrderService {
	s := &OrderService{orders: orders, customers: customers, now: time.Now, billNo: NewBillNo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new order for an existing customer. Nothing is written
// when the customer is unknown.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*models.Order, error) {
	total, advance, err := parseAmounts(in)
	if err != nil {
		return nil, err
	}

	customer, err := s.lookupCustomer(ctx, in.Mobile)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		BillNo:       s.billNo(),
		Mobile:       in.Mobile,
		Measurements: customer.Measurements,
		Description:  in.Description,
		TotalAmount:  total.InexactFloat64(),
		Advance:      advance.InexactFloat64(),
		DueAmount:    DueAmount(total, advance),
		DeliveryDate: in.DeliveryDate,
		CreatedDate:  s.now().Format(models.DateLayout),
		Status:       in.Status,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("bill number %s: %w", o.BillNo, ErrConflict)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created", "bill_no", o.BillNo, "mobile", o.Mobile)
	return o, nil
}

// Edit replaces every field of an order except bill_no and created_date.
func (s *OrderService) Edit(ctx context.Context, billNo string, in OrderInput) (*models.Order, error) {
	existing, err := s.Get(ctx, billNo)
	if err != nil {
		return nil, err
	}
	total, advance, err := parseAmounts(in)
	if err != nil {
		return nil, err
	}
	if _, err := s.lookupCustomer(ctx, in.Mobile); err != nil {
		return nil, err
	}

	o := &models.Order{
		BillNo:       existing.BillNo,
		Mobile:       in.Mobile,
		Measurements: in.Measurements,
		Description:  in.Description,
		TotalAmount:  total.InexactFloat64(),
		Advance:      advance.InexactFloat64(),
		DueAmount:    DueAmount(total, advance),
		DeliveryDate: in.DeliveryDate,
		CreatedDate:  existing.CreatedDate,
		Status:       in.Status,
	}
	if err := s.orders.Replace(ctx, o); err != nil {
		if errors.Is(err, repositories.ErrNoRecord) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("edit order: %w", err)
	}
	return o, nil
}

// Get returns the order for billNo or ErrOrderNotFound.
func (s *OrderService) Get(ctx context.Context, billNo string) (*models.Order, error) {
	o, err := s.orders.FindByBillNo(ctx, billNo)
	if errors.Is(err, repositories.ErrNoRecord) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ForEdit returns the order as the edit form shows it: blank measurements
// are filled from the customer's current record.
func (s *OrderService) ForEdit(ctx context.Context, billNo string) (*models.Order, error) {
	o, err := s.Get(ctx, billNo)
	if err != nil {
		return nil, err
	}
	if o.Measurements == "" {
		if c, err := s.customers.FindByMobile(ctx, o.Mobile); err == nil {
			o.Measurements = c.Measurements
		}
	}
	return o, nil
}

// Delete removes the order; an unknown bill number is not an error.
func (s *OrderService) Delete(ctx context.Context, billNo string) error {
	if err := s.orders.Delete(ctx, billNo); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func (s *OrderService) All(ctx context.Context) ([]models.Order, error) {
	return s.orders.All(ctx)
}

func (s *OrderService) ByMobile(ctx context.Context, mobile string) ([]models.Order, error) {
	return s.orders.ByMobile(ctx, mobile)
}

// Search matches query as a case-insensitive substring of bill_no. A blank
// query lists every order.
func (s *OrderService) Search(ctx context.Context, query string) (*SearchResult, error) {
	res := &SearchResult{Query: query}
	if query == "" {
		orders, err := s.orders.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		res.Orders, res.Notice = orders, NoticeEmptySearch
		return res, nil
	}

	orders, err := s.orders.SearchBillNo(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	res.Orders = orders
	if len(orders) == 0 {
		res.Notice = fmt.Sprintf(noticeNoMatch, query)
	} else {
		res.Notice = fmt.Sprintf(noticeMatches, len(orders), query)
	}
	return res, nil
}

func (s *OrderService) lookupCustomer(ctx context.Context, mobile string) (*models.Customer, error) {
	c, err := s.customers.FindByMobile(ctx, mobile)
	if errors.Is(err, repositories.ErrNoRecord) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}
	return c, nil
}

// DueAmount is total minus advance rounded to two places. It may be
// negative when the advance exceeds the total.
func DueAmount(total, advance decimal.Decimal) float64 {
	return total.Sub(advance).Round(2).InexactFloat64()
}

func parseAmounts(in OrderInput) (total, advance decimal.Decimal, err error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return total, advance, &ValidationError{Fields: errs}
	}
	if total, err = decimal.NewFromString(in.TotalAmount); err != nil {
		return total, advance, &ValidationError{Fields: map[string]string{"total_amount": err.Error()}}
	}
	if advance, err = decimal.NewFromString(in.Advance); err != nil {
		return total, advance, &ValidationError{Fields: map[string]string{"advance": err.Error()}}
	}
	errs := map[string]string{}
	if total.Abs().GreaterThan(maxAmount) {
		errs["total_amount"] = "The total_amount must not be greater than " + maxAmount.String() + "."
	}
	if advance.Abs().GreaterThan(maxAmount) {
		errs["advance"] = "The advance must not be greater than " + maxAmount.String() + "."
	}
	if len(errs) > 0 {
		return total, advance, &ValidationError{Fields: errs}
	}
	return total.Round(2), advance.Round(2), nil
}

// maxAmount bounds order amounts so they survive the float64 round trip
// through the store.
var maxAmount = decimal.New(1, 12)
