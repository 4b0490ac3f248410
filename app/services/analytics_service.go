package services

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/tailorshop/app/models"
)

type Summary struct {
	TotalOrders    int            `json:"total_orders"`
	TotalRevenue   float64        `json:"total_revenue"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
	AvgOrderValue  float64        `json:"avg_order_value"`
	TotalCustomers int            `json:"total_customers"`
}

// Summarize aggregates orders. Customers are counted as distinct order
// mobiles, so customers without orders are not included. A stored total
// that is not a finite number counts as zero revenue.
func Summarize(orders []models.Order) Summary {
	sum := Summary{TotalOrders: len(orders), OrdersByStatus: map[string]int{}}
	revenue := decimal.Zero
	mobiles := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if !math.IsInf(o.TotalAmount, 0) && !math.IsNaN(o.TotalAmount) {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		}
		sum.OrdersByStatus[o.Status]++
		mobiles[o.Mobile] = struct{}{}
	}
	sum.TotalRevenue = revenue.Round(2).InexactFloat64()
	sum.TotalCustomers = len(mobiles)
	if len(orders) > 0 {
		sum.AvgOrderValue = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2).InexactFloat64()
	}
	return sum
}

type AnalyticsService struct {
	auth   *AuthService
	orders OrderStore
}

func NewAnalyticsService(auth *AuthService, orders OrderStore) *AnalyticsService {
	return &AnalyticsService{auth: auth, orders: orders}
}

// Report re-checks the admin's password before summarising every order.
func (s *AnalyticsService) Report(ctx context.Context, username, password string) (*Summary, error) {
	if err := s.auth.VerifyPassword(ctx, username, password); err != nil {
		return nil, err
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	sum := Summarize(orders)
	return &sum, nil
}
