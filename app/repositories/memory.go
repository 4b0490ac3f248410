package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/shashiranjanraj/tailorshop/app/models"
)

// Memory is an in-process store with the same behaviour as the MongoDB
// repositories. Orders keep insertion order.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]models.User
	customers []models.Customer
	orders    []models.Order
}

func NewMemory() *Memory {
	return &Memory{users: map[string]models.User{}}
}

// Users, Customers and Orders return views satisfying the service store
// interfaces.
func (m *Memory) Users() *MemoryUsers         { return &MemoryUsers{m} }
func (m *Memory) Customers() *MemoryCustomers { return &MemoryCustomers{m} }
func (m *Memory) Orders() *MemoryOrders       { return &MemoryOrders{m} }

type MemoryUsers struct{ m *Memory }

func (s *MemoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[username]
	if !ok {
		return nil, ErrNoRecord
	}
	return &u, nil
}

func (s *MemoryUsers) Create(_ context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[u.Username]; ok {
		return ErrDuplicate
	}
	s.m.users[u.Username] = *u
	return nil
}

type MemoryCustomers struct{ m *Memory }

func (s *MemoryCustomers) index(mobile string) int {
	for i, c := range s.m.customers {
		if c.Mobile == mobile {
			return i
		}
	}
	return -1
}

func (s *MemoryCustomers) FindByMobile(_ context.Context, mobile string) (*models.Customer, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	i := s.index(mobile)
	if i < 0 {
		return nil, ErrNoRecord
	}
	c := s.m.customers[i]
	return &c, nil
}

func (s *MemoryCustomers) Create(_ context.Context, c *models.Customer) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.index(c.Mobile) >= 0 {
		return ErrDuplicate
	}
	s.m.customers = append(s.m.customers, *c)
	return nil
}

func (s *MemoryCustomers) Update(_ context.Context, mobile, code, measurements string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := s.index(mobile)
	if i < 0 {
		return ErrNoRecord
	}
	s.m.customers[i].CustomerCode = code
	s.m.customers[i].Measurements = measurements
	return nil
}

func (s *MemoryCustomers) Delete(_ context.Context, mobile string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if i := s.index(mobile); i >= 0 {
		s.m.customers = append(s.m.customers[:i], s.m.customers[i+1:]...)
	}
	return nil
}

func (s *MemoryCustomers) All(_ context.Context) ([]models.Customer, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return append([]models.Customer{}, s.m.customers...), nil
}

type MemoryOrders struct{ m *Memory }

func (s *MemoryOrders) index(billNo string) int {
	for i, o := range s.m.orders {
		if o.BillNo == billNo {
			return i
		}
	}
	return -1
}

func (s *MemoryOrders) FindByBillNo(_ context.Context, billNo string) (*models.Order, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	i := s.index(billNo)
	if i < 0 {
		return nil, ErrNoRecord
	}
	o := s.m.orders[i]
	return &o, nil
}

func (s *MemoryOrders) Create(_ context.Context, o *models.Order) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.index(o.BillNo) >= 0 {
		return ErrDuplicate
	}
	s.m.orders = append(s.m.orders, *o)
	return nil
}

func (s *MemoryOrders) Replace(_ context.Context, o *models.Order) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i := s.index(o.BillNo)
	if i < 0 {
		return ErrNoRecord
	}
	s.m.orders[i] = *o
	return nil
}

func (s *MemoryOrders) Delete(_ context.Context, billNo string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if i := s.index(billNo); i >= 0 {
		s.m.orders = append(s.m.orders[:i], s.m.orders[i+1:]...)
	}
	return nil
}

func (s *MemoryOrders) DeleteByMobile(_ context.Context, mobile string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	kept := s.m.orders[:0]
	var n int64
	for _, o := range s.m.orders {
		if o.Mobile == mobile {
			n++
			continue
		}
		kept = append(kept, o)
	}
	s.m.orders = kept
	return n, nil
}

func (s *MemoryOrders) All(_ context.Context) ([]models.Order, error) {
	return s.filter(func(models.Order) bool { return true }), nil
}

func (s *MemoryOrders) ByMobile(_ context.Context, mobile string) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.Mobile == mobile }), nil
}

func (s *MemoryOrders) SearchBillNo(_ context.Context, fragment string) ([]models.Order, error) {
	needle := strings.ToUpper(fragment)
	return s.filter(func(o models.Order) bool {
		return strings.Contains(strings.ToUpper(o.BillNo), needle)
	}), nil
}

func (s *MemoryOrders) filter(keep func(models.Order) bool) []models.Order {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	out := []models.Order{}
	for _, o := range s.m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
