package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tailorshop/app/models"
	"github.com/shashiranjanraj/tailorshop/app/repositories"
)

var fixedNow = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	mem       *repositories.Memory
	auth      *AuthService
	customers *CustomerService
	orders    *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := repositories.NewMemory()
	seq := 0
	bills := []string{"AB12CD34", "EF56GH78", "IJ90KL12"}
	orders := NewOrderService(mem.Orders(), mem.Customers(),
		WithClock(func() time.Time { return fixedNow }),
		WithBillNumbers(func() string { b := bills[seq%len(bills)]; seq++; return b }),
	)
	return &fixture{
		mem:       mem,
		auth:      NewAuthService(mem.Users()),
		customers: NewCustomerService(mem.Customers(), mem.Orders()),
		orders:    orders,
	}
}

func (f *fixture) addCustomer(t *testing.T, mobile, measurements string) {
	t.Helper()
	_, err := f.customers.Add(context.Background(), CustomerInput{Mobile: mobile, CustomerCode: "C-" + mobile, Measurements: measurements})
	require.NoError(t, err)
}

func orderInput(mobile, total, advance string) OrderInput {
	return OrderInput{
		Mobile:       mobile,
		Description:  "Kurta",
		TotalAmount:  total,
		Advance:      advance,
		DeliveryDate: "2025-02-15",
		Status:       "Pending",
	}
}

func TestNewBillNo(t *testing.T) {
	b := NewBillNo()
	assert.Len(t, b, BillNoLength)
	assert.Regexp(t, `^[0-9A-F]{8}$`, b)
	assert.NotEqual(t, b, NewBillNo())
}

func TestCreateOrderComputesDueAndCopiesMeasurements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "Chest 38")

	o, err := f.orders.Create(ctx, orderInput("9000000001", "1500", "500"))
	require.NoError(t, err)

	assert.Equal(t, "AB12CD34", o.BillNo)
	assert.Equal(t, 1000.0, o.DueAmount)
	assert.Equal(t, "Chest 38", o.Measurements)
	assert.Equal(t, "2025-02-01", o.CreatedDate)

	stored, err := f.mem.Orders().FindByBillNo(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.Equal(t, *o, *stored)
}

func TestCreateOrderForUnknownCustomerWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.Create(ctx, orderInput("9000000009", "100", "0"))
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	all, _ := f.orders.All(ctx)
	assert.Empty(t, all)
}

func TestCreateOrderRejectsBadAmounts(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, "9000000001", "")

	_, err := f.orders.Create(context.Background(), orderInput("9000000001", "abc", "0"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, verr.Fields, "total_amount")
}

func TestCreateOrderRejectsOversizedAmounts(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, "9000000001", "")
	ctx := context.Background()

	_, err := f.orders.Create(ctx, orderInput("9000000001", "1"+strings.Repeat("0", 400), "0"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "total_amount")

	_, err = f.orders.Create(ctx, orderInput("9000000001", "100", "2000000000000"))
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "advance")

	all, err := f.orders.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = f.orders.Create(ctx, orderInput("9000000001", "1000000000000", "0"))
	assert.NoError(t, err)
}

func TestAdvanceAboveTotalGivesNegativeDue(t *testing.T) {
	f := newFixture(t)
	f.addCustomer(t, "9000000001", "")

	o, err := f.orders.Create(context.Background(), orderInput("9000000001", "100", "150.25"))
	require.NoError(t, err)
	assert.Equal(t, -50.25, o.DueAmount)
}

func TestDueAmountUsesDecimalArithmetic(t *testing.T) {
	due := DueAmount(decimal.RequireFromString("0.3"), decimal.RequireFromString("0.1"))
	assert.Equal(t, 0.2, due)
}

func TestEditOrderKeepsCreatedDateAndRecomputesDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "Chest 38")
	f.addCustomer(t, "9000000002", "Chest 42")

	created, err := f.orders.Create(ctx, orderInput("9000000001", "1500", "500"))
	require.NoError(t, err)

	f.orders.now = func() time.Time { return fixedNow.AddDate(0, 1, 0) }
	in := orderInput("9000000002", "2000", "1200")
	in.Measurements = "Chest 43"
	in.Status = "Ready"

	edited, err := f.orders.Edit(ctx, created.BillNo, in)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedDate, edited.CreatedDate)
	assert.Equal(t, 800.0, edited.DueAmount)
	assert.Equal(t, "9000000002", edited.Mobile)
	assert.Equal(t, "Chest 43", edited.Measurements)
	assert.Equal(t, "Ready", edited.Status)
}

func TestEditOrderFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "")
	created, err := f.orders.Create(ctx, orderInput("9000000001", "10", "0"))
	require.NoError(t, err)

	_, err = f.orders.Edit(ctx, "NOPE0000", orderInput("9000000001", "10", "0"))
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.orders.Edit(ctx, created.BillNo, orderInput("9000000009", "99", "0"))
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	unchanged, err := f.orders.Get(ctx, created.BillNo)
	require.NoError(t, err)
	assert.Equal(t, "9000000001", unchanged.Mobile)
	assert.Equal(t, 10.0, unchanged.TotalAmount)
}

func TestForEditSubstitutesBlankMeasurements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "")
	created, err := f.orders.Create(ctx, orderInput("9000000001", "10", "0"))
	require.NoError(t, err)
	require.Empty(t, created.Measurements)

	require.NoError(t, f.customers.Edit(ctx, "9000000001", "C1", "Waist 32"))

	o, err := f.orders.ForEdit(ctx, created.BillNo)
	require.NoError(t, err)
	assert.Equal(t, "Waist 32", o.Measurements)

	stored, _ := f.orders.Get(ctx, created.BillNo)
	assert.Empty(t, stored.Measurements)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "")
	for i := 0; i < 3; i++ {
		_, err := f.orders.Create(ctx, orderInput("9000000001", "10", "0"))
		require.NoError(t, err)
	}

	res, err := f.orders.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, res.Orders, 3)
	assert.Equal(t, "Please enter a bill number to search", res.Notice)

	res, err = f.orders.Search(ctx, "cd3")
	require.NoError(t, err)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "Found 1 order(s) matching: cd3", res.Notice)

	res, err = f.orders.Search(ctx, "ZZZ")
	require.NoError(t, err)
	assert.Empty(t, res.Orders)
	assert.Equal(t, "No orders found with bill number containing: ZZZ", res.Notice)
}

func TestDeleteOrderIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "")
	o, err := f.orders.Create(ctx, orderInput("9000000001", "10", "0"))
	require.NoError(t, err)

	require.NoError(t, f.orders.Delete(ctx, o.BillNo))
	require.NoError(t, f.orders.Delete(ctx, o.BillNo))
	_, err = f.orders.Get(ctx, o.BillNo)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteCustomerCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "")
	f.addCustomer(t, "9000000002", "")
	for _, m := range []string{"9000000001", "9000000002", "9000000001"} {
		_, err := f.orders.Create(ctx, orderInput(m, "10", "0"))
		require.NoError(t, err)
	}

	n, err := f.customers.Delete(ctx, "9000000001")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = f.customers.Get(ctx, "9000000001")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	left, _ := f.orders.ByMobile(ctx, "9000000001")
	assert.Empty(t, left)
	other, _ := f.orders.ByMobile(ctx, "9000000002")
	assert.Len(t, other, 1)

	n, err = f.customers.Delete(ctx, "9000000001")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCustomerAddAndEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "Chest 38")

	_, err := f.customers.Add(ctx, CustomerInput{Mobile: "9000000001"})
	assert.ErrorIs(t, err, ErrCustomerExists)
	assert.ErrorIs(t, err, ErrConflict)

	assert.ErrorIs(t, f.customers.Edit(ctx, "9000000009", "x", "y"), ErrCustomerNotFound)

	require.NoError(t, f.customers.Edit(ctx, "9000000001", "VIP", "Chest 39"))
	c, err := f.customers.Get(ctx, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, models.Customer{Mobile: "9000000001", CustomerCode: "VIP", Measurements: "Chest 39"}, *c)

	assert.Equal(t, "VIP", f.customers.CodeFor(ctx, "9000000001"))
	assert.Equal(t, "stranger", f.customers.CodeFor(ctx, "stranger"))
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Signup(ctx, SignupInput{Username: "9000000001", Password: "pw", Role: "customer"})
	require.NoError(t, err)
	assert.NotEqual(t, "pw", u.Password)
	assert.Equal(t, models.RoleCustomer, u.Role)

	_, err = f.auth.Signup(ctx, SignupInput{Username: "9000000001", Password: "other", Role: "admin"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	stored, err := f.mem.Users().FindByUsername(ctx, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, stored.Role)

	got, err := f.auth.Login(ctx, Credentials{Username: "9000000001", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, got.Role)

	_, err = f.auth.Login(ctx, Credentials{Username: "9000000001", Password: "PW"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, Credentials{Username: "nobody", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Signup(context.Background(), SignupInput{Username: "a", Password: "b", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginAcceptsLegacyPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Users().Create(ctx, &models.User{Username: "admin", Password: "secret", Role: models.RoleAdmin}))

	u, err := f.auth.Login(ctx, Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]models.Order{
		{Mobile: "1", TotalAmount: 100, Status: "Pending"},
		{Mobile: "2", TotalAmount: 250.5, Status: "Ready"},
		{Mobile: "1", TotalAmount: 49.5, Status: "Pending"},
	})
	assert.Equal(t, 3, sum.TotalOrders)
	assert.Equal(t, 400.0, sum.TotalRevenue)
	assert.Equal(t, map[string]int{"Pending": 2, "Ready": 1}, sum.OrdersByStatus)
	assert.InDelta(t, 133.33, sum.AvgOrderValue, 0.001)
	assert.Equal(t, 2, sum.TotalCustomers)

	assert.NotPanics(t, func() {
		bad := Summarize([]models.Order{
			{Mobile: "1", TotalAmount: math.Inf(1), Status: "Pending"},
			{Mobile: "2", TotalAmount: 80, Status: "Pending"},
		})
		assert.Equal(t, 2, bad.TotalOrders)
		assert.Equal(t, 80.0, bad.TotalRevenue)
	})

	empty := Summarize(nil)
	assert.Zero(t, empty.AvgOrderValue)
	assert.Zero(t, empty.TotalCustomers)
}

func TestAnalyticsReportChecksPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Users().Create(ctx, &models.User{Username: "admin", Password: "secret", Role: models.RoleAdmin}))
	svc := NewAnalyticsService(f.auth, f.mem.Orders())

	_, err := svc.Report(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sum, err := svc.Report(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Zero(t, sum.TotalOrders)
}

type recordingArchive struct {
	paths []string
	fail  bool
}

func (a *recordingArchive) Put(_ context.Context, path string, _ []byte) error {
	a.paths = append(a.paths, path)
	if a.fail {
		return errors.New("bucket unavailable")
	}
	return nil
}

func TestInvoiceRenderOwnershipAndArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addCustomer(t, "9000000001", "Chest 38")
	o, err := f.orders.Create(ctx, orderInput("9000000001", "1500", "500"))
	require.NoError(t, err)

	archive := &recordingArchive{fail: true}
	svc := NewInvoiceService(f.orders, archive)
	svc.now = func() time.Time { return fixedNow }

	inv, err := svc.Render(ctx, o.BillNo, Viewer{Username: "9000000001", Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "invoice_AB12CD34.pdf", inv.Filename)
	assert.Equal(t, "%PDF-", string(inv.PDF[:5]))
	assert.Equal(t, []string{"invoices/AB12CD34.pdf"}, archive.paths)

	_, err = svc.Render(ctx, o.BillNo, Viewer{Username: "9000000002", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Render(ctx, o.BillNo, Viewer{Username: "admin", Role: models.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.Render(ctx, "MISSING0", Viewer{Username: "admin", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestInvoiceRenderToleratesNonFiniteStoredAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Orders().Create(ctx, &models.Order{
		BillNo: "HUGE0000", Mobile: "1", TotalAmount: math.Inf(1), DueAmount: math.Inf(1),
		DeliveryDate: "2025-02-15", CreatedDate: "2025-02-01",
	}))

	svc := NewInvoiceService(f.orders, nil)
	assert.NotPanics(t, func() {
		_, err := svc.Render(ctx, "HUGE0000", Viewer{Username: "admin", Role: models.RoleAdmin})
		assert.NoError(t, err)
	})
}

func TestInvoiceRenderFailureIsRenderError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.mem.Orders().Create(ctx, &models.Order{BillNo: "BROKEN00", Mobile: "1"}))

	svc := NewInvoiceService(f.orders, nil)
	_, err := svc.Render(ctx, "BROKEN00", Viewer{Username: "admin", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrRender)
}
