package kernel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/tailorshop/app/repositories"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/app/views"
	"github.com/shashiranjanraj/tailorshop/pkg/view"
)

type shop struct {
	t   *testing.T
	srv *httptest.Server
}

type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func newShop(t *testing.T, tweak func(*Deps)) *shop {
	t.Helper()
	renderer, err := view.New(views.FS)
	require.NoError(t, err)

	var seq atomic.Int32
	mem := repositories.NewMemory()
	d := Deps{
		Users:      mem.Users(),
		Customers:  mem.Customers(),
		Orders:     mem.Orders(),
		Views:      renderer,
		JWTSecret:  "test-secret",
		LoginLimit: 100,
		OrderOptions: []services.OrderOption{
			services.WithBillNumbers(func() string { return fmt.Sprintf("BILL%04d", seq.Add(1)) }),
		},
	}
	if tweak != nil {
		tweak(&d)
	}
	k, err := NewHTTPKernel(d)
	require.NoError(t, err)

	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return &shop{t: t, srv: srv}
}

func (s *shop) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &browser{t: s.t, base: s.srv.URL, c: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.c.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// redirected asserts a 302 to want and returns the page it points at.
func (b *browser) redirected(resp *http.Response, want string) string {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	require.Equal(b.t, want, resp.Header.Get("Location"))
	_, body := b.get(want)
	return body
}

func (b *browser) signupAndLogin(username, password, role string) {
	b.t.Helper()
	resp, _ := b.post("/signup", url.Values{"username": {username}, "password": {password}, "role": {role}})
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	resp, _ = b.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
}

func orderForm(mobile string) url.Values {
	return url.Values{
		"mobile":        {mobile},
		"description":   {"Two shirts"},
		"total_amount":  {"1500"},
		"advance":       {"500"},
		"delivery_date": {"2025-03-01"},
		"status":        {"Pending"},
	}
}

func TestIndexRedirectsHome(t *testing.T) {
	b := newShop(t, nil).browser()

	resp, _ := b.get("/")
	b.redirected(resp, "/home")
}

func TestSignupThenLogin(t *testing.T) {
	b := newShop(t, nil).browser()

	resp, _ := b.post("/signup", url.Values{"username": {"owner"}, "password": {"pw"}, "role": {"admin"}})
	assert.Contains(t, b.redirected(resp, "/login"), "Signup successful! Please login.")

	resp, _ = b.post("/login", url.Values{"username": {"owner"}, "password": {"pw"}})
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Admin Dashboard")
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	s := newShop(t, nil)
	s.browser().signupAndLogin("owner", "pw", "admin")

	resp, body := s.browser().post("/signup", url.Values{"username": {"owner"}, "password": {"other"}, "role": {"customer"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Username already exists")
}

func TestLoginFailureRerendersForm(t *testing.T) {
	s := newShop(t, nil)
	s.browser().signupAndLogin("owner", "pw", "admin")

	resp, body := s.browser().post("/login", url.Values{"username": {"owner"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
}

func TestAdminPagesNeedAdminRole(t *testing.T) {
	s := newShop(t, nil)

	resp, _ := s.browser().get("/admin_dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	customer := s.browser()
	customer.signupAndLogin("9876543210", "pw", "customer")
	resp, _ = customer.post("/add_customer", url.Values{"mobile": {"1"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCustomerAndOrderLifecycle(t *testing.T) {
	b := newShop(t, nil).browser()
	b.signupAndLogin("owner", "pw", "admin")

	resp, _ := b.post("/create_order", orderForm("9876543210"))
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Customer not found. Please add the customer first.")

	resp, _ = b.post("/add_customer", url.Values{"mobile": {"9876543210"}, "customer_code": {"C-7"}, "measurements": {"chest 40"}})
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Customer added successfully")

	resp, _ = b.post("/add_customer", url.Values{"mobile": {"9876543210"}})
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Customer with this mobile number already exists")

	resp, _ = b.post("/create_order", orderForm("9876543210"))
	page := b.redirected(resp, "/admin_dashboard")
	assert.Contains(t, page, "Order created successfully")
	assert.Contains(t, page, "BILL0001")

	resp, body := b.get("/edit_order/BILL0001")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "chest 40")

	form := orderForm("9876543210")
	form.Set("status", "Delivered")
	resp, _ = b.post("/edit_order/BILL0001", form)
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Order updated successfully")

	form.Set("total_amount", "abc")
	resp, _ = b.post("/edit_order/BILL0001", form)
	assert.Equal(t, "/edit_order/BILL0001", resp.Header.Get("Location"))

	resp, _ = b.get("/edit_order/NOPE")
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Order not found")

	resp, _ = b.post("/delete_customer/9876543210", nil)
	page = b.redirected(resp, "/admin_dashboard")
	assert.Contains(t, page, "Customer and their orders deleted successfully")
	assert.NotContains(t, page, "BILL0001")
}

func TestEditCustomer(t *testing.T) {
	b := newShop(t, nil).browser()
	b.signupAndLogin("owner", "pw", "admin")

	resp, _ := b.get("/edit_customer/5550001111")
	assert.Contains(t, b.redirected(resp, "/admin_dashboard"), "Customer not found")

	resp, _ = b.post("/add_customer", url.Values{"mobile": {"5550001111"}})
	b.redirected(resp, "/admin_dashboard")

	resp, _ = b.post("/edit_customer/5550001111", url.Values{"customer_code": {"VIP"}, "measurements": {"waist 32"}})
	page := b.redirected(resp, "/admin_dashboard")
	assert.Contains(t, page, "Customer updated successfully")
	assert.Contains(t, page, "waist 32")
}

func TestBillNumberSearch(t *testing.T) {
	b := newShop(t, nil).browser()
	b.signupAndLogin("owner", "pw", "admin")
	resp, _ := b.post("/add_customer", url.Values{"mobile": {"9876543210"}})
	b.redirected(resp, "/admin_dashboard")
	resp, _ = b.post("/create_order", orderForm("9876543210"))
	b.redirected(resp, "/admin_dashboard")

	resp, body := b.post("/admin_dashboard", url.Values{"bill_no": {"bill0001"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "BILL0001")

	_, body = b.post("/admin_dashboard", url.Values{"bill_no": {"ZZZ"}})
	assert.NotContains(t, body, "/download_invoice/BILL0001")
}

func TestInvoiceOwnership(t *testing.T) {
	s := newShop(t, nil)
	admin := s.browser()
	admin.signupAndLogin("owner", "pw", "admin")
	resp, _ := admin.post("/add_customer", url.Values{"mobile": {"9876543210"}})
	admin.redirected(resp, "/admin_dashboard")
	resp, _ = admin.post("/create_order", orderForm("9876543210"))
	admin.redirected(resp, "/admin_dashboard")

	resp, pdf := admin.get("/download_invoice/BILL0001")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "invoice_BILL0001.pdf")
	assert.True(t, strings.HasPrefix(pdf, "%PDF"))

	owner := s.browser()
	owner.signupAndLogin("9876543210", "pw", "customer")
	resp, _ = owner.get("/download_invoice/BILL0001")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, page := owner.get("/customer_dashboard")
	assert.Contains(t, page, "BILL0001")

	other := s.browser()
	other.signupAndLogin("1112223333", "pw", "customer")
	resp, _ = other.get("/download_invoice/BILL0001")
	assert.Contains(t, other.redirected(resp, "/customer_dashboard"), "Unauthorized access to invoice")

	resp, _ = other.get("/download_invoice/MISSING")
	assert.Contains(t, other.redirected(resp, "/customer_dashboard"), "Order not found")
}

func TestInvoiceNeedsLogin(t *testing.T) {
	b := newShop(t, nil).browser()

	resp, _ := b.get("/download_invoice/BILL0001")
	assert.Contains(t, b.redirected(resp, "/login"), "Please log in to download the invoice")
}

func TestAnalyticsPassword(t *testing.T) {
	b := newShop(t, nil).browser()
	b.signupAndLogin("owner", "pw", "admin")

	resp, body := b.get("/analytics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="password"`)

	_, body = b.post("/analytics", url.Values{"password": {"nope"}})
	assert.Contains(t, body, "Incorrect analytics password")

	_, body = b.post("/analytics", url.Values{"password": {"pw"}})
	assert.Contains(t, body, "Total orders")
}

func TestLogoutDropsSession(t *testing.T) {
	b := newShop(t, nil).browser()
	b.signupAndLogin("owner", "pw", "admin")

	resp, _ := b.get("/logout")
	b.redirected(resp, "/login")

	resp, _ = b.get("/admin_dashboard")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginIsRateLimited(t *testing.T) {
	b := newShop(t, func(d *Deps) { d.LoginLimit = 2 }).browser()
	form := url.Values{"username": {"x"}, "password": {"y"}}

	for i := 0; i < 2; i++ {
		resp, _ := b.post("/login", form)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := b.post("/login", form)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = b.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func apiToken(t *testing.T, b *browser, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequest(http.MethodPost, b.base+"/api/token", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, raw := b.do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode, raw)

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

func TestAPIOrdersScopedByRole(t *testing.T) {
	s := newShop(t, nil)
	admin := s.browser()
	admin.signupAndLogin("owner", "pw", "admin")
	for _, m := range []string{"9876543210", "1112223333"} {
		resp, _ := admin.post("/add_customer", url.Values{"mobile": {m}})
		admin.redirected(resp, "/admin_dashboard")
		resp, _ = admin.post("/create_order", orderForm(m))
		admin.redirected(resp, "/admin_dashboard")
	}
	customer := s.browser()
	customer.signupAndLogin("9876543210", "pw", "customer")

	list := func(token string) []map[string]any {
		req, err := http.NewRequest(http.MethodGet, admin.base+"/api/orders", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, raw := admin.do(req)
		require.Equal(t, http.StatusOK, resp.StatusCode, raw)
		var env struct {
			Data []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &env))
		return env.Data
	}

	assert.Len(t, list(apiToken(t, admin, "owner", "pw")), 2)
	mine := list(apiToken(t, customer, "9876543210", "pw"))
	require.Len(t, mine, 1)
	assert.Equal(t, "9876543210", mine[0]["mobile"])

	req, err := http.NewRequest(http.MethodGet, admin.base+"/api/orders/BILL0002/invoice", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+apiToken(t, customer, "9876543210", "pw"))
	resp, _ := admin.do(req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPIRejectsMissingToken(t *testing.T) {
	b := newShop(t, nil).browser()

	resp, _ := b.get("/api/orders")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPITokenRejectsBadCredentials(t *testing.T) {
	b := newShop(t, nil).browser()

	req, err := http.NewRequest(http.MethodPost, b.base+"/api/token", strings.NewReader(`{"username":"a","password":"b"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, body := b.do(req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
}

func TestGraphQLIsAdminOnly(t *testing.T) {
	s := newShop(t, nil)
	query := `{"query":"{ customers { mobile } }"}`

	anon := s.browser()
	req, err := http.NewRequest(http.MethodPost, anon.base+"/graphql", strings.NewReader(query))
	require.NoError(t, err)
	resp, _ := anon.do(req)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	admin := s.browser()
	admin.signupAndLogin("owner", "pw", "admin")
	resp, _ = admin.post("/add_customer", url.Values{"mobile": {"9876543210"}})
	admin.redirected(resp, "/admin_dashboard")

	req, err = http.NewRequest(http.MethodPost, admin.base+"/graphql", strings.NewReader(query))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, body := admin.do(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "9876543210")
}

type archiveSpy struct{ paths []string }

func (a *archiveSpy) Put(_ context.Context, path string, _ []byte) error {
	a.paths = append(a.paths, path)
	return nil
}

func TestInvoicesAreArchived(t *testing.T) {
	spy := &archiveSpy{}
	b := newShop(t, func(d *Deps) { d.Archive = spy }).browser()
	b.signupAndLogin("owner", "pw", "admin")
	resp, _ := b.post("/add_customer", url.Values{"mobile": {"9876543210"}})
	b.redirected(resp, "/admin_dashboard")
	resp, _ = b.post("/create_order", orderForm("9876543210"))
	b.redirected(resp, "/admin_dashboard")

	resp, _ = b.get("/download_invoice/BILL0001")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"invoices/BILL0001.pdf"}, spy.paths)
}

func TestHealthz(t *testing.T) {
	var down atomic.Bool
	b := newShop(t, func(d *Deps) {
		d.Health = func(context.Context) error {
			if down.Load() {
				return errors.New("no primary")
			}
			return nil
		}
	}).browser()

	resp, _ := b.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down.Store(true)
	resp, _ = b.get("/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	b := newShop(t, nil).browser()
	b.get("/home")

	resp, body := b.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http_requests_total")
}

func TestRoutesListed(t *testing.T) {
	mem := repositories.NewMemory()
	k, err := NewHTTPKernel(Deps{Users: mem.Users(), Customers: mem.Customers(), Orders: mem.Orders()})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, r := range k.Routes() {
		names[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /login", "POST /login", "POST /delete_order/{bill_no}",
		"GET /download_invoice/{bill_no}", "POST /api/token", "GET /api/orders",
	} {
		assert.True(t, names[want], want)
	}
}

func TestAPIPreflight(t *testing.T) {
	b := newShop(t, func(d *Deps) { d.CORSOrigins = []string{"https://shop.example"} }).browser()

	req, err := http.NewRequest(http.MethodOptions, b.base+"/api/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.example")
	resp, _ := b.do(req)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://shop.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
