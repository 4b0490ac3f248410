// Package kernel assembles the HTTP handler: global middleware, the
// operational endpoints and the application routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/tailorshop/app/routes"
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
	"github.com/shashiranjanraj/tailorshop/pkg/cache"
	"github.com/shashiranjanraj/tailorshop/pkg/metrics"
	"github.com/shashiranjanraj/tailorshop/pkg/middleware"
	"github.com/shashiranjanraj/tailorshop/pkg/reqid"
	"github.com/shashiranjanraj/tailorshop/pkg/response"
	"github.com/shashiranjanraj/tailorshop/pkg/router"
	"github.com/shashiranjanraj/tailorshop/pkg/session"
	"github.com/shashiranjanraj/tailorshop/pkg/view"
)

// Deps are the stores and settings the kernel is built from.
type Deps struct {
	Users     services.UserStore
	Customers services.CustomerStore
	Orders    services.OrderStore

	Sessions cache.Store
	// Archive receives rendered invoices. Nil disables archiving.
	Archive services.Archiver
	// Health backs /healthz. Nil always reports ok.
	Health func(ctx context.Context) error

	Views   *view.Renderer
	Session session.Options

	JWTSecret   string
	TokenTTL    time.Duration
	LoginLimit  int
	CORSOrigins []string

	// TrustedProxies may set X-Forwarded-For for the login limiter.
	TrustedProxies []string

	// OrderOptions are passed to the order service (clock, bill numbers).
	OrderOptions []services.OrderOption
}

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel wires services, controllers and middleware.
func NewHTTPKernel(d Deps) (*HTTPKernel, error) {
	authSvc := services.NewAuthService(d.Users)
	orderSvc := services.NewOrderService(d.Orders, d.Customers, d.OrderOptions...)

	ttl := d.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	limit := d.LoginLimit
	if limit <= 0 {
		limit = 20
	}

	limiter := middleware.NewLimiter(limit, time.Minute)
	if err := limiter.TrustProxies(d.TrustedProxies...); err != nil {
		return nil, err
	}

	app := &routes.App{
		Views:        d.Views,
		Auth:         authSvc,
		Customers:    services.NewCustomerService(d.Customers, d.Orders),
		Orders:       orderSvc,
		Invoices:     services.NewInvoiceService(orderSvc, d.Archive),
		Analytics:    services.NewAnalyticsService(authSvc, d.Orders),
		Signer:       auth.NewSigner(d.JWTSecret, ttl),
		LoginLimiter: limiter,
		CORSOrigins:  d.CORSOrigins,
	}

	sessions := d.Sessions
	if sessions == nil {
		sessions = cache.NewMemory()
	}
	opts := d.Session
	if opts.CookieName == "" {
		opts = session.DefaultOptions()
	}

	r := router.New()

	// Outermost first: metrics sees total latency, request IDs exist
	// before anything logs, and panics are caught inside the logger.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(session.NewManager(sessions, opts).Middleware)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", healthz(d.Health))

	routes.RegisterWeb(r, app)
	if err := routes.RegisterAPI(r, app); err != nil {
		return nil, err
	}
	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

func (k *HTTPKernel) Routes() []router.Route { return k.router.Routes() }

func healthz(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		response.Success(w, map[string]string{"status": "ok"})
	}
}
