// Package routes maps URLs to controllers.
package routes

import (
	"github.com/shashiranjanraj/tailorshop/app/services"
	"github.com/shashiranjanraj/tailorshop/pkg/auth"
	"github.com/shashiranjanraj/tailorshop/pkg/middleware"
	"github.com/shashiranjanraj/tailorshop/pkg/view"
)

// App is everything route registration needs. Services may be nil when
// routes are only being listed.
type App struct {
	Views     *view.Renderer
	Auth      *services.AuthService
	Customers *services.CustomerService
	Orders    *services.OrderService
	Invoices  *services.InvoiceService
	Analytics *services.AnalyticsService
	Signer    *auth.Signer

	// LoginLimiter throttles POSTs to /login and /api/token.
	LoginLimiter *middleware.Limiter
	CORSOrigins  []string
}
