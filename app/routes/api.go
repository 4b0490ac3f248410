package routes

import (
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/tailorshop/app/controllers"
	apigql "github.com/shashiranjanraj/tailorshop/app/graphql"
	gate "github.com/shashiranjanraj/tailorshop/app/middleware"
	"github.com/shashiranjanraj/tailorshop/pkg/ctx"
	"github.com/shashiranjanraj/tailorshop/pkg/graphql"
	"github.com/shashiranjanraj/tailorshop/pkg/middleware"
	"github.com/shashiranjanraj/tailorshop/pkg/router"
)

// RegisterAPI mounts the bearer-token JSON API and the admin GraphQL
// endpoint.
func RegisterAPI(r *router.Router, a *App) error {
	apiCtl := controllers.NewAPIController(a.Auth, a.Orders, a.Invoices, a.Signer)

	api := r.Group("/api", middleware.CORS(middleware.DefaultCORSOptions(a.CORSOrigins...)))
	api.Post("/token", "api.token", ctx.Wrap(apiCtl.Token), a.LoginLimiter.Middleware)

	for _, path := range []string{"/token", "/orders", "/orders/{bill_no}/invoice"} {
		api.Options(path, "", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	}

	protected := api.Group("", gate.RequireBearer(a.Signer))
	protected.Get("/orders", "api.orders", ctx.Wrap(apiCtl.Orders))
	protected.Get("/orders/{bill_no}/invoice", "api.invoice", ctx.Wrap(apiCtl.Invoice))

	schema, err := apigql.NewSchema(a.Customers, a.Orders)
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}
	r.Post("/graphql", "graphql", graphql.Handler(schema), gate.RequireAdmin)
	return nil
}
