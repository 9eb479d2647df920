// Package server assembles the storefront backend: one process mounting
// auth, catalog, customer, cart, order, and utility under /api.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"atsea/internal/auth"
	"atsea/internal/cart"
	"atsea/internal/catalog"
	"atsea/internal/customer"
	"atsea/internal/order"
	"atsea/internal/utility"
	"atsea/pkg/kit"
)

type Deps struct {
	Log *zap.Logger
	JWT *auth.TokenMaker

	Auth      *auth.Server
	Catalog   *catalog.Server
	Customers *customer.Server
	Cart      *cart.Server
	Orders    *order.Server

	Registry       *prometheus.Registry
	MetricsEnabled bool
	MetricsToken   string
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware("atsea", kit.RoutePatternOrPath))

		if deps.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	r.Route("/api", func(api chi.Router) {
		api.Mount("/auth", deps.Auth.Routes())
		api.Mount("/product", deps.Catalog.Routes())
		api.Mount("/customer", deps.Customers.Routes())

		api.Group(func(pr chi.Router) {
			pr.Use(auth.RequireAuth(deps.JWT))
			pr.Mount("/cart", deps.Cart.Routes())
			pr.Mount("/order", deps.Orders.Routes())
		})
	})

	r.Get("/utility/containerid/", utility.ContainerIDHandler())

	return r
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Catalog.Store.Ping(ctx); err != nil {
			deps.Log.Warn("readyz failed: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}
		if err := deps.Orders.Store.Ping(ctx); err != nil {
			deps.Log.Warn("readyz failed: order", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "order not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
