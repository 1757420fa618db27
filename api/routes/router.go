package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/controllers"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/api/middleware"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/cart"
	checkoutsvc "github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/checkout"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/orders"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/paymentmethods"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/internal/payments"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/config"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/enums"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/logger"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/metrics"
	"github.com/gopinathsjsu/team-project-cmpe202-03-fall2025-commandlinecommando-sub000/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             controllers.Pinger
	Redis          *redis.Client
	Registry       *prometheus.Registry
	CartService    cart.Service
	CheckoutSvc    checkoutsvc.Service
	OrdersService  orders.Service
	PaymentsSvc    payments.Service
	MethodsService paymentmethods.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(deps.Registry)

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		httpMetrics.Middleware,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, controllers.ReadinessDeps(deps.DB, deps.Redis)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Logger))
		r.Use(middleware.Idempotency(deps.Redis, deps.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrdersService, deps.Logger))
			r.Get("/seller", controllers.SellerItems(deps.OrdersService, deps.Logger))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), deps.Logger)).
				Get("/admin/status/{status}", controllers.AdminOrdersByStatus(deps.OrdersService, deps.Logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.CartService, deps.Logger))
				r.Delete("/", controllers.CartClear(deps.CartService, deps.Logger))
				r.Post("/items", controllers.CartAddItem(deps.CartService, deps.Logger))
				r.Put("/items/{itemId}", controllers.CartUpdateItem(deps.CartService, deps.Logger))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.CartService, deps.Logger))
			})

			r.Post("/checkout", controllers.Checkout(deps.CheckoutSvc, deps.Logger))

			r.Patch("/items/{itemId}/fulfillment", controllers.UpdateItemFulfillment(deps.OrdersService, deps.Logger))

			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, deps.Logger))
			r.Put("/{orderId}/status", controllers.UpdateOrderStatus(deps.OrdersService, deps.Logger))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.OrdersService, deps.Logger))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/process", controllers.ProcessPayment(deps.PaymentsSvc, deps.Logger))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), deps.Logger)).
				Post("/refund", controllers.RefundPayment(deps.PaymentsSvc, deps.Logger))
			r.Get("/transactions", controllers.TransactionList(deps.PaymentsSvc, deps.Logger))
			r.Get("/transactions/{transactionId}", controllers.TransactionDetail(deps.PaymentsSvc, deps.Logger))
			r.Get("/orders/{orderId}/transactions", controllers.OrderTransactions(deps.PaymentsSvc, deps.Logger))

			r.Route("/methods", func(r chi.Router) {
				r.Post("/", controllers.PaymentMethodAdd(deps.MethodsService, deps.Logger))
				r.Get("/", controllers.PaymentMethodList(deps.MethodsService, deps.Logger))
				r.Get("/{methodId}", controllers.PaymentMethodDetail(deps.MethodsService, deps.Logger))
				r.Put("/{methodId}/default", controllers.PaymentMethodSetDefault(deps.MethodsService, deps.Logger))
				r.Delete("/{methodId}", controllers.PaymentMethodDelete(deps.MethodsService, deps.Logger))
			})
		})
	})

	return r
}
