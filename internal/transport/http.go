package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/auth"
	"github.com/BTC001B/store/internal/cart"
	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/handler"
	"github.com/BTC001B/store/internal/inventory"
	"github.com/BTC001B/store/internal/order"
	"github.com/BTC001B/store/internal/returns"
)

// NewRouter wires repositories, services and handlers onto the HTTP surface.
func NewRouter(pool *pgxpool.Pool, verifier auth.Verifier) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	ledger := inventory.NewLedger()
	productRepo := catalog.NewRepository(pool)
	cartRepo := cart.NewRepository(pool)
	orderRepo := order.NewRepository(pool, ledger, cartRepo)
	returnRepo := returns.NewRepository(pool)

	cartSvc := cart.NewService(cartRepo, productRepo, pool)
	orderSvc := order.NewService(orderRepo, cartRepo, productRepo)
	returnSvc := returns.NewService(returnRepo, orderRepo)

	cartHandler := handler.NewCartHandler(cartSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	returnHandler := handler.NewReturnHandler(returnSvc)

	customer := auth.Middleware(verifier, auth.RoleBuyer, auth.RoleAdmin)
	admin := auth.Middleware(verifier, auth.RoleAdmin)

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(customer)
		r.Post("/add", cartHandler.AddItem)
		r.Get("/{userId}", cartHandler.ListItems)
		r.Put("/{userId}/{productId}", cartHandler.UpdateItem)
		r.Delete("/{userId}/{productId}", cartHandler.RemoveItem)
		r.Delete("/{userId}", cartHandler.ClearCart)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(customer)
			r.Post("/checkout", orderHandler.Checkout)
			r.Post("/buy-now", orderHandler.BuyNow)
			r.Get("/userid/{userId}", orderHandler.GetUserOrders)
			r.Get("/orderid/{orderId}", orderHandler.GetOrderByID)
			r.Put("/orderid/{orderId}/cancel", orderHandler.CancelOrder)
		})
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Put("/orderid/{orderId}/status", orderHandler.UpdateOrderStatus)
			r.Get("/orders", orderHandler.GetAllOrders)
		})
	})

	r.Route("/api/returns", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(customer)
			r.Post("/create", returnHandler.CreateReturn)
		})
		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/all", returnHandler.ListAllReturns)
			r.Put("/update/{id}", returnHandler.UpdateReturnStatus)
		})
		r.Group(func(r chi.Router) {
			r.Use(customer)
			r.Get("/{id}", returnHandler.ListReturns)
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request handled")
	})
}
