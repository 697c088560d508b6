// Package httpapi exposes the counter operations to the dashboard UI over
// localhost REST: products, cart, checkout, stats, exports and the detection
// lifecycle.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/elbara99/ai-counter-cafeteria/internal/cart"
	"github.com/elbara99/ai-counter-cafeteria/internal/catalog"
	"github.com/elbara99/ai-counter-cafeteria/internal/checkout"
	"github.com/elbara99/ai-counter-cafeteria/internal/orders"
	"github.com/elbara99/ai-counter-cafeteria/internal/poller"
	"github.com/elbara99/ai-counter-cafeteria/internal/stats"
)

// Deps carries everything the handlers need. LoadModel, ModelReady and
// StartCamera are closures so the transport stays decoupled from the
// classifier and capture internals; any of them may be nil when the feature
// is not configured.
type Deps struct {
	Catalog  *catalog.Catalog
	Cart     *cart.Cart
	Stats    *stats.Service
	Checkout *checkout.Service
	Poller   *poller.Poller

	// Orders is the archive behind the history view; nil when the database
	// is unavailable.
	Orders orders.RepoInterface

	LoadModel   func() error
	ModelReady  func() bool
	StartCamera func() error

	// OnDetections is the poller callback wired on detection start.
	OnDetections poller.Callback

	RequestTimeout time.Duration
}

type Server struct {
	deps   Deps
	router chi.Router
}

// NewServer builds the router with the same middleware stack the rest of the
// fleet uses.
func NewServer(deps Deps) *Server {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}

	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(middleware.Timeout(deps.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.listProducts)

		r.Get("/cart", s.getCart)
		r.Post("/cart/items", s.addCartItem)
		r.Delete("/cart/items/{id}", s.removeCartItem)
		r.Delete("/cart", s.clearCart)

		r.Post("/checkout", s.completeOrder)
		r.Get("/orders", s.listOrders)

		r.Get("/stats", s.getStats)
		r.Post("/stats/reset", s.resetStats)
		r.Post("/session/export", s.exportSession)

		r.Post("/model/load", s.loadModel)

		r.Post("/detection/start", s.startDetection)
		r.Post("/detection/stop", s.stopDetection)
		r.Get("/detection/status", s.detectionStatus)
	})

	s.router = r
	return s
}

// Handler returns the root http handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
