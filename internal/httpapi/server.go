// Package httpapi exposes the shop over REST.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deadpool750/list7/internal/cart"
	"github.com/deadpool750/list7/internal/catalog"
	"github.com/deadpool750/list7/internal/checkout"
	"github.com/deadpool750/list7/internal/identity"
	"github.com/deadpool750/list7/internal/profile"
	"github.com/deadpool750/list7/internal/wallet"
)

type Server struct {
	identity *identity.Service
	catalog  *catalog.Service
	carts    *cart.Registry
	checkout *checkout.Workflow
	profile  *profile.Service
	wallet   *wallet.Service
	timeout  time.Duration
}

func NewServer(
	id *identity.Service,
	cat *catalog.Service,
	carts *cart.Registry,
	co *checkout.Workflow,
	prof *profile.Service,
	wal *wallet.Service,
	timeout time.Duration,
) *Server {
	return &Server{
		identity: id,
		catalog:  cat,
		carts:    carts,
		checkout: co,
		profile:  prof,
		wallet:   wal,
		timeout:  timeout,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)

		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)

			r.Post("/auth/logout", s.Logout)

			r.Get("/items", s.ListItems)
			r.Post("/items", s.CreateItem)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.GetCart)
				r.Post("/items", s.AddCartItem)
				r.Put("/items/{item_uid}", s.UpdateCartQuantity)
				r.Delete("/items/{item_uid}", s.RemoveCartItem)
				r.Delete("/", s.ClearCart)
			})

			r.Post("/checkout", s.Checkout)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", s.GetProfile)
				r.Put("/", s.SaveProfile)
				r.Delete("/", s.DeleteProfile)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", s.GetBalance)
				r.Post("/funds", s.AddFunds)
			})

			r.Get("/stores", s.ListStores)
			r.Get("/stores/{name}", s.GetStore)
		})
	})

	return r
}
