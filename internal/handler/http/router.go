package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vasiliy-maslov/technova/internal/staff"
)

type Handlers struct {
	Products    *ProductHandler
	Cart        *CartHandler
	Checkout    *CheckoutHandler
	Favorites   *FavoritesHandler
	Auth        *AuthHandler
	Account     *AccountHandler
	Repairs     *RepairHandler
	Inventory   *InventoryHandler
	Staff       *StaffHandler
	Orders      *OrderHandler
	Preferences *PreferencesHandler
	Assistant   *AssistantHandler
}

// NewRouter mounts the API under /api/v1. Storefront routes resolve the
// session owner; /staff routes additionally need a signed-in staff member
// and product administration needs the admin role.
func NewRouter(h Handlers, authenticator Authenticator, staffSvc staff.Service) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Owner(authenticator))

		h.Products.RegisterRoutes(r)
		h.Cart.RegisterRoutes(r)
		h.Checkout.RegisterRoutes(r)
		h.Favorites.RegisterRoutes(r)
		h.Auth.RegisterRoutes(r)
		h.Account.RegisterRoutes(r)
		h.Repairs.RegisterRoutes(r)
		h.Staff.RegisterRoutes(r)
		h.Preferences.RegisterRoutes(r)
		h.Assistant.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireStaff(staffSvc))

			h.Repairs.RegisterStaffRoutes(r)
			h.Inventory.RegisterStaffRoutes(r)
			h.Staff.RegisterStaffRoutes(r)
			h.Orders.RegisterStaffRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireStaff(staffSvc, staff.RoleAdmin))

			h.Products.RegisterAdminRoutes(r)
		})
	})

	return router
}
