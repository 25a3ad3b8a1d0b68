package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/customer"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type AddressRequest struct {
	Label      string `json:"label" validate:"max=40"`
	FullName   string `json:"fullName" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"isDefault"`
}

func (a AddressRequest) address(id string) customer.Address {
	return customer.Address{
		ID:         id,
		Label:      a.Label,
		FullName:   a.FullName,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
	}
}

// AccountHandler serves the signed-in customer's own data. Every route
// requires a customer session.
type AccountHandler struct {
	service  customer.Service
	validate *validator.Validate
}

func NewAccountHandler(service customer.Service) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *AccountHandler) RegisterRoutes(router chi.Router) {
	router.Route("/account", func(r chi.Router) {
		r.Use(RequireCustomer)

		r.Get("/profile", h.handleGetProfile)
		r.Put("/profile", h.handleUpdateProfile)

		r.Get("/addresses", h.handleListAddresses)
		r.Post("/addresses", h.handleAddAddress)
		r.Put("/addresses/{id}", h.handleUpdateAddress)
		r.Delete("/addresses/{id}", h.handleDeleteAddress)
		r.Post("/addresses/{id}/default", h.handleSetDefaultAddress)

		r.Get("/orders", h.handleListOrders)
		r.Get("/favorites", h.handleListFavorites)
	})
}

func (h *AccountHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context())

	profile, err := h.service.Profile(r.Context(), owner.CustomerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload customer.ProfileUpdate
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), session.FromContext(r.Context()).CustomerID, payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

func (h *AccountHandler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.Addresses(r.Context(), session.FromContext(r.Context()).CustomerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if addresses == nil {
		addresses = []customer.Address{}
	}
	respondWithJSON(w, http.StatusOK, addresses)
}

func (h *AccountHandler) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	var payload AddressRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	created, err := h.service.AddAddress(r.Context(), session.FromContext(r.Context()).CustomerID, payload.address(""))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AccountHandler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var payload AddressRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	updated, err := h.service.UpdateAddress(r.Context(), session.FromContext(r.Context()).CustomerID, payload.address(chi.URLParam(r, "id")))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAddress(r.Context(), session.FromContext(r.Context()).CustomerID, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SetDefaultAddress(r.Context(), session.FromContext(r.Context()).CustomerID, chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.Orders(r.Context(), session.FromContext(r.Context()).CustomerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AccountHandler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Favorites(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	respondWithJSON(w, http.StatusOK, products)
}
