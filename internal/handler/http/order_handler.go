package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/technova/internal/order"
)

type UpdateOrderStatusRequest struct {
	Status order.Status `json:"status"`
}

type OrderHandler struct {
	service order.Service
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterStaffRoutes expects the router to be guarded for signed-in staff.
func (h *OrderHandler) RegisterStaffRoutes(router chi.Router) {
	router.Get("/staff/orders", h.handleList)
	router.Get("/staff/orders/{id}", h.handleGet)
	router.Patch("/staff/orders/{id}/status", h.handleUpdateStatus)
	router.Get("/staff/sales", h.handleSales)
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload UpdateOrderStatusRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handleSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.Sales(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sales)
}
