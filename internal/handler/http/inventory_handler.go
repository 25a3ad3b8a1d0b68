package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/technova/internal/inventory"
)

type CreateItemRequest struct {
	Name  string         `json:"name" validate:"required,min=2"`
	SKU   string         `json:"sku" validate:"required"`
	Stock map[string]int `json:"stock" validate:"dive,keys,required,endkeys,gte=0"`
}

type AdjustStockRequest struct {
	Store string `json:"store" validate:"required"`
	Delta int    `json:"delta" validate:"required"`
}

type InventoryHandler struct {
	service  inventory.Service
	validate *validator.Validate
}

func NewInventoryHandler(service inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterStaffRoutes expects the router to be guarded for signed-in staff.
func (h *InventoryHandler) RegisterStaffRoutes(router chi.Router) {
	router.Route("/staff/inventory", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/{id}/adjust", h.handleAdjust)
		r.Post("/transfers", h.handleTransfer)
	})
}

func (h *InventoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload CreateItemRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	item, err := h.service.Create(r.Context(), inventory.Item{Name: payload.Name, SKU: payload.SKU, Stock: payload.Stock})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var payload AdjustStockRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	item, err := h.service.Adjust(r.Context(), chi.URLParam(r, "id"), payload.Store, payload.Delta)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// handleTransfer leaves quantity and store checks to the service.
func (h *InventoryHandler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var payload inventory.Transfer
	if !decodeJSON(w, r, &payload) {
		return
	}

	item, err := h.service.Transfer(r.Context(), payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}
