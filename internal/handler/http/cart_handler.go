package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/technova/internal/cart"
	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/session"
)

// AddToCartRequest names a catalog product. Prices always come from the
// catalog; a custom case design only contributes its images.
type AddToCartRequest struct {
	ProductID     catalog.ProductID `json:"productId" validate:"required"`
	SelectedModel string            `json:"selectedModel,omitempty"`
	Custom        *CustomDesign     `json:"custom,omitempty"`
}

type CustomDesign struct {
	Image         string `json:"image" validate:"required"`
	OriginalImage string `json:"originalImage,omitempty"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type CartResponse struct {
	Items     []cart.LineItem `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartResponse{Items: items, Total: c.Total(), ItemCount: c.ItemCount()}
}

type CartHandler struct {
	service  cart.Service
	loader   catalog.Loader
	validate *validator.Validate
}

func NewCartHandler(service cart.Service, loader catalog.Loader) *CartHandler {
	return &CartHandler{
		service:  service,
		loader:   loader,
		validate: newValidator(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart/items", h.handleAddItem)
	router.Patch("/cart/items/{index}", h.handleUpdateQuantity)
	router.Delete("/cart/items/{index}", h.handleRemoveItem)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var payload AddToCartRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	product, err := h.loader.Get(r.Context(), payload.ProductID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	item := *product
	item.SelectedModel = payload.SelectedModel
	if payload.Custom != nil {
		item.IsCustom = true
		item.Image = payload.Custom.Image
		item.OriginalImage = payload.Custom.OriginalImage
	}

	c, err := h.service.Add(r.Context(), session.FromContext(r.Context()), item)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	var payload UpdateQuantityRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(), session.FromContext(r.Context()), index, payload.Delta)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := indexParam(w, r)
	if !ok {
		return
	}

	c, err := h.service.Remove(r.Context(), session.FromContext(r.Context()), index)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// indexParam parses the line index. Out-of-range values are left to the
// cart, which ignores them.
func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item index")
		return 0, false
	}
	return index, true
}
