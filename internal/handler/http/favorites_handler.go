package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/favorites"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type FavoritesResponse struct {
	IDs []catalog.ProductID `json:"ids"`
}

type ToggleFavoriteResponse struct {
	ID        catalog.ProductID `json:"id"`
	Favorited bool              `json:"favorited"`
}

type FavoritesHandler struct {
	service favorites.Service
}

func NewFavoritesHandler(service favorites.Service) *FavoritesHandler {
	return &FavoritesHandler{service: service}
}

func (h *FavoritesHandler) RegisterRoutes(router chi.Router) {
	router.Get("/favorites", h.handleList)
	router.Post("/favorites/{id}/toggle", h.handleToggle)
}

func (h *FavoritesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.List(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []catalog.ProductID{}
	}
	respondWithJSON(w, http.StatusOK, FavoritesResponse{IDs: ids})
}

func (h *FavoritesHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := catalog.ProductID(chi.URLParam(r, "id"))

	favorited, err := h.service.Toggle(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ToggleFavoriteResponse{ID: id, Favorited: favorited})
}
