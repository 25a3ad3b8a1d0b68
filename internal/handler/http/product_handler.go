package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/filestore"
)

const maxImageSize = 10 << 20

type ProductRequest struct {
	Name             string   `json:"name" validate:"required,min=2"`
	Price            float64  `json:"price" validate:"gt=0"`
	OriginalPrice    *float64 `json:"originalPrice,omitempty" validate:"omitempty,gt=0"`
	Category         string   `json:"category" validate:"required"`
	Image            string   `json:"image" validate:"required"`
	Description      string   `json:"description"`
	Brand            string   `json:"brand,omitempty"`
	CompatibleModels []string `json:"compatibleModels,omitempty"`
	IsBundle         bool     `json:"isBundle,omitempty"`
}

func (p ProductRequest) product(id catalog.ProductID) *catalog.Product {
	return &catalog.Product{
		ID:               id,
		Name:             p.Name,
		Price:            p.Price,
		OriginalPrice:    p.OriginalPrice,
		Category:         p.Category,
		Image:            p.Image,
		Description:      p.Description,
		Brand:            p.Brand,
		CompatibleModels: p.CompatibleModels,
		IsBundle:         p.IsBundle,
	}
}

type UploadResponse struct {
	filestore.File
	URL string `json:"url"`
}

type ProductHandler struct {
	loader   catalog.Loader
	manager  catalog.Manager
	files    filestore.Store
	validate *validator.Validate
}

func NewProductHandler(loader catalog.Loader, manager catalog.Manager, files filestore.Store) *ProductHandler {
	return &ProductHandler{
		loader:   loader,
		manager:  manager,
		files:    files,
		validate: newValidator(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/files/{id}", h.handleGetFile)
}

// RegisterAdminRoutes expects the router to be guarded for admin staff.
func (h *ProductHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/admin/products", h.handleCreateProduct)
	router.Put("/admin/products/{id}", h.handleUpdateProduct)
	router.Delete("/admin/products/{id}", h.handleDeleteProduct)
	router.Post("/admin/uploads", h.handleUploadImage)
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products := h.loader.List(r.Context(), catalog.Filter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Model:    q.Get("model"),
		Search:   q.Get("q"),
	})
	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := catalog.ProductID(chi.URLParam(r, "id"))

	product, err := h.loader.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload ProductRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	created, err := h.manager.Create(r.Context(), payload.product(""))
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to create product")
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var payload ProductRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	updated, err := h.manager.Update(r.Context(), payload.product(catalog.ProductID(chi.URLParam(r, "id"))))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), catalog.ProductID(chi.URLParam(r, "id"))); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Image must be at most 10 MB")
			return
		}
		log.Warn().Err(err).Msg("handler: upload without file part")
		respondWithError(w, http.StatusBadRequest, "Missing file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	uploaded, err := h.manager.UploadImage(r.Context(), header.Filename, contentType, file)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, UploadResponse{File: *uploaded, URL: uploaded.URL()})
}

func (h *ProductHandler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	body, file, err := h.files.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	defer body.Close()

	if file.ContentType != "" {
		w.Header().Set("Content-Type", file.ContentType)
	}
	if file.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		log.Warn().Err(err).Str("file_id", file.ID).Msg("handler: file stream interrupted")
	}
}
