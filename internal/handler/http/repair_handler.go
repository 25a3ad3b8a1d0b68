package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/technova/internal/repair"
)

type MoveRepairRequest struct {
	Status repair.Status `json:"status"`
}

type RepairHandler struct {
	service repair.Service
}

func NewRepairHandler(service repair.Service) *RepairHandler {
	return &RepairHandler{service: service}
}

func (h *RepairHandler) RegisterRoutes(router chi.Router) {
	router.Get("/repairs/lookup/{id}", h.handleLookup)
}

// RegisterStaffRoutes expects the router to be guarded for signed-in staff.
func (h *RepairHandler) RegisterStaffRoutes(router chi.Router) {
	router.Route("/staff/repairs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/board", h.handleBoard)
		r.Get("/template", h.handleTemplate)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleSave)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/move", h.handleMove)
		r.Post("/{id}/quick-finish", h.handleQuickFinish)
	})
}

func filterFrom(r *http.Request) repair.Filter {
	q := r.URL.Query()
	return repair.Filter{Text: q.Get("q"), Technician: q.Get("technician")}
}

func (h *RepairHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

func (h *RepairHandler) handleList(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.service.List(r.Context(), filterFrom(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if jobs == nil {
		jobs = []repair.Job{}
	}
	respondWithJSON(w, http.StatusOK, jobs)
}

func (h *RepairHandler) handleBoard(w http.ResponseWriter, r *http.Request) {
	columns, err := h.service.Board(r.Context(), filterFrom(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, columns)
}

func (h *RepairHandler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Template(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

func (h *RepairHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

func (h *RepairHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var job repair.Job
	if !decodeJSON(w, r, &job) {
		return
	}

	created, err := h.service.Create(r.Context(), job)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// handleSave serves the edit form. The path id wins over the body.
func (h *RepairHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var job repair.Job
	if !decodeJSON(w, r, &job) {
		return
	}
	job.ID = chi.URLParam(r, "id")

	saved, err := h.service.Save(r.Context(), job)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}

func (h *RepairHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RepairHandler) handleMove(w http.ResponseWriter, r *http.Request) {
	var payload MoveRepairRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	job, err := h.service.Move(r.Context(), chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}

func (h *RepairHandler) handleQuickFinish(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.QuickFinish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, job)
}
