package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/technova/internal/assistant"
)

const maxAssistantBody = 12 << 20

type ChatRequest struct {
	History []assistant.Message `json:"history" validate:"max=50,dive"`
	Prompt  string              `json:"prompt" validate:"required,max=4000"`
}

type ThinkRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

type AnalyzeImageRequest struct {
	Image  string `json:"image" validate:"required"`
	Prompt string `json:"prompt" validate:"max=4000"`
}

type MockupRequest struct {
	Image      string `json:"image" validate:"required"`
	PhoneModel string `json:"phoneModel" validate:"required"`
	Style      string `json:"style" validate:"required"`
}

type ReplyResponse struct {
	Reply string `json:"reply"`
}

// MockupResponse has a null image when the model produced none.
type MockupResponse struct {
	Image *string `json:"image"`
}

type AssistantHandler struct {
	service  assistant.Service
	validate *validator.Validate
}

func NewAssistantHandler(service assistant.Service) *AssistantHandler {
	return &AssistantHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *AssistantHandler) RegisterRoutes(router chi.Router) {
	router.Route("/assistant", func(r chi.Router) {
		r.Use(middleware.RequestSize(maxAssistantBody))
		r.Post("/chat", h.handleChat)
		r.Post("/think", h.handleThink)
		r.Post("/analyze", h.handleAnalyze)
		r.Post("/mockup", h.handleMockup)
	})
}

func (h *AssistantHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload ChatRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	reply, err := h.service.Chat(r.Context(), payload.History, payload.Prompt)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

func (h *AssistantHandler) handleThink(w http.ResponseWriter, r *http.Request) {
	var payload ThinkRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	reply, err := h.service.Think(r.Context(), payload.Prompt)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

func (h *AssistantHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload AnalyzeImageRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	reply, err := h.service.AnalyzeImage(r.Context(), payload.Image, payload.Prompt)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

func (h *AssistantHandler) handleMockup(w http.ResponseWriter, r *http.Request) {
	var payload MockupRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	image, err := h.service.GenerateMockup(r.Context(), payload.Image, payload.PhoneModel, payload.Style)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MockupResponse{Image: image})
}
