package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/technova/internal/preferences"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type ConsentRequest struct {
	Analytics bool `json:"analytics"`
	Marketing bool `json:"marketing"`
}

// ConsentResponse has a null consent until the banner is answered.
type ConsentResponse struct {
	Consent *preferences.CookieConsent `json:"consent"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

type LanguageResponse struct {
	Language  string   `json:"language"`
	Supported []string `json:"supported"`
}

type PreferencesHandler struct {
	service preferences.Service
}

func NewPreferencesHandler(service preferences.Service) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

func (h *PreferencesHandler) RegisterRoutes(router chi.Router) {
	router.Route("/preferences", func(r chi.Router) {
		r.Get("/consent", h.handleGetConsent)
		r.Put("/consent", h.handleSetConsent)
		r.Delete("/consent", h.handleWithdrawConsent)
		r.Get("/language", h.handleGetLanguage)
		r.Put("/language", h.handleSetLanguage)
	})
}

func (h *PreferencesHandler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	consent, err := h.service.Consent(r.Context(), session.FromContext(r.Context()).Scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ConsentResponse{Consent: consent})
}

func (h *PreferencesHandler) handleSetConsent(w http.ResponseWriter, r *http.Request) {
	var payload ConsentRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	consent, err := h.service.SetConsent(r.Context(), session.FromContext(r.Context()).Scope, payload.Analytics, payload.Marketing)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ConsentResponse{Consent: consent})
}

func (h *PreferencesHandler) handleWithdrawConsent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.WithdrawConsent(r.Context(), session.FromContext(r.Context()).Scope); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PreferencesHandler) handleGetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.service.Language(r.Context(), session.FromContext(r.Context()).Scope)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LanguageResponse{Language: lang, Supported: preferences.SupportedLanguages})
}

func (h *PreferencesHandler) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var payload LanguageRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	lang, err := h.service.SetLanguage(r.Context(), session.FromContext(r.Context()).Scope, payload.Language)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LanguageResponse{Language: lang, Supported: preferences.SupportedLanguages})
}
