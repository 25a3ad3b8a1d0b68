package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/technova/internal/checkout"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type PaymentRequest struct {
	Method order.PaymentMethod `json:"method"`
}

type CheckoutHandler struct {
	service checkout.Service
}

func NewCheckoutHandler(service checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Route("/checkout", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Post("/continue", h.handleContinue)
		r.Post("/shipping", h.handleShipping)
		r.Post("/payment", h.handlePayment)
		r.Post("/close", h.handleClose)
	})
}

func (h *CheckoutHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), session.FromContext(r.Context()))
	h.respond(w, sess, err)
}

func (h *CheckoutHandler) handleContinue(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Continue(r.Context(), session.FromContext(r.Context()))
	h.respond(w, sess, err)
}

func (h *CheckoutHandler) handleShipping(w http.ResponseWriter, r *http.Request) {
	var form checkout.ShippingForm
	if !decodeJSON(w, r, &form) {
		return
	}

	sess, err := h.service.SubmitShipping(r.Context(), session.FromContext(r.Context()), form)
	h.respond(w, sess, err)
}

func (h *CheckoutHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var payload PaymentRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	sess, err := h.service.Pay(r.Context(), session.FromContext(r.Context()), payload.Method)
	h.respond(w, sess, err)
}

func (h *CheckoutHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Close(r.Context(), session.FromContext(r.Context()))
	h.respond(w, sess, err)
}

// respond returns the session even on a failed shipping step, since its
// error map is what the form renders.
func (h *CheckoutHandler) respond(w http.ResponseWriter, sess *checkout.Session, err error) {
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, sess)
	case errors.Is(err, checkout.ErrValidation) && sess != nil:
		respondWithJSON(w, http.StatusUnprocessableEntity, sess)
	default:
		respondWithServiceError(w, err)
	}
}
