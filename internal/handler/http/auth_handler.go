package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/customer"
	"github.com/vasiliy-maslov/technova/internal/favorites"
	"github.com/vasiliy-maslov/technova/internal/session"
)

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthStateResponse mirrors the auth listener: user is null when signed out.
type AuthStateResponse struct {
	User *auth.State `json:"user"`
}

type AuthHandler struct {
	service   auth.Service
	customers customer.Service
	favorites favorites.Service
}

func NewAuthHandler(service auth.Service, customers customer.Service, favorites favorites.Service) *AuthHandler {
	return &AuthHandler{
		service:   service,
		customers: customers,
		favorites: favorites,
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignUp)
		r.Post("/signin", h.handleSignIn)
		r.Post("/signout", h.handleSignOut)
		r.Post("/password-reset", h.handlePasswordReset)
		r.Post("/password-reset/confirm", h.handlePasswordResetConfirm)
		r.Get("/state", h.handleState)
	})
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	sess, err := h.service.SignUp(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.afterSignIn(r.Context(), sess)
	respondWithJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	sess, err := h.service.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.afterSignIn(r.Context(), sess)
	respondWithJSON(w, http.StatusOK, sess)
}

// afterSignIn makes sure the profile document exists and folds the
// anonymous favorites into the account. Both are best effort.
func (h *AuthHandler) afterSignIn(ctx context.Context, sess *auth.Session) {
	if _, err := h.customers.Ensure(ctx, sess.User.UID, sess.User.Email); err != nil {
		log.Warn().Err(err).Str("customer_id", sess.User.UID).Msg("handler: failed to ensure customer profile")
	}

	owner := session.FromContext(ctx)
	owner.CustomerID = sess.User.UID
	owner.Email = sess.User.Email
	if _, err := h.favorites.Merge(ctx, owner); err != nil {
		log.Warn().Err(err).Str("customer_id", sess.User.UID).Msg("handler: failed to merge favorites")
	}
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.service.SignOut(r.Context(), token); err != nil {
		respondWithServiceError(w, err)
		return
	}

	if owner := session.FromContext(r.Context()); owner.Authenticated() {
		h.favorites.Forget(owner.CustomerID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload PasswordResetRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AuthHandler) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var payload PasswordResetConfirmRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleState(w http.ResponseWriter, r *http.Request) {
	owner := session.FromContext(r.Context())
	if !owner.Authenticated() {
		respondWithJSON(w, http.StatusOK, AuthStateResponse{})
		return
	}
	respondWithJSON(w, http.StatusOK, AuthStateResponse{User: &auth.State{UID: owner.CustomerID, Email: owner.Email}})
}
