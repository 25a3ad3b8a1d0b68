package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/session"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

// SessionHeader carries the browser's session id. Anonymous state (cart,
// favorites, preferences) is keyed by it.
const SessionHeader = "X-Session-ID"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.State, error)
}

// Owner resolves the request's session.Owner. A missing or malformed session
// id is replaced by a fresh one, echoed back so the client can keep it. A
// bearer token that no longer authenticates leaves the request anonymous.
func Owner(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.FromString(r.Header.Get(SessionHeader))
			if err != nil {
				id, err = uuid.NewV4()
				if err != nil {
					log.Error().Err(err).Msg("handler: failed to generate session id")
					respondWithError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
			}
			scope := id.String()
			w.Header().Set(SessionHeader, scope)

			owner := session.Owner{Scope: scope}
			if token := bearerToken(r); token != "" {
				state, err := authenticator.Authenticate(r.Context(), token)
				switch {
				case err == nil:
					owner.CustomerID = state.UID
					owner.Email = state.Email
				case errors.Is(err, auth.ErrInvalidCredential):
					log.Debug().Msg("handler: ignoring stale bearer token")
				default:
					log.Error().Err(err).Msg("handler: failed to authenticate bearer token")
					respondWithError(w, http.StatusInternalServerError, "Internal server error")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(session.WithOwner(r.Context(), owner)))
		})
	}
}

func RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).Authenticated() {
			respondWithError(w, http.StatusUnauthorized, "Sign in required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type staffKey struct{}

// RequireStaff admits requests while a staff member is signed in on the
// requesting session. With roles given, the member must hold one of them.
func RequireStaff(svc staff.Service, roles ...staff.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := svc.Current(r.Context(), terminal(r))
			if err != nil {
				respondWithServiceError(w, err)
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				log.Warn().Stringer("employee_id", user.ID).Stringer("role", user.Role).Str("path", r.URL.Path).Msg("handler: staff role refused")
				respondWithError(w, http.StatusForbidden, staff.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staffKey{}, user)))
		})
	}
}

func currentStaff(ctx context.Context) *staff.CurrentUser {
	user, _ := ctx.Value(staffKey{}).(*staff.CurrentUser)
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
