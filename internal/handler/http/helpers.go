package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/technova/internal/assistant"
	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/checkout"
	"github.com/vasiliy-maslov/technova/internal/customer"
	"github.com/vasiliy-maslov/technova/internal/filestore"
	"github.com/vasiliy-maslov/technova/internal/inventory"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/preferences"
	"github.com/vasiliy-maslov/technova/internal/repair"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// respondWithError writes {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

// decodeJSON rejects unknown fields and writes the 400 itself; callers just
// return on false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("handler: invalid request payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// validateStruct writes the validation response and reports whether the
// payload passed.
func validateStruct(w http.ResponseWriter, v *validator.Validate, payload any) bool {
	err := v.Struct(payload)
	if err == nil {
		return true
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(ve),
		})
		return false
	}

	log.Error().Err(err).Msg("handler: validator failed")
	respondWithError(w, http.StatusInternalServerError, "Internal server error")
	return false
}

func formatValidationErrors(ve validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = field + " is required"
		case "email":
			details[field] = field + " must be a valid email address"
		case "min", "gte":
			details[field] = field + " must be at least " + fe.Param()
		case "max", "lte":
			details[field] = field + " must be at most " + fe.Param()
		case "oneof":
			details[field] = field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			details[field] = field + " is invalid"
		}
	}
	return details
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, filestore.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, repair.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, customer.ErrAddressNotFound),
		errors.Is(err, staff.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, checkout.ErrValidation),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidPayment),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, repair.ErrValidation),
		errors.Is(err, repair.ErrInvalidField),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidTransfer),
		errors.Is(err, inventory.ErrInvalidItem),
		errors.Is(err, customer.ErrValidation),
		errors.Is(err, staff.ErrValidation),
		errors.Is(err, preferences.ErrUnsupportedLanguage),
		errors.Is(err, assistant.ErrBadImage),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest

	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, repair.ErrInvalidTransition),
		errors.Is(err, repair.ErrDuplicateID),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrDuplicateSKU),
		errors.Is(err, staff.ErrDuplicate),
		errors.Is(err, staff.ErrAlreadyClockedIn),
		errors.Is(err, staff.ErrNotClockedIn),
		errors.Is(err, auth.ErrEmailAlreadyInUse):
		return http.StatusConflict

	case errors.Is(err, staff.ErrInvalidPIN),
		errors.Is(err, staff.ErrNotSignedIn),
		errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, auth.ErrInvalidCredential):
		return http.StatusUnauthorized

	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, staff.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, auth.ErrTooManyRequests), errors.Is(err, staff.ErrTooManyAttempts):
		return http.StatusTooManyRequests

	case errors.Is(err, assistant.ErrUpstream),
		errors.Is(err, assistant.ErrEmptyReply):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError maps err to a status. Internal failures get a
// generic message; auth failures also carry their code.
func respondWithServiceError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	switch {
	case code == http.StatusInternalServerError:
		respondWithError(w, code, "Internal server error")
	case auth.Code(err) != auth.CodeInternal:
		respondWithJSON(w, code, AuthErrorResponse{Error: auth.Message(err), Code: auth.Code(err)})
	default:
		respondWithError(w, code, err.Error())
	}
}

type AuthErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
