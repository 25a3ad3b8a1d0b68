package auth

import "errors"

// Error is an auth failure carrying a stable code the storefront switches on.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

var (
	ErrInvalidEmail      = &Error{Code: "auth/invalid-email"}
	ErrWrongPassword     = &Error{Code: "auth/wrong-password"}
	ErrInvalidCredential = &Error{Code: "auth/invalid-credential"}
	ErrUserNotFound      = &Error{Code: "auth/user-not-found"}
	ErrEmailAlreadyInUse = &Error{Code: "auth/email-already-in-use"}
	ErrWeakPassword      = &Error{Code: "auth/weak-password"}
	ErrTooManyRequests   = &Error{Code: "auth/too-many-requests"}
)

var messages = map[*Error]string{
	ErrInvalidEmail:      "Please enter a valid email address.",
	ErrWrongPassword:     "Incorrect password. Please try again.",
	ErrInvalidCredential: "Invalid email or password.",
	ErrUserNotFound:      "No account found with this email.",
	ErrEmailAlreadyInUse: "An account with this email already exists.",
	ErrWeakPassword:      "Password should be at least 6 characters.",
	ErrTooManyRequests:   "Too many failed attempts. Please try again later.",
}

const (
	CodeInternal   = "auth/internal-error"
	defaultMessage = "Something went wrong. Please try again."
)

// Code returns the auth code of err, or CodeInternal.
func Code(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Code
	}
	return CodeInternal
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var authErr *Error
	if errors.As(err, &authErr) {
		if msg, ok := messages[authErr]; ok {
			return msg
		}
	}
	return defaultMessage
}
