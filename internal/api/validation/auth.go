package validation

import (
	"net/mail"
	"strings"
)

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	errs = appendEmailErrors(errs, req.Email)
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// ResetConfirmRequest mirrors the fields of a password-reset confirmation.
type ResetConfirmRequest struct {
	Token    string
	Password string
}

// ValidateResetConfirmRequest validates a password-reset confirmation.
func ValidateResetConfirmRequest(req ResetConfirmRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Token) == "" {
		errs = append(errs, FieldError{Field: "token", Message: "token is required"})
	}
	errs = appendPasswordErrors(errs, req.Password)

	return errs
}

func appendEmailErrors(errs []FieldError, email string) []FieldError {
	if email == "" {
		return append(errs, FieldError{Field: "email", Message: "email is required"})
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}
	return errs
}

func appendPasswordErrors(errs []FieldError, password string) []FieldError {
	if password == "" {
		return append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	if len(password) < 6 {
		return append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	return errs
}
