package validation

import (
	"strings"

	"github.com/warescan/warescan/internal/user"
)

func validRole(role string) bool {
	return role == user.RoleStaff || role == user.RoleAdmin
}

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// ValidateCreateUserRequest validates the fields of a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	errs = appendEmailErrors(errs, req.Email)
	errs = appendPasswordErrors(errs, req.Password)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role != "" && !validRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be staff or admin"})
	}

	return errs
}

// UpdateUserRequest mirrors the fields needed for update user validation.
type UpdateUserRequest struct {
	Name *string
	Role *string
}

// ValidateUpdateUserRequest validates the fields of an update user request.
func ValidateUpdateUserRequest(req UpdateUserRequest) []FieldError {
	var errs []FieldError

	if req.Name == nil && req.Role == nil {
		errs = append(errs, FieldError{Field: "name", Message: "at least one of name or role is required"})
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name must not be blank"})
	}

	if req.Role != nil && !validRole(*req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be staff or admin"})
	}

	return errs
}
