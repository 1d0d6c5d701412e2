package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/warescan/warescan/internal/user"
)

// Credential represents a row in the credentials table. It is the
// identity-provider side of an account and is intentionally independent
// of the roster: deleting a roster entry does not revoke the credential.
type Credential struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the resolved actor carried in the request context.
type Identity struct {
	AccountID uuid.UUID
	Email     string
	Name      string
	Role      string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}
