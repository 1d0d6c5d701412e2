package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to roster entries.
const (
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// User represents a row in the users roster table. The id is shared with
// the account's credential; the reference is weak, so a roster entry can
// be deleted while the credential (and any scans attributed to the id)
// remain.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}

// UpdateFields holds admin-updatable fields on a roster entry.
// Nil fields are not updated.
type UpdateFields struct {
	Name *string
	Role *string
}
