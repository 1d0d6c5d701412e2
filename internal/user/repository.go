package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a roster entry is not found.
var ErrNotFound = errors.New("user not found")

// Repository provides operations on the users roster table.
type Repository interface {
	// Create inserts a roster entry. It is idempotent by id: inserting
	// an id that already exists is a no-op and reports inserted=false.
	Create(ctx context.Context, u *User) (inserted bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int, error)
}
