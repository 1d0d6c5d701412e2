package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no credential matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// ErrEmailTaken is returned when creating a credential with an email that
// is already registered.
var ErrEmailTaken = errors.New("email already in use")

// ErrInvalidResetToken is returned for unknown or expired reset tokens.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// Repository provides operations on the credentials and reset-token tables.
type Repository interface {
	Create(ctx context.Context, c *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Credential, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	CountAll(ctx context.Context) (int, error)

	CreateResetToken(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error
	// ConsumeResetToken deletes the token and returns its account id.
	// Unknown or expired tokens yield ErrInvalidResetToken.
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}
