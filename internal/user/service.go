package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Service provides roster operations built on a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new roster Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureProfile resolves the roster entry for an authenticated account,
// creating one on first login: role staff, display name taken from the
// local part of the email. The idempotent insert makes concurrent first
// logins for the same account converge on a single entry (first writer
// wins; the loser re-reads the winner's row).
func (s *Service) EnsureProfile(ctx context.Context, accountID uuid.UUID, email string) (*User, error) {
	u, err := s.repo.GetByID(ctx, accountID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	fresh := &User{
		ID:    accountID,
		Email: email,
		Name:  DisplayNameFromEmail(email),
		Role:  RoleStaff,
	}

	inserted, err := s.repo.Create(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	if inserted {
		slog.Info("bootstrapped staff profile", "accountId", accountID, "email", email)
		return fresh, nil
	}

	// Lost the race to a concurrent login; read the winner's row.
	return s.repo.GetByID(ctx, accountID)
}

// CreateProfile inserts a roster entry with an explicit name and role,
// used by the admin account-creation flow. ErrNotFound is never returned;
// an id collision means the profile already exists and is returned as-is.
func (s *Service) CreateProfile(ctx context.Context, accountID uuid.UUID, email, name, role string) (*User, error) {
	if role == "" {
		role = RoleStaff
	}

	u := &User{ID: accountID, Email: email, Name: name, Role: role}
	inserted, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	if !inserted {
		return s.repo.GetByID(ctx, accountID)
	}

	return u, nil
}

// ResolveDisplayName returns the roster name for an actor, falling back to
// the name stored on the scan record when the actor no longer has a roster
// entry. The result is never empty.
func (s *Service) ResolveDisplayName(ctx context.Context, actorID uuid.UUID, storedName string) string {
	u, err := s.repo.GetByID(ctx, actorID)
	if err == nil && strings.TrimSpace(u.Name) != "" {
		return u.Name
	}

	if strings.TrimSpace(storedName) != "" {
		return storedName
	}
	return "unknown"
}

// DisplayNameFromEmail derives a provisional display name from the local
// part of an email address.
func DisplayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
