package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/warescan/warescan/internal/user"
)

// ErrInvalidCredentials is returned when the password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

const resetTokenTTL = time.Hour

// Service is the identity gate: it authenticates accounts, resolves
// session tokens to identities, bootstraps profiles on first login and
// owns the admin account-creation side channel.
type Service struct {
	repo       Repository
	users      *user.Service
	tokens     *TokenManager
	mailer     Mailer
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(repo Repository, users *user.Service, tokens *TokenManager, mailer Mailer, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		bcryptCost: bcryptCost,
	}
}

// Login verifies the credential and returns a session token plus the
// resolved identity. First login for a fresh account bootstraps a staff
// profile as a side effect.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Identity, error) {
	cred, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil, ErrAccountNotFound
		}
		return "", nil, fmt.Errorf("looking up account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	identity := s.resolveProfile(ctx, cred.ID, cred.Email)

	token, err := s.tokens.Generate(cred.ID, cred.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session token: %w", err)
	}

	return token, identity, nil
}

// ResolveIdentity verifies a session token and resolves the actor's
// current roster entry. Roster role changes take effect on the next
// request, not the next login.
func (s *Service) ResolveIdentity(ctx context.Context, tokenString string) (*Identity, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	accountID := uuid.MustParse(claims.AccountID)
	return s.resolveProfile(ctx, accountID, claims.Email), nil
}

// resolveProfile loads (or first-login-bootstraps) the roster entry for
// an authenticated account. A transient profile failure degrades to a
// staff-role identity instead of failing the request: availability wins
// over strict authorization here, and staff is the least privileged role.
func (s *Service) resolveProfile(ctx context.Context, accountID uuid.UUID, email string) *Identity {
	profile, err := s.users.EnsureProfile(ctx, accountID, email)
	if err != nil {
		slog.Warn("profile sync failed, defaulting to staff", "accountId", accountID, "error", err)
		return &Identity{
			AccountID: accountID,
			Email:     email,
			Name:      user.DisplayNameFromEmail(email),
			Role:      user.RoleStaff,
		}
	}

	return &Identity{
		AccountID: accountID,
		Email:     profile.Email,
		Name:      profile.Name,
		Role:      profile.Role,
	}
}

// Register creates a credential and roster profile for a new account.
// Tokens are stateless, so an admin creating accounts never disturbs
// their own session.
func (s *Service) Register(ctx context.Context, email, password, name, role string) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	cred := &Credential{Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, cred); err != nil {
		return nil, err
	}

	profile, err := s.users.CreateProfile(ctx, cred.ID, email, name, role)
	if err != nil {
		return nil, fmt.Errorf("creating roster entry: %w", err)
	}

	slog.Info("account created", "email", email, "role", profile.Role)
	return profile, nil
}

// RequestPasswordReset issues a single-use reset token and hands it to
// the mailer. Unknown emails surface ErrAccountNotFound; nothing is
// retried.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	cred, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	if err := s.repo.CreateResetToken(ctx, token, cred.ID, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	return s.mailer.SendPasswordReset(ctx, email, token)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, err := s.repo.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, accountID, string(hash))
}

// Bootstrap creates the initial admin account when the credential store
// is empty. The password comes from configuration, or is generated and
// logged once when unset.
func (s *Service) Bootstrap(ctx context.Context, adminEmail, adminPassword string) error {
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("counting credentials: %w", err)
	}
	if count > 0 {
		return nil
	}

	generated := false
	if adminPassword == "" {
		adminPassword, err = randomToken()
		if err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		generated = true
	}

	if _, err := s.Register(ctx, adminEmail, adminPassword, user.DisplayNameFromEmail(adminEmail), user.RoleAdmin); err != nil {
		return fmt.Errorf("creating initial admin: %w", err)
	}

	if generated {
		slog.Info("initial admin password created", "email", adminEmail, "password", adminPassword)
	} else {
		slog.Info("initial admin created", "email", adminEmail)
	}

	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
