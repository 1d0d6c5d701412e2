package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new credential.
func (r *PostgresRepository) Create(ctx context.Context, c *Credential) error {
	query := `
		INSERT INTO credentials (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, c.Email, c.PasswordHash).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("inserting credential: %w", err)
	}

	return nil
}

// GetByEmail retrieves a credential by email address.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Credential, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM credentials
		WHERE email = $1`

	var c Credential
	err := r.pool.QueryRow(ctx, query, email).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying credential: %w", err)
	}

	return &c, nil
}

// GetByID retrieves a credential by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Credential, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM credentials
		WHERE id = $1`

	var c Credential
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying credential: %w", err)
	}

	return &c, nil
}

// UpdatePassword replaces a credential's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE credentials SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	return nil
}

// CountAll returns the total number of credentials.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting credentials: %w", err)
	}
	return count, nil
}

// CreateResetToken stores a single-use password reset token.
func (r *PostgresRepository) CreateResetToken(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO password_reset_tokens (token, account_id, expires_at) VALUES ($1, $2, $3)`,
		token, accountID, expiresAt)
	if err != nil {
		return fmt.Errorf("inserting reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken deletes the token row and returns its account id if
// the token had not yet expired.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE token = $1
		RETURNING account_id, expires_at`

	var (
		accountID uuid.UUID
		expiresAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, token).Scan(&accountID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrInvalidResetToken
		}
		return uuid.Nil, fmt.Errorf("consuming reset token: %w", err)
	}

	if time.Now().After(expiresAt) {
		return uuid.Nil, ErrInvalidResetToken
	}

	return accountID, nil
}
