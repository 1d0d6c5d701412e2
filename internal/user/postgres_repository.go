package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// Create inserts a roster entry. ON CONFLICT DO NOTHING makes first-login
// bootstrap safe under concurrent logins for the same new account: the
// first writer wins and the second insert is a no-op.
func (r *PostgresRepository) Create(ctx context.Context, u *User) (bool, error) {
	query := `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.pool.Exec(ctx, query, u.ID, u.Email, u.Name, u.Role)
	if err != nil {
		return false, fmt.Errorf("inserting user: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a single roster entry by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, name, role, created_at
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// List retrieves all roster entries ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, email, name, role, created_at
		FROM users
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	if users == nil {
		users = []User{}
	}

	return users, nil
}

// Update modifies name and/or role on a roster entry.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    role = COALESCE($3, role)
		WHERE id = $1
		RETURNING id, email, name, role, created_at`

	var u User
	err := r.pool.QueryRow(ctx, query, id, fields.Name, fields.Role).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return &u, nil
}

// Delete removes a roster entry. Scan records referencing the id are left
// untouched; display falls back to their stored scanned_by_name.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountAll returns the total number of roster entries.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}
