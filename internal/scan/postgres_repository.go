package scan

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

// FindByBarcode returns the oldest record matching the barcode.
func (r *PostgresRepository) FindByBarcode(ctx context.Context, barcode string) (*Record, error) {
	query := `
		SELECT id, barcode, scanned_by, scanned_by_name, scanned_at
		FROM scans
		WHERE barcode = $1
		ORDER BY scanned_at ASC
		LIMIT 1`

	var rec Record
	err := r.pool.QueryRow(ctx, query, barcode).Scan(
		&rec.ID, &rec.Barcode, &rec.ScannedBy, &rec.ScannedByName, &rec.ScannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying scan by barcode: %w", err)
	}

	return &rec, nil
}

// Create inserts a new scan record with a server-assigned timestamp.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO scans (barcode, scanned_by, scanned_by_name)
		VALUES ($1, $2, $3)
		RETURNING id, scanned_at`

	err := r.pool.QueryRow(ctx, query,
		rec.Barcode,
		rec.ScannedBy,
		rec.ScannedByName,
	).Scan(&rec.ID, &rec.ScannedAt)
	if err != nil {
		return fmt.Errorf("inserting scan: %w", err)
	}

	return nil
}

// Touch refreshes attribution and scanned_at on an existing record,
// leaving the barcode unchanged.
func (r *PostgresRepository) Touch(ctx context.Context, id uuid.UUID, actor Actor) (*Record, error) {
	query := `
		UPDATE scans
		SET scanned_by = $2, scanned_by_name = $3, scanned_at = NOW()
		WHERE id = $1
		RETURNING id, barcode, scanned_by, scanned_by_name, scanned_at`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id, actor.ID, actor.Name).Scan(
		&rec.ID, &rec.Barcode, &rec.ScannedBy, &rec.ScannedByName, &rec.ScannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("touching scan: %w", err)
	}

	return &rec, nil
}

// GetByID retrieves a single scan record by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `
		SELECT id, barcode, scanned_by, scanned_by_name, scanned_at
		FROM scans
		WHERE id = $1`

	var rec Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Barcode, &rec.ScannedBy, &rec.ScannedByName, &rec.ScannedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying scan: %w", err)
	}

	return &rec, nil
}

// List returns recent scan records, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, barcode, scanned_by, scanned_by_name, scanned_at
		FROM scans
		ORDER BY scanned_at DESC`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.pool.Query(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(&rec.ID, &rec.Barcode, &rec.ScannedBy, &rec.ScannedByName, &rec.ScannedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning scan row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan rows: %w", err)
	}

	if records == nil {
		records = []Record{}
	}

	return records, nil
}

// Delete removes a scan record.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM scans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting scan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// CountAll returns the total number of scan records.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM scans`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting scans: %w", err)
	}
	return count, nil
}
