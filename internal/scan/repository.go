package scan

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a scan record is not found.
var ErrNotFound = errors.New("scan record not found")

// Repository provides operations on the scans table. scanned_at is always
// assigned server-side (NOW() at the store), never from the client clock.
type Repository interface {
	// FindByBarcode returns the record for a barcode. If duplicates exist
	// (a store-level anomaly) the oldest record is returned.
	FindByBarcode(ctx context.Context, barcode string) (*Record, error)
	Create(ctx context.Context, rec *Record) error
	// Touch refreshes an existing record's attribution and scanned_at.
	Touch(ctx context.Context, id uuid.UUID, actor Actor) (*Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	// List returns the most recent records, newest first. limit <= 0
	// returns all records.
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int, error)
}
