package scan

import (
	"time"

	"github.com/google/uuid"
)

// Record represents a row in the scans table. Barcode is the natural
// dedup key; the reconciler keeps at most one record per barcode on a
// best-effort basis (no store constraint enforces it).
type Record struct {
	ID            uuid.UUID
	Barcode       string
	ScannedBy     uuid.UUID
	ScannedByName string
	ScannedAt     time.Time
}

// Actor is the identity attributed to a scan.
type Actor struct {
	ID   uuid.UUID
	Name string
}
