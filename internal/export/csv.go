// Package export renders the scan log as a spreadsheet-compatible CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/warescan/warescan/internal/scan"
	"github.com/warescan/warescan/internal/user"
)

// CSVExporter streams the full scan log as CSV, resolving actor display
// names against the live roster with the record's stored name as
// fallback.
type CSVExporter struct {
	scans scan.Repository
	users *user.Service
}

// NewCSVExporter creates a CSVExporter.
func NewCSVExporter(scans scan.Repository, users *user.Service) *CSVExporter {
	return &CSVExporter{scans: scans, users: users}
}

// Write renders all scan records, newest first, to w.
func (e *CSVExporter) Write(ctx context.Context, w io.Writer) error {
	records, err := e.scans.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("listing scans for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"barcode", "scanned_by", "scanned_at"}); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for i := range records {
		rec := &records[i]
		row := []string{
			rec.Barcode,
			e.users.ResolveDisplayName(ctx, rec.ScannedBy, rec.ScannedByName),
			rec.ScannedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing export row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
