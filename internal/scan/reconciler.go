package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Action reports which write a reconciliation performed.
type Action string

const (
	// ActionCreated means no record existed for the barcode and one was inserted.
	ActionCreated Action = "created"
	// ActionUpdated means an existing record's attribution was refreshed.
	ActionUpdated Action = "updated"
)

// ErrEmptyBarcode is returned when a blank code reaches the reconciler.
var ErrEmptyBarcode = errors.New("barcode is empty")

// Outcome is the result of a successful reconciliation.
type Outcome struct {
	Action Action
	Record *Record
}

// Reconciler applies the create-or-update rule for incoming barcode reads:
// an existing record for the barcode is refreshed in place, otherwise a
// new record is created. The lookup and the write are two separate store
// operations; two sessions hitting the same brand-new barcode at once can
// both observe "not found" and insert twice. Uniqueness per barcode is
// therefore eventual, not strict.
type Reconciler struct {
	repo Repository
}

// NewReconciler creates a new Reconciler over the given repository.
func NewReconciler(repo Repository) *Reconciler {
	return &Reconciler{repo: repo}
}

// Reconcile upserts the barcode into the scan log attributed to the actor.
func (r *Reconciler) Reconcile(ctx context.Context, barcode string, actor Actor) (*Outcome, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ErrEmptyBarcode
	}

	existing, err := r.repo.FindByBarcode(ctx, barcode)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("looking up barcode: %w", err)
	}

	if existing != nil {
		touched, err := r.repo.Touch(ctx, existing.ID, actor)
		if err != nil {
			return nil, fmt.Errorf("refreshing scan record: %w", err)
		}
		slog.Debug("scan refreshed", "barcode", barcode, "actor", actor.ID)
		return &Outcome{Action: ActionUpdated, Record: touched}, nil
	}

	rec := &Record{
		Barcode:       barcode,
		ScannedBy:     actor.ID,
		ScannedByName: actor.Name,
	}
	if err := r.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating scan record: %w", err)
	}

	slog.Debug("scan created", "barcode", barcode, "actor", actor.ID)
	return &Outcome{Action: ActionCreated, Record: rec}, nil
}
