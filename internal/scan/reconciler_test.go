package scan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warescan/warescan/internal/scan"
)

// --- Mock Repository ---

type mockRepo struct {
	findFn   func(ctx context.Context, barcode string) (*scan.Record, error)
	createFn func(ctx context.Context, rec *scan.Record) error
	touchFn  func(ctx context.Context, id uuid.UUID, actor scan.Actor) (*scan.Record, error)

	created []scan.Record
	touched []uuid.UUID
}

func (m *mockRepo) FindByBarcode(ctx context.Context, barcode string) (*scan.Record, error) {
	if m.findFn != nil {
		return m.findFn(ctx, barcode)
	}
	return nil, scan.ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, rec *scan.Record) error {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	rec.ID = uuid.New()
	rec.ScannedAt = time.Now().UTC()
	m.created = append(m.created, *rec)
	return nil
}

func (m *mockRepo) Touch(ctx context.Context, id uuid.UUID, actor scan.Actor) (*scan.Record, error) {
	m.touched = append(m.touched, id)
	if m.touchFn != nil {
		return m.touchFn(ctx, id, actor)
	}
	return &scan.Record{
		ID:            id,
		ScannedBy:     actor.ID,
		ScannedByName: actor.Name,
		ScannedAt:     time.Now().UTC(),
	}, nil
}

func (m *mockRepo) GetByID(context.Context, uuid.UUID) (*scan.Record, error) {
	return nil, scan.ErrNotFound
}

func (m *mockRepo) List(context.Context, int) ([]scan.Record, error) { return nil, nil }
func (m *mockRepo) Delete(context.Context, uuid.UUID) error          { return nil }
func (m *mockRepo) CountAll(context.Context) (int, error)            { return 0, nil }

func sampleActor() scan.Actor {
	return scan.Actor{ID: uuid.New(), Name: "alice"}
}

// --- Tests ---

func TestReconcile_CreatesWhenAbsent(t *testing.T) {
	repo := &mockRepo{}
	r := scan.NewReconciler(repo)
	actor := sampleActor()

	outcome, err := r.Reconcile(context.Background(), "ABC123", actor)
	require.NoError(t, err)

	assert.Equal(t, scan.ActionCreated, outcome.Action)
	assert.Equal(t, "ABC123", outcome.Record.Barcode)
	assert.Equal(t, actor.ID, outcome.Record.ScannedBy)
	assert.Equal(t, "alice", outcome.Record.ScannedByName)
	require.Len(t, repo.created, 1)
	assert.Empty(t, repo.touched)
}

func TestReconcile_UpdatesWhenPresent(t *testing.T) {
	existing := scan.Record{
		ID:            uuid.New(),
		Barcode:       "ABC123",
		ScannedBy:     uuid.New(),
		ScannedByName: "bob",
		ScannedAt:     time.Now().Add(-time.Hour).UTC(),
	}
	repo := &mockRepo{
		findFn: func(_ context.Context, barcode string) (*scan.Record, error) {
			cp := existing
			return &cp, nil
		},
	}
	r := scan.NewReconciler(repo)
	actor := sampleActor()

	outcome, err := r.Reconcile(context.Background(), "ABC123", actor)
	require.NoError(t, err)

	assert.Equal(t, scan.ActionUpdated, outcome.Action)
	assert.Equal(t, actor.ID, outcome.Record.ScannedBy)
	assert.Empty(t, repo.created, "no new record for a known barcode")
	require.Len(t, repo.touched, 1)
	assert.Equal(t, existing.ID, repo.touched[0])
}

// Reconciling the same never-seen code twice yields Created then Updated
// against a single record.
func TestReconcile_CreateThenUpdate(t *testing.T) {
	var stored *scan.Record
	repo := &mockRepo{}
	repo.findFn = func(_ context.Context, _ string) (*scan.Record, error) {
		if stored == nil {
			return nil, scan.ErrNotFound
		}
		cp := *stored
		return &cp, nil
	}
	repo.createFn = func(_ context.Context, rec *scan.Record) error {
		rec.ID = uuid.New()
		rec.ScannedAt = time.Now().UTC()
		cp := *rec
		stored = &cp
		return nil
	}
	r := scan.NewReconciler(repo)
	actor := sampleActor()

	first, err := r.Reconcile(context.Background(), "NEW001", actor)
	require.NoError(t, err)
	assert.Equal(t, scan.ActionCreated, first.Action)

	second, err := r.Reconcile(context.Background(), "NEW001", actor)
	require.NoError(t, err)
	assert.Equal(t, scan.ActionUpdated, second.Action)
	assert.Equal(t, first.Record.ID, second.Record.ID)
}

func TestReconcile_TrimsBarcode(t *testing.T) {
	repo := &mockRepo{}
	r := scan.NewReconciler(repo)

	outcome, err := r.Reconcile(context.Background(), "  ABC123  ", sampleActor())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", outcome.Record.Barcode)
}

func TestReconcile_RejectsEmptyBarcode(t *testing.T) {
	repo := &mockRepo{}
	r := scan.NewReconciler(repo)

	_, err := r.Reconcile(context.Background(), "   ", sampleActor())
	assert.ErrorIs(t, err, scan.ErrEmptyBarcode)
	assert.Empty(t, repo.created)
}

func TestReconcile_PropagatesLookupError(t *testing.T) {
	repo := &mockRepo{
		findFn: func(context.Context, string) (*scan.Record, error) {
			return nil, errors.New("connection refused")
		},
	}
	r := scan.NewReconciler(repo)

	_, err := r.Reconcile(context.Background(), "ABC123", sampleActor())
	require.Error(t, err)
	assert.Empty(t, repo.created, "no write after a failed lookup")
}

func TestReconcile_PropagatesWriteError(t *testing.T) {
	repo := &mockRepo{
		createFn: func(context.Context, *scan.Record) error {
			return errors.New("permission denied")
		},
	}
	r := scan.NewReconciler(repo)

	_, err := r.Reconcile(context.Background(), "ABC123", sampleActor())
	assert.Error(t, err)
}
