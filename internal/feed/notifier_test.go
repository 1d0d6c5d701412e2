package feed_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warescan/warescan/internal/feed"
	"github.com/warescan/warescan/internal/scan"
	"github.com/warescan/warescan/internal/user"
)

type stubScanRepo struct {
	records []scan.Record
	err     error
	gotLim  int
}

func (s *stubScanRepo) FindByBarcode(context.Context, string) (*scan.Record, error) {
	return nil, scan.ErrNotFound
}
func (s *stubScanRepo) Create(context.Context, *scan.Record) error { return nil }
func (s *stubScanRepo) Touch(context.Context, uuid.UUID, scan.Actor) (*scan.Record, error) {
	return nil, scan.ErrNotFound
}
func (s *stubScanRepo) GetByID(context.Context, uuid.UUID) (*scan.Record, error) {
	return nil, scan.ErrNotFound
}
func (s *stubScanRepo) List(_ context.Context, limit int) ([]scan.Record, error) {
	s.gotLim = limit
	return s.records, s.err
}
func (s *stubScanRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (s *stubScanRepo) CountAll(context.Context) (int, error)   { return len(s.records), nil }

type stubUserRepo struct {
	users []user.User
	err   error
}

func (s *stubUserRepo) Create(context.Context, *user.User) (bool, error) { return true, nil }
func (s *stubUserRepo) GetByID(context.Context, uuid.UUID) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUserRepo) List(context.Context) ([]user.User, error) { return s.users, s.err }
func (s *stubUserRepo) Update(context.Context, uuid.UUID, user.UpdateFields) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUserRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (s *stubUserRepo) CountAll(context.Context) (int, error)   { return len(s.users), nil }

func TestNotifier_ScansChangedPublishesSnapshot(t *testing.T) {
	hub := feed.NewHub()
	ch, cancel := hub.Subscribe(feed.TopicScans)
	defer cancel()

	rec := scan.Record{
		ID:            uuid.New(),
		Barcode:       "PKG-1",
		ScannedBy:     uuid.New(),
		ScannedByName: "Kim",
		ScannedAt:     time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
	}
	scans := &stubScanRepo{records: []scan.Record{rec}}

	n := feed.NewNotifier(hub, scans, &stubUserRepo{}, 25)
	n.ScansChanged(context.Background())

	assert.Equal(t, 25, scans.gotLim, "snapshot honors the configured limit")

	var items []struct {
		Barcode       string `json:"barcode"`
		ScannedByName string `json:"scannedByName"`
		ScannedAt     string `json:"scannedAt"`
	}
	require.NoError(t, json.Unmarshal(<-ch, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "PKG-1", items[0].Barcode)
	assert.Equal(t, "Kim", items[0].ScannedByName)
	assert.Equal(t, "2026-05-02T08:00:00Z", items[0].ScannedAt)
}

func TestNotifier_UsersChangedPublishesSnapshot(t *testing.T) {
	hub := feed.NewHub()
	ch, cancel := hub.Subscribe(feed.TopicUsers)
	defer cancel()

	users := &stubUserRepo{users: []user.User{
		{ID: uuid.New(), Email: "kim@example.com", Name: "Kim", Role: user.RoleStaff},
	}}

	n := feed.NewNotifier(hub, &stubScanRepo{}, users, 25)
	n.UsersChanged(context.Background())

	var items []struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(<-ch, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "kim@example.com", items[0].Email)
	assert.Equal(t, user.RoleStaff, items[0].Role)
}

func TestNotifier_EmptyLogPublishesEmptyArray(t *testing.T) {
	hub := feed.NewHub()
	ch, cancel := hub.Subscribe(feed.TopicScans)
	defer cancel()

	n := feed.NewNotifier(hub, &stubScanRepo{}, &stubUserRepo{}, 25)
	n.ScansChanged(context.Background())

	assert.JSONEq(t, `[]`, string(<-ch))
}

func TestNotifier_QueryFailureSkipsPublish(t *testing.T) {
	hub := feed.NewHub()
	ch, cancel := hub.Subscribe(feed.TopicScans)
	defer cancel()

	n := feed.NewNotifier(hub, &stubScanRepo{err: errors.New("store down")}, &stubUserRepo{}, 25)
	n.ScansChanged(context.Background())

	select {
	case <-ch:
		t.Fatal("failed snapshot must not be published")
	default:
	}
}
