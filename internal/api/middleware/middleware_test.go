package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/auth"
	"github.com/warescan/warescan/internal/user"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// --- RequestID ---

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = middleware.GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, capturedID)
	_, err := uuid.Parse(capturedID)
	assert.NoError(t, err, "generated request ID should be a valid UUID")
	assert.Equal(t, capturedID, w.Header().Get("X-Request-ID"))
}

func TestRequestID_UsesExistingHeader(t *testing.T) {
	existingID := "my-existing-request-id"
	var capturedID string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedID = middleware.GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", existingID)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, existingID, capturedID)
	assert.Equal(t, existingID, w.Header().Get("X-Request-ID"))
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	assert.Empty(t, middleware.GetRequestID(context.Background()))
}

// --- Recovery ---

func TestRecovery_NoPanic(t *testing.T) {
	handler := middleware.Recovery(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_HandlesPanic(t *testing.T) {
	handler := middleware.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", errObj["code"])
}

// --- Auth / RequireAdmin ---

type stubCredRepo struct {
	creds map[string]*auth.Credential
}

func (s *stubCredRepo) Create(_ context.Context, c *auth.Credential) error {
	c.ID = uuid.New()
	s.creds[c.Email] = c
	return nil
}

func (s *stubCredRepo) GetByEmail(_ context.Context, email string) (*auth.Credential, error) {
	if c, ok := s.creds[email]; ok {
		return c, nil
	}
	return nil, auth.ErrAccountNotFound
}

func (s *stubCredRepo) GetByID(_ context.Context, id uuid.UUID) (*auth.Credential, error) {
	for _, c := range s.creds {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *stubCredRepo) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func (s *stubCredRepo) CountAll(_ context.Context) (int, error) { return len(s.creds), nil }

func (s *stubCredRepo) CreateResetToken(context.Context, string, uuid.UUID, time.Time) error {
	return nil
}

func (s *stubCredRepo) ConsumeResetToken(context.Context, string) (uuid.UUID, error) {
	return uuid.Nil, auth.ErrInvalidResetToken
}

type stubUserRepo struct {
	users map[uuid.UUID]*user.User
}

func (s *stubUserRepo) Create(_ context.Context, u *user.User) (bool, error) {
	if _, ok := s.users[u.ID]; ok {
		return false, nil
	}
	s.users[u.ID] = u
	return true, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) List(context.Context) ([]user.User, error) { return nil, nil }

func (s *stubUserRepo) Update(context.Context, uuid.UUID, user.UpdateFields) (*user.User, error) {
	return nil, user.ErrNotFound
}

func (s *stubUserRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (s *stubUserRepo) CountAll(_ context.Context) (int, error) { return len(s.users), nil }

// setupGate builds an identity gate over stub stores and registers one
// account per role, returning session tokens for each.
func setupGate(t *testing.T) (gate *auth.Service, staffToken, adminToken string) {
	t.Helper()

	users := user.NewService(&stubUserRepo{users: make(map[uuid.UUID]*user.User)})
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	gate = auth.NewService(&stubCredRepo{creds: make(map[string]*auth.Credential)}, users, tokens, auth.LogMailer{}, 4)

	ctx := context.Background()
	_, err := gate.Register(ctx, "staff@example.com", "staff-secret", "Staff", user.RoleStaff)
	require.NoError(t, err)
	_, err = gate.Register(ctx, "admin@example.com", "admin-secret", "Admin", user.RoleAdmin)
	require.NoError(t, err)

	staffToken, _, err = gate.Login(ctx, "staff@example.com", "staff-secret")
	require.NoError(t, err)
	adminToken, _, err = gate.Login(ctx, "admin@example.com", "admin-secret")
	require.NoError(t, err)
	return gate, staffToken, adminToken
}

func TestAuth_MissingToken(t *testing.T) {
	gate, _, _ := setupGate(t)

	handler := middleware.Auth(gate)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	gate, staffToken, _ := setupGate(t)

	handler := middleware.Auth(gate)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// Token without the Bearer scheme is rejected.
	req.Header.Set("Authorization", staffToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	gate, _, _ := setupGate(t)

	handler := middleware.Auth(gate)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ResolvesIdentity(t *testing.T) {
	gate, staffToken, _ := setupGate(t)

	var identity *auth.Identity
	handler := middleware.Auth(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity = middleware.GetIdentity(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, identity)
	assert.Equal(t, "staff@example.com", identity.Email)
	assert.Equal(t, user.RoleStaff, identity.Role)
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	gate, _, adminToken := setupGate(t)

	handler := middleware.Auth(gate)(middleware.RequireAdmin()(okHandler()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_StaffRejected(t *testing.T) {
	gate, staffToken, _ := setupGate(t)

	handler := middleware.Auth(gate)(middleware.RequireAdmin()(okHandler()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_NoIdentity(t *testing.T) {
	handler := middleware.RequireAdmin()(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
