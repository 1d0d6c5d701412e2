package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/api/response"
	"github.com/warescan/warescan/internal/api/validation"
	"github.com/warescan/warescan/internal/auth"
	"github.com/warescan/warescan/internal/user"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type deleteUserResponse struct {
	Status  string `json:"status"`
	Warning string `json:"warning"`
}

// UserNotifier is told after roster mutations so live subscribers
// receive a fresh snapshot.
type UserNotifier interface {
	UsersChanged(ctx context.Context)
}

// UserHandler handles roster CRUD endpoints.
type UserHandler struct {
	gate     *auth.Service
	repo     user.Repository
	notifier UserNotifier
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(gate *auth.Service, repo user.Repository, notifier UserNotifier) *UserHandler {
	return &UserHandler{gate: gate, repo: repo, notifier: notifier}
}

// Create handles POST /users: the admin side channel for account
// creation. Session tokens are stateless, so creating another account
// never terminates the calling admin's session.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	profile, err := h.gate.Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Err(w, http.StatusConflict, "EMAIL_TAKEN", "This email is already registered", requestID)
			return
		}
		slog.Error("failed to create user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	}

	if h.notifier != nil {
		h.notifier.UsersChanged(r.Context())
	}

	response.Success(w, http.StatusCreated, toUserResponse(profile), requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, len(items), requestID)
}

// Update handles PATCH /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateUserRequest(validation.UpdateUserRequest{
		Name: req.Name,
		Role: req.Role,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.repo.Update(r.Context(), id, user.UpdateFields{Name: req.Name, Role: req.Role})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update user", requestID)
		return
	}

	if h.notifier != nil {
		h.notifier.UsersChanged(r.Context())
	}

	response.Success(w, http.StatusOK, toUserResponse(updated), requestID)
}

// Delete handles DELETE /users/{id}. Only the roster entry is removed;
// the account's credential stays valid and can still log in. Scans
// attributed to the id keep rendering via their stored name.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to delete user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete user", requestID)
		return
	}

	if h.notifier != nil {
		h.notifier.UsersChanged(r.Context())
	}

	response.Success(w, http.StatusOK, deleteUserResponse{
		Status:  "deleted",
		Warning: "roster entry removed; the login credential remains active",
	}, requestID)
}

func toUserResponse(u *user.User) userResponse {
	resp := userResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
