package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/warescan/warescan/internal/api/middleware"
	"github.com/warescan/warescan/internal/api/response"
	"github.com/warescan/warescan/internal/api/validation"
	"github.com/warescan/warescan/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthHandler handles login and password-reset endpoints.
type AuthHandler struct {
	gate *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gate *auth.Service) *AuthHandler {
	return &AuthHandler{gate: gate}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	token, identity, err := h.gate.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountNotFound):
			response.Err(w, http.StatusUnauthorized, "USER_NOT_FOUND", "No account exists for this email", requestID)
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
		default:
			slog.Error("login failed", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, loginResponse{
		Token: token,
		User: userResponse{
			ID:    identity.AccountID.String(),
			Email: identity.Email,
			Name:  identity.Name,
			Role:  identity.Role,
		},
	}, requestID)
}

// RequestReset handles POST /auth/password-reset.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "email is required", requestID)
		return
	}

	if err := h.gate.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			response.Err(w, http.StatusNotFound, "USER_NOT_FOUND", "No account exists for this email", requestID)
			return
		}
		slog.Error("password reset request failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to request password reset", requestID)
		return
	}

	response.Success(w, http.StatusAccepted, map[string]string{"status": "reset requested"}, requestID)
}

// ConfirmReset handles POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateResetConfirmRequest(validation.ResetConfirmRequest{
		Token:    req.Token,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.gate.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			response.Err(w, http.StatusBadRequest, "INVALID_TOKEN", "Reset token is invalid or expired", requestID)
			return
		}
		slog.Error("password reset failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]string{"status": "password updated"}, requestID)
}
