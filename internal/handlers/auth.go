package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Kattu2003/PRODUCT/internal/metrics"
	"github.com/Kattu2003/PRODUCT/internal/services"
	"github.com/Kattu2003/PRODUCT/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

const (
	msgMissingFields      = "Missing email or password"
	msgAccountExists      = "Account already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "unauthorized"
	msgInvalidRequest     = "invalid request"
	msgInternal           = "internal server error"
)

// AccountService is the subset of services.AccountService the handlers use.
type AccountService interface {
	CreateAccount(ctx context.Context, in services.SignupInput) error
	Authenticate(ctx context.Context, in services.LoginInput) (services.Session, error)
	CurrentUser(ctx context.Context, token string) (types.Account, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler provides the /auth endpoints.
type AuthHandler struct {
	accounts AccountService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accounts AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accounts AccountService) {
	handler := NewAuthHandler(accounts)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.Get("/me", handler.Me)
	r.Post("/logout", handler.Logout)
}

type SignupRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	User  types.Account `json:"user"`
	Token string        `json:"token"`
}

type MeResponse struct {
	User types.Account `json:"user"`
}

// Signup creates a new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	err := h.accounts.CreateAccount(r.Context(), services.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		writeJSON(w, http.StatusCreated, OKResponse{OK: true})
	case errors.Is(err, services.ErrValidation):
		metrics.SignupsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, services.ErrConflict):
		metrics.SignupsTotal.WithLabelValues(metrics.ResultConflict).Inc()
		writeError(w, http.StatusConflict, msgAccountExists)
	default:
		metrics.SignupsTotal.WithLabelValues(metrics.ResultError).Inc()
		hlog.FromRequest(r).Error().Err(err).Msg("signup failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// Login verifies credentials and returns the account with a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	session, err := h.accounts.Authenticate(r.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case err == nil:
		metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		writeJSON(w, http.StatusOK, LoginResponse{User: session.Account, Token: session.Token})
	case errors.Is(err, services.ErrValidation):
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		writeError(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, services.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues(metrics.ResultDenied).Inc()
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	default:
		metrics.LoginsTotal.WithLabelValues(metrics.ResultError).Inc()
		hlog.FromRequest(r).Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// Me returns the account that owns the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	account, err := h.accounts.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("load current user failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{User: account})
}

// Logout ends the bearer's session if there is one. It always acknowledges.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := bearerToken(r); err == nil {
		if err := h.accounts.Logout(r.Context(), token); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("session revocation failed")
		}
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}
