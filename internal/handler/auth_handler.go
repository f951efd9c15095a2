package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"insight-server/internal/middleware"
	"insight-server/internal/model"
	"insight-server/internal/service"
	"insight-server/pkg/apierror"
)

type AuthHandler struct {
	auth     *service.AuthService
	accounts *service.AccountService
}

func NewAuthHandler(auth *service.AuthService, accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

// Authenticate verifies credentials and returns the access/refresh pair.
// Invalid credentials produce a bare 403 with an empty body, matching the
// wire contract the frontend depends on.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeError(w, err)
		return
	}

	tokens, err := h.auth.IssueTokensFor(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	user, err := h.accounts.Register(r.Context(), payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user)
}

// FindByEmail is the public existence check used by the registration form's
// email-taken validator. It deliberately answers for any address.
func (h *AuthHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(chi.URLParam(r, "email"))
	if email == "" {
		writeError(w, apierror.New("BAD_REQUEST", "email is required", "email", http.StatusBadRequest))
		return
	}

	exists, err := h.accounts.EmailExists(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, exists)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	user, err := h.accounts.GetByEmail(r.Context(), principal.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

// ChangeOwnPassword rotates the caller's password after re-verifying the
// current one. A missing account and a wrong current password both map to
// the same 400 so nothing is revealed about which check failed.
func (h *AuthHandler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.SelfPasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	err := h.accounts.ChangeOwnPassword(r.Context(), principal.Email, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrInvalidInput) {
			writeError(w, apierror.New("BAD_REQUEST", "password change rejected", "", http.StatusBadRequest))
			return
		}
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"changed": true})
}
