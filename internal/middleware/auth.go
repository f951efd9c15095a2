package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"insight-server/internal/model"
)

type tokenChecker interface {
	ExtractSubject(tokenString string) (string, error)
	IsValidFor(tokenString string, user model.User) bool
}

type userLoader interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

type AuthMiddleware struct {
	tokens tokenChecker
	users  userLoader
}

func NewAuthMiddleware(tokens tokenChecker, users userLoader) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Authenticate runs once per request before dispatch. It reconstructs a
// principal from a bearer token when one is present and valid, and forwards
// the request either way: rejecting is the policy layer's job. Malformed,
// expired, or unknown-subject tokens count as "no credential" here, never as
// an error response.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		subject, err := m.tokens.ExtractSubject(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.FindByEmail(r.Context(), subject)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if !m.tokens.IsValidFor(token, user) {
			next.ServeHTTP(w, r)
			return
		}

		principal := model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
		ctx := context.WithValue(r.Context(), principalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is the policy gate for non-exempt routes: a populated principal
// or a 401 before any handler logic runs.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeAuthError(w, "UNAUTHORIZED", "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRoles narrows a route to principals carrying one of the given roles.
func (m *AuthMiddleware) RequireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowed {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, "UNAUTHORIZED", "authentication required")
				return
			}

			if _, exists := roleSet[principal.Role]; !exists {
				writeAuthError(w, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(model.Principal)
	return principal, ok
}

func writeAuthError(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	if code == "FORBIDDEN" {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusUnauthorized)
	}

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
