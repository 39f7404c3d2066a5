package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coursedesk/coursedesk/internal/model"
	"github.com/coursedesk/coursedesk/internal/service"
)

type contextKeyAuth string

// AdminKey is the context key for the authenticated admin.
const AdminKey contextKeyAuth = "auth_admin"

// Authenticate returns an HTTP middleware gating protected routes behind
// admin bearer tokens. Per request: extract the token, verify it, enforce
// the admin type tag, and load the live admin (password hash redacted).
// Missing or invalid tokens answer 401; a valid token of the wrong type
// or with a missing/disabled backing admin answers 403. Every failure is
// terminal — downstream handlers never run.
func Authenticate(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			admin, err := authSvc.Authenticate(r.Context(), token)
			if err != nil {
				status, msg := http.StatusUnauthorized, "Invalid or expired token"
				switch {
				case errors.Is(err, service.ErrWrongTokenType):
					status, msg = http.StatusForbidden, "Wrong token type"
				case errors.Is(err, service.ErrAdminDisabled):
					status, msg = http.StatusForbidden, "Admin account missing or disabled"
				case errors.Is(err, service.ErrInvalidToken):
					// 401 defaults above
				default:
					status, msg = http.StatusInternalServerError, "Authentication error"
				}
				writeAuthError(w, status, msg)
				return
			}

			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission returns an HTTP middleware enforcing a permission
// section on the authenticated admin. Superadmins pass unconditionally.
// Must be used after Authenticate in the middleware chain.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := GetAdmin(r.Context())
			if admin == nil {
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			}
			if admin.Role != model.RoleSuperAdmin && !admin.Permissions.Has(perm) {
				writeAuthError(w, http.StatusForbidden, "Insufficient permission: "+perm)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdmin extracts the authenticated admin from the context. Returns
// nil for unauthenticated requests.
func GetAdmin(ctx context.Context) *model.Admin {
	if admin, ok := ctx.Value(AdminKey).(*model.Admin); ok {
		return admin
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Built locally to avoid an import cycle with the handler package.
	json.NewEncoder(w).Encode(model.Response{Success: false, Message: message})
}
